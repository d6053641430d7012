package registry

import (
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// AccountID identifies a ledger account. Registry only compares and hashes
// it, the bytes are never interpreted.
type AccountID = util.Uint160

// SubnetMetadata describes a subnet. All fields are supplied by the subnet
// owner and stored as is.
type SubnetMetadata struct {
	Title             []byte
	Intro             []byte
	RewardsAllocation uint32
	CorePerformance   uint32
	GpunetPerformance uint32
	Metadata          []byte
}

// ProviderMetadata describes a resource provider attached to a subnet.
type ProviderMetadata struct {
	Name            []byte
	ResourceDetails []byte
}

// EncodeBinary implements io.Serializable. Fields are written in declaration
// order; changing the order breaks already stored records.
func (m *SubnetMetadata) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(m.Title)
	w.WriteVarBytes(m.Intro)
	w.WriteU32LE(m.RewardsAllocation)
	w.WriteU32LE(m.CorePerformance)
	w.WriteU32LE(m.GpunetPerformance)
	w.WriteVarBytes(m.Metadata)
}

// DecodeBinary implements io.Serializable. Byte fields are never nil after
// decoding, nil and empty fields both decode into empty slices.
func (m *SubnetMetadata) DecodeBinary(r *io.BinReader) {
	m.Title = r.ReadVarBytes()
	m.Intro = r.ReadVarBytes()
	m.RewardsAllocation = r.ReadU32LE()
	m.CorePerformance = r.ReadU32LE()
	m.GpunetPerformance = r.ReadU32LE()
	m.Metadata = r.ReadVarBytes()
}

// ToStackItem returns SubnetMetadata as a VM structure with fields in
// declaration order.
func (m SubnetMetadata) ToStackItem() stackitem.Item {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(m.Title),
		stackitem.NewByteArray(m.Intro),
		stackitem.NewBigInteger(big.NewInt(int64(m.RewardsAllocation))),
		stackitem.NewBigInteger(big.NewInt(int64(m.CorePerformance))),
		stackitem.NewBigInteger(big.NewInt(int64(m.GpunetPerformance))),
		stackitem.NewByteArray(m.Metadata),
	})
}

// EncodeBinary implements io.Serializable.
func (p *ProviderMetadata) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(p.Name)
	w.WriteVarBytes(p.ResourceDetails)
}

// DecodeBinary implements io.Serializable. Like SubnetMetadata, it decodes
// nil byte fields into empty slices.
func (p *ProviderMetadata) DecodeBinary(r *io.BinReader) {
	p.Name = r.ReadVarBytes()
	p.ResourceDetails = r.ReadVarBytes()
}

// ToStackItem returns ProviderMetadata as a VM structure.
func (p ProviderMetadata) ToStackItem() stackitem.Item {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(p.Name),
		stackitem.NewByteArray(p.ResourceDetails),
	})
}

// encode returns binary form of v. Writes to a buffer don't fail, so the only
// possible error comes from v itself.
func encode(v io.Serializable) ([]byte, error) {
	w := io.NewBufBinWriter()
	v.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

func decode(b []byte, v io.Serializable) error {
	r := io.NewBinReaderFromBuf(b)
	v.DecodeBinary(r)
	return r.Err
}

// accountString returns the Neo address of the account for logs.
func accountString(a AccountID) string {
	return address.Uint160ToString(a)
}
