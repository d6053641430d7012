package subnet

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/subnet-registry/common"
)

// SubnetMetadata is a subnet description provided by its owner.
// Performance and allocation values are unsigned 32-bit integers.
type SubnetMetadata struct {
	Title             []byte
	Intro             []byte
	RewardsAllocation int
	CorePerformance   int
	GpunetPerformance int
	Metadata          []byte
}

const (
	// ErrSubnetAlreadyExists is thrown when the owner already has a subnet.
	ErrSubnetAlreadyExists = "subnet already exists"
	// ErrProviderAlreadyRegistered is reserved and never thrown.
	ErrProviderAlreadyRegistered = "provider already registered"
	// ErrSubnetNotFound is thrown when the subnet owner has no subnet.
	ErrSubnetNotFound = "subnet not found"
	// ErrInvalidOwner is thrown when owner is not a 20-byte script hash.
	ErrInvalidOwner = "invalid owner"
	// ErrInvalidCaller is thrown when caller is not a 20-byte script hash.
	ErrInvalidCaller = "invalid caller"
	// ErrInvalidSubnetMetadata is thrown when subnet metadata is not an array
	// of 6 fields of the expected types or its integers do not fit uint32.
	ErrInvalidSubnetMetadata = "invalid subnet metadata"
	// ErrInvalidProviderMetadata is thrown when provider metadata is not an
	// array of 2 byte strings.
	ErrInvalidProviderMetadata = "invalid provider metadata"
)

const (
	subnetPrefix        = 's'
	providerCountPrefix = 'c'
	providerPrefix      = 'p'

	subnetMetadataFields   = 6
	providerMetadataFields = 2

	// inlined math.MaxUint32 to avoid package import.
	maxUint32 = 1<<32 - 1
)

// Stack item type bytes as they are written by std.Serialize.
const (
	integerType    = 0x21
	byteStringType = 0x28
	bufferType     = 0x30
	arrayType      = 0x40
	structType     = 0x41
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	runtime.Log("subnet registry contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("subnet registry contract updated")
}

// CreateSubnet creates a subnet owned by the specified account. It must be
// signed by the owner. Only one subnet may exist per owner, the second call
// panics with ErrSubnetAlreadyExists.
//
// Metadata is an array of Title, Intro, RewardsAllocation, CorePerformance,
// GpunetPerformance and Metadata fields, see SubnetMetadata.
func CreateSubnet(owner interop.Hash160, metadata []any) {
	checkHash160(owner, ErrInvalidOwner)
	common.CheckOwnerWitness(owner)
	checkSubnetMetadata(metadata)

	ctx := storage.GetContext()

	key := append([]byte{subnetPrefix}, owner...)
	if storage.Get(ctx, key) != nil {
		panic(ErrSubnetAlreadyExists)
	}

	common.SetSerialized(ctx, key, metadata)

	runtime.Notify("SubnetCreated", owner, metadata)
}

// RegisterProvider appends provider to the list of the subnet owned by
// subnetOwner. It must be signed by the caller, who is not required to be
// the subnet owner. Panics with ErrSubnetNotFound if subnetOwner has no subnet.
//
// Provider is an array of Name and ResourceDetails byte strings.
func RegisterProvider(caller, subnetOwner interop.Hash160, provider []any) {
	checkHash160(caller, ErrInvalidCaller)
	checkHash160(subnetOwner, ErrInvalidOwner)
	common.CheckWitness(caller)
	checkProviderMetadata(provider)

	ctx := storage.GetContext()

	key := append([]byte{subnetPrefix}, subnetOwner...)
	if storage.Get(ctx, key) == nil {
		panic(ErrSubnetNotFound)
	}

	key[0] = providerCountPrefix
	cnt := common.GetCounter(ctx, key)
	storage.Put(ctx, key, cnt+1)

	key[0] = providerPrefix
	common.SetSerialized(ctx, append(key, indexSuffix(cnt)...), provider)

	runtime.Notify("ProviderRegistered", caller, provider)
}

// GetSubnet returns subnet of the owner. Panics with ErrSubnetNotFound if
// there is none.
func GetSubnet(owner interop.Hash160) SubnetMetadata {
	checkHash160(owner, ErrInvalidOwner)

	ctx := storage.GetReadOnlyContext()

	data := storage.Get(ctx, append([]byte{subnetPrefix}, owner...))
	if data == nil {
		panic(ErrSubnetNotFound)
	}

	return std.Deserialize(data.([]byte)).(SubnetMetadata)
}

// Providers returns iterator over providers of the owner's subnet in
// registration order. Iterator values are arrays of Name and ResourceDetails.
// The iterator is empty if the owner has no subnet.
func Providers(owner interop.Hash160) iterator.Iterator {
	checkHash160(owner, ErrInvalidOwner)

	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, append([]byte{providerPrefix}, owner...), storage.ValuesOnly|storage.DeserializeValues)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// indexSuffix encodes provider index as 4-byte big-endian integer, so that
// storage iteration follows registration order.
func indexSuffix(i int) []byte {
	b := make([]byte, 4)
	b[0] = byte((i >> 24) & 0xFF)
	b[1] = byte((i >> 16) & 0xFF)
	b[2] = byte((i >> 8) & 0xFF)
	b[3] = byte(i & 0xFF)
	return b
}

func checkHash160(h interop.Hash160, msg string) {
	if !isBytes(h) || len(h) != interop.Hash160Len {
		panic(msg)
	}
}

func checkSubnetMetadata(m []any) {
	if !isArray(m) || len(m) != subnetMetadataFields {
		panic(ErrInvalidSubnetMetadata)
	}
	if !isBytes(m[0]) || !isBytes(m[1]) || !isBytes(m[5]) {
		panic(ErrInvalidSubnetMetadata)
	}
	for i := 2; i < 5; i++ {
		if !isUint32(m[i]) {
			panic(ErrInvalidSubnetMetadata)
		}
	}
}

func checkProviderMetadata(p []any) {
	if !isArray(p) || len(p) != providerMetadataFields {
		panic(ErrInvalidProviderMetadata)
	}
	if !isBytes(p[0]) || !isBytes(p[1]) {
		panic(ErrInvalidProviderMetadata)
	}
}

func isArray(v any) bool {
	t := std.Serialize(v)[0]
	return t == arrayType || t == structType
}

func isBytes(v any) bool {
	t := std.Serialize(v)[0]
	return t == byteStringType || t == bufferType
}

func isUint32(v any) bool {
	if std.Serialize(v)[0] != integerType {
		return false
	}
	n := v.(int)
	return n >= 0 && n <= maxUint32
}
