// Package subnet contains RPC wrappers for Subnet Registry contract.
package subnet

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/subnet-registry/registry"
)

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
	CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error)
	TerminateSession(sessionID uuid.UUID) error
	TraverseIterator(sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// GetSubnet invokes `getSubnet` method of contract.
func (c *ContractReader) GetSubnet(owner util.Uint160) (*registry.SubnetMetadata, error) {
	return itemToSubnetMetadata(unwrap.Item(c.invoker.Call(c.hash, "getSubnet", owner)))
}

// Providers invokes `providers` method of contract.
func (c *ContractReader) Providers(owner util.Uint160) (uuid.UUID, result.Iterator, error) {
	return unwrap.SessionIterator(c.invoker.Call(c.hash, "providers", owner))
}

// ProvidersExpanded is similar to Providers (uses the same contract
// method), but can be useful if the server used doesn't support sessions and
// doesn't expand iterators. It creates a script that will get the specified
// number of result items from the iterator right in the VM and return them to
// you. It's only limited by VM stack and GAS available for RPC invocations.
func (c *ContractReader) ProvidersExpanded(owner util.Uint160, _numOfIteratorItems int) ([]registry.ProviderMetadata, error) {
	arr, err := unwrap.Array(c.invoker.CallAndExpandIterator(c.hash, "providers", _numOfIteratorItems, owner))
	if err != nil {
		return nil, err
	}
	return ProvidersFromStackItems(arr)
}

// ProvidersFromStackItems converts items of the `providers` iterator into
// ProviderMetadata list. It can be applied to the values returned by
// Invoker.TraverseIterator.
func ProvidersFromStackItems(items []stackitem.Item) ([]registry.ProviderMetadata, error) {
	res := make([]registry.ProviderMetadata, len(items))
	for i := range items {
		err := ProviderMetadataFromStackItem(&res[i], items[i])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return res, nil
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// CreateSubnet creates a transaction invoking `createSubnet` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) CreateSubnet(owner util.Uint160, metadata registry.SubnetMetadata) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "createSubnet", owner, subnetMetadataParam(metadata))
}

// CreateSubnetTransaction creates a transaction invoking `createSubnet` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) CreateSubnetTransaction(owner util.Uint160, metadata registry.SubnetMetadata) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "createSubnet", owner, subnetMetadataParam(metadata))
}

// CreateSubnetUnsigned creates a transaction invoking `createSubnet` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) CreateSubnetUnsigned(owner util.Uint160, metadata registry.SubnetMetadata) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "createSubnet", nil, owner, subnetMetadataParam(metadata))
}

// RegisterProvider creates a transaction invoking `registerProvider` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RegisterProvider(caller util.Uint160, subnetOwner util.Uint160, provider registry.ProviderMetadata) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "registerProvider", caller, subnetOwner, providerMetadataParam(provider))
}

// RegisterProviderTransaction creates a transaction invoking `registerProvider` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RegisterProviderTransaction(caller util.Uint160, subnetOwner util.Uint160, provider registry.ProviderMetadata) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "registerProvider", caller, subnetOwner, providerMetadataParam(provider))
}

// RegisterProviderUnsigned creates a transaction invoking `registerProvider` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RegisterProviderUnsigned(caller util.Uint160, subnetOwner util.Uint160, provider registry.ProviderMetadata) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "registerProvider", nil, caller, subnetOwner, providerMetadataParam(provider))
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", script, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, script, manifest, data)
}

// subnetMetadataParam returns contract parameter representation of
// SubnetMetadata structure with fields in declaration order.
func subnetMetadataParam(m registry.SubnetMetadata) []any {
	return []any{
		m.Title,
		m.Intro,
		int64(m.RewardsAllocation),
		int64(m.CorePerformance),
		int64(m.GpunetPerformance),
		m.Metadata,
	}
}

func providerMetadataParam(p registry.ProviderMetadata) []any {
	return []any{p.Name, p.ResourceDetails}
}

// itemToSubnetMetadata converts stack item into *registry.SubnetMetadata.
func itemToSubnetMetadata(item stackitem.Item, err error) (*registry.SubnetMetadata, error) {
	if err != nil {
		return nil, err
	}
	var res = new(registry.SubnetMetadata)
	err = SubnetMetadataFromStackItem(res, item)
	return res, err
}

// SubnetMetadataFromStackItem retrieves fields of SubnetMetadata from the
// given [stackitem.Item] or returns an error if it's not possible to do to so.
func SubnetMetadataFromStackItem(res *registry.SubnetMetadata, item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 6 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.Title, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Title: %w", err)
	}

	index++
	res.Intro, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Intro: %w", err)
	}

	index++
	res.RewardsAllocation, err = itemToUint32(arr[index])
	if err != nil {
		return fmt.Errorf("field RewardsAllocation: %w", err)
	}

	index++
	res.CorePerformance, err = itemToUint32(arr[index])
	if err != nil {
		return fmt.Errorf("field CorePerformance: %w", err)
	}

	index++
	res.GpunetPerformance, err = itemToUint32(arr[index])
	if err != nil {
		return fmt.Errorf("field GpunetPerformance: %w", err)
	}

	index++
	res.Metadata, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Metadata: %w", err)
	}

	return nil
}

// ProviderMetadataFromStackItem retrieves fields of ProviderMetadata from the
// given [stackitem.Item] or returns an error if it's not possible to do to so.
func ProviderMetadataFromStackItem(res *registry.ProviderMetadata, item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.Name, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Name: %w", err)
	}

	index++
	res.ResourceDetails, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field ResourceDetails: %w", err)
	}

	return nil
}

func itemToUint32(item stackitem.Item) (uint32, error) {
	bi, err := item.TryInteger()
	if err != nil {
		return 0, err
	}
	if bi.Sign() < 0 || !bi.IsUint64() || bi.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("%s is out of uint32 range", bi)
	}
	return uint32(bi.Uint64()), nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}
