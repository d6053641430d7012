package registry

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
)

const (
	subnetPrefix        = 's'
	providerCountPrefix = 'c'
	providerPrefix      = 'p'
)

// getter is satisfied by both storage.Store and storage.MemCachedStore.
type getter interface {
	Get([]byte) ([]byte, error)
}

// KVStore is a Storage persisting registry records in a neo-go storage.Store.
// Each mutation is applied as a single change set, so it is either fully
// persisted or not at all.
type KVStore struct {
	st storage.Store
}

// NewKVStore returns KVStore working on top of st.
func NewKVStore(st storage.Store) *KVStore {
	return &KVStore{st: st}
}

// OpenKVStore opens the database described by cfg and returns KVStore on top
// of it. The store must be closed when no longer needed.
func OpenKVStore(cfg dbconfig.DBConfiguration) (*KVStore, error) {
	st, err := storage.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Type, err)
	}

	return NewKVStore(st), nil
}

// Close closes the underlying database.
func (x *KVStore) Close() error {
	return x.st.Close()
}

// Subnet implements Storage.
func (x *KVStore) Subnet(owner AccountID) (SubnetMetadata, bool, error) {
	var res SubnetMetadata

	val, err := x.get(ownerKey(subnetPrefix, owner))
	if err != nil || val == nil {
		return res, false, err
	}

	err = decode(val, &res)
	if err != nil {
		return res, false, fmt.Errorf("decode subnet: %w", err)
	}

	return res, true, nil
}

// ContainsSubnet implements Storage.
func (x *KVStore) ContainsSubnet(owner AccountID) (bool, error) {
	val, err := x.get(ownerKey(subnetPrefix, owner))
	return val != nil, err
}

// PutSubnet implements Storage.
func (x *KVStore) PutSubnet(owner AccountID, metadata SubnetMetadata) error {
	val, err := encode(&metadata)
	if err != nil {
		return fmt.Errorf("encode subnet: %w", err)
	}

	return x.apply(func(c *storage.MemCachedStore) error {
		c.Put(ownerKey(subnetPrefix, owner), val)
		return nil
	})
}

// Providers implements Storage.
func (x *KVStore) Providers(owner AccountID) ([]ProviderMetadata, error) {
	n, err := providerCount(x.st, owner)
	if err != nil {
		return nil, err
	}

	res := make([]ProviderMetadata, n)
	for i := range res {
		val, err := x.get(providerKey(owner, uint32(i)))
		if err != nil {
			return nil, err
		}
		if val == nil {
			return nil, fmt.Errorf("missing provider #%d of %d", i, n)
		}

		err = decode(val, &res[i])
		if err != nil {
			return nil, fmt.Errorf("decode provider #%d: %w", i, err)
		}
	}

	return res, nil
}

// AppendProvider implements Storage.
func (x *KVStore) AppendProvider(owner AccountID, provider ProviderMetadata) error {
	val, err := encode(&provider)
	if err != nil {
		return fmt.Errorf("encode provider: %w", err)
	}

	return x.apply(func(c *storage.MemCachedStore) error {
		n, err := providerCount(c, owner)
		if err != nil {
			return err
		}

		c.Put(providerKey(owner, n), val)

		cnt := make([]byte, 4)
		binary.LittleEndian.PutUint32(cnt, n+1)
		c.Put(ownerKey(providerCountPrefix, owner), cnt)

		return nil
	})
}

func providerCount(st getter, owner AccountID) (uint32, error) {
	val, err := st.Get(ownerKey(providerCountPrefix, owner))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("read provider count: %w", err)
	}

	if len(val) != 4 {
		return 0, fmt.Errorf("invalid provider count length %d", len(val))
	}

	return binary.LittleEndian.Uint32(val), nil
}

// get returns nil without an error for missing keys.
func (x *KVStore) get(key []byte) ([]byte, error) {
	val, err := x.st.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read storage item: %w", err)
	}
	return val, nil
}

// apply stages changes made by f and persists them at once. Nothing is
// persisted if f fails.
func (x *KVStore) apply(f func(*storage.MemCachedStore) error) error {
	c := storage.NewMemCachedStore(x.st)

	err := f(c)
	if err != nil {
		return err
	}

	_, err = c.Persist()
	if err != nil {
		return fmt.Errorf("persist changes: %w", err)
	}

	return nil
}

func ownerKey(prefix byte, owner AccountID) []byte {
	return append([]byte{prefix}, owner.BytesBE()...)
}

func providerKey(owner AccountID, index uint32) []byte {
	key := make([]byte, 1+len(owner)+4)
	key[0] = providerPrefix
	copy(key[1:], owner.BytesBE())
	binary.BigEndian.PutUint32(key[1+len(owner):], index)
	return key
}
