package registry

import (
	"errors"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	alice = util.Uint160{1}
	bob   = util.Uint160{2}
	carol = util.Uint160{3}
)

type testRegistry struct {
	*Registry

	st     *storage.MemoryStore
	events *Recorder
}

func newTestRegistry(t *testing.T) testRegistry {
	st := storage.NewMemoryStore()
	rec := new(Recorder)

	r, err := New(Prm{
		Storage: NewKVStore(st),
		Events:  rec,
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	return testRegistry{Registry: r, st: st, events: rec}
}

// dump returns all items of the registry storage.
func (x testRegistry) dump() map[string]string {
	res := make(map[string]string)
	for _, p := range []byte{subnetPrefix, providerCountPrefix, providerPrefix} {
		x.st.Seek(storage.SeekRange{Prefix: []byte{p}}, func(k, v []byte) bool {
			res[string(k)] = string(v)
			return true
		})
	}
	return res
}

func testSubnet(title string) SubnetMetadata {
	return SubnetMetadata{
		Title:             []byte(title),
		Intro:             []byte("intro of " + title),
		RewardsAllocation: 100,
		CorePerformance:   7,
		GpunetPerformance: 9,
		Metadata:          []byte{0xde, 0xad},
	}
}

func testProvider(name string) ProviderMetadata {
	return ProviderMetadata{
		Name:            []byte(name),
		ResourceDetails: []byte("resources of " + name),
	}
}

func TestNew(t *testing.T) {
	_, err := New(Prm{Events: new(Recorder)})
	require.Error(t, err)

	_, err = New(Prm{Storage: NewKVStore(storage.NewMemoryStore())})
	require.Error(t, err)

	r, err := New(Prm{Storage: NewKVStore(storage.NewMemoryStore()), Events: new(Recorder)})
	require.NoError(t, err)
	require.NotNil(t, r.log)
}

func TestRegistry_CreateSubnet(t *testing.T) {
	r := newTestRegistry(t)

	first := testSubnet("net1")
	require.NoError(t, r.CreateSubnet(alice, first))

	s, ok, err := r.Subnet(alice)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, first, s)

	require.Equal(t, []Event{SubnetCreated{Owner: alice, Metadata: first}}, r.events.Events())

	t.Run("repeated", func(t *testing.T) {
		before := r.dump()

		err := r.CreateSubnet(alice, testSubnet("net2"))
		require.ErrorIs(t, err, ErrSubnetAlreadyExists)

		s, ok, err := r.Subnet(alice)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, first, s)

		require.Equal(t, before, r.dump())
		require.Len(t, r.events.Events(), 1)
	})

	t.Run("identical metadata", func(t *testing.T) {
		require.ErrorIs(t, r.CreateSubnet(alice, first), ErrSubnetAlreadyExists)
	})

	t.Run("other account", func(t *testing.T) {
		second := testSubnet("net2")
		require.NoError(t, r.CreateSubnet(bob, second))

		s, ok, err := r.Subnet(bob)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, second, s)

		s, _, err = r.Subnet(alice)
		require.NoError(t, err)
		require.Equal(t, first, s)
	})

	t.Run("empty metadata", func(t *testing.T) {
		require.NoError(t, r.CreateSubnet(carol, SubnetMetadata{}))

		s, ok, err := r.Subnet(carol)
		require.NoError(t, err)
		require.True(t, ok)

		require.Empty(t, s.Title)
		require.Empty(t, s.Intro)
		require.Empty(t, s.Metadata)
		require.Zero(t, s.RewardsAllocation)
		require.Zero(t, s.CorePerformance)
		require.Zero(t, s.GpunetPerformance)

		// Stored nil fields come back as empty slices.
		require.NotNil(t, s.Title)
		require.Equal(t, SubnetMetadata{Title: []byte{}, Intro: []byte{}, Metadata: []byte{}}, s)
	})
}

func TestRegistry_Subnet(t *testing.T) {
	r := newTestRegistry(t)

	_, ok, err := r.Subnet(alice)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegistry_RegisterProvider(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("missing subnet", func(t *testing.T) {
		before := r.dump()

		err := r.RegisterProvider(bob, carol, testProvider("p2"))
		require.ErrorIs(t, err, ErrSubnetNotFound)

		ps, err := r.Providers(carol)
		require.NoError(t, err)
		require.Empty(t, ps)

		require.Equal(t, before, r.dump())
		require.Empty(t, r.events.Events())
	})

	require.NoError(t, r.CreateSubnet(alice, testSubnet("net1")))

	p1 := ProviderMetadata{Name: []byte("p1"), ResourceDetails: []byte("8 GPU")}
	require.NoError(t, r.RegisterProvider(bob, alice, p1))

	ps, err := r.Providers(alice)
	require.NoError(t, err)
	require.Equal(t, []ProviderMetadata{p1}, ps)

	evs := r.events.Events()
	require.Len(t, evs, 2)
	require.Equal(t, ProviderRegistered{Caller: bob, Provider: p1}, evs[1])

	t.Run("caller is not the owner", func(t *testing.T) {
		// Bob has no subnet of his own, registration against Alice's subnet
		// must not create one.
		_, ok, err := r.Subnet(bob)
		require.NoError(t, err)
		require.False(t, ok)

		ps, err := r.Providers(bob)
		require.NoError(t, err)
		require.Empty(t, ps)
	})

	t.Run("duplicates", func(t *testing.T) {
		require.NoError(t, r.RegisterProvider(alice, alice, p1))

		ps, err := r.Providers(alice)
		require.NoError(t, err)
		require.Equal(t, []ProviderMetadata{p1, p1}, ps)

		evs := r.events.Events()
		require.Equal(t, ProviderRegistered{Caller: alice, Provider: p1}, evs[len(evs)-1])
	})
}

func TestRegistry_ProvidersOrder(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.CreateSubnet(alice, testSubnet("net1")))

	const n = 300 // more than fits into a single byte index

	exp := make([]ProviderMetadata, n)
	for i := range exp {
		exp[i] = ProviderMetadata{Name: []byte{byte(i), byte(i >> 8)}, ResourceDetails: []byte{1}}
		require.NoError(t, r.RegisterProvider(bob, alice, exp[i]))
	}

	ps, err := r.Providers(alice)
	require.NoError(t, err)
	require.Len(t, ps, n)
	require.Equal(t, exp, ps)
	require.Len(t, r.events.Events(), n+1)
}

type failingStorage struct {
	Storage
	err error
}

func (x failingStorage) PutSubnet(AccountID, SubnetMetadata) error { return x.err }

func (x failingStorage) AppendProvider(AccountID, ProviderMetadata) error { return x.err }

func TestRegistry_StorageFailure(t *testing.T) {
	base := NewKVStore(storage.NewMemoryStore())
	storageErr := errors.New("disk is on fire")
	rec := new(Recorder)

	r, err := New(Prm{
		Storage: failingStorage{Storage: base, err: storageErr},
		Events:  rec,
	})
	require.NoError(t, err)

	err = r.CreateSubnet(alice, testSubnet("net1"))
	require.ErrorIs(t, err, storageErr)
	require.Empty(t, rec.Events())

	require.NoError(t, base.PutSubnet(alice, testSubnet("net1")))

	err = r.RegisterProvider(bob, alice, testProvider("p1"))
	require.ErrorIs(t, err, storageErr)
	require.Empty(t, rec.Events())
}
