package subnet

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/subnet-registry/registry"
	"github.com/stretchr/testify/require"
)

type testInvoker struct {
	method   string
	params   []any
	maxItems int

	session uuid.UUID
	stack   []stackitem.Item
	err     error
}

func (x *testInvoker) Call(_ util.Uint160, method string, params ...any) (*result.Invoke, error) {
	x.method, x.params = method, params
	if x.err != nil {
		return nil, x.err
	}
	return &result.Invoke{
		State:   vmstate.Halt.String(),
		Stack:   x.stack,
		Session: x.session,
	}, nil
}

func (x *testInvoker) CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error) {
	x.maxItems = maxItems
	return x.Call(contract, method, params...)
}

func (x *testInvoker) TerminateSession(uuid.UUID) error {
	return nil
}

func (x *testInvoker) TraverseIterator(uuid.UUID, *result.Iterator, int) ([]stackitem.Item, error) {
	return nil, nil
}

var (
	testOwner  = util.Uint160{1, 2, 3}
	testCaller = util.Uint160{4, 5, 6}

	testSubnet = registry.SubnetMetadata{
		Title:             []byte("net1"),
		Intro:             []byte("first subnet"),
		RewardsAllocation: 100,
		CorePerformance:   7,
		GpunetPerformance: 9,
		Metadata:          []byte{1},
	}
	testProvider = registry.ProviderMetadata{
		Name:            []byte("p1"),
		ResourceDetails: []byte("8 GPU"),
	}
)

func TestContractReader_GetSubnet(t *testing.T) {
	inv := &testInvoker{stack: []stackitem.Item{testSubnet.ToStackItem()}}
	r := NewReader(inv, util.Uint160{})

	res, err := r.GetSubnet(testOwner)
	require.NoError(t, err)
	require.Equal(t, testSubnet, *res)
	require.Equal(t, "getSubnet", inv.method)
	require.Equal(t, []any{testOwner}, inv.params)

	t.Run("array", func(t *testing.T) {
		inv.stack = []stackitem.Item{stackitem.NewArray(testSubnet.ToStackItem().Value().([]stackitem.Item))}

		res, err := r.GetSubnet(testOwner)
		require.NoError(t, err)
		require.Equal(t, testSubnet, *res)
	})

	t.Run("out of range", func(t *testing.T) {
		fields := testSubnet.ToStackItem().Value().([]stackitem.Item)
		fields[2] = stackitem.NewBigInteger(big.NewInt(-1))
		inv.stack = []stackitem.Item{stackitem.NewStruct(fields)}

		_, err := r.GetSubnet(testOwner)
		require.Error(t, err)

		fields[2] = stackitem.NewBigInteger(big.NewInt(1 << 32))
		_, err = r.GetSubnet(testOwner)
		require.Error(t, err)
	})

	t.Run("wrong structure", func(t *testing.T) {
		inv.stack = []stackitem.Item{testProvider.ToStackItem()}

		_, err := r.GetSubnet(testOwner)
		require.Error(t, err)
	})

	t.Run("call failure", func(t *testing.T) {
		inv.err = errors.New("connection refused")
		_, err := r.GetSubnet(testOwner)
		require.ErrorIs(t, err, inv.err)
	})
}

func TestContractReader_Providers(t *testing.T) {
	id := uuid.New()
	inv := &testInvoker{
		session: id,
		stack:   []stackitem.Item{stackitem.NewInterop(result.Iterator{ID: &id})},
	}
	r := NewReader(inv, util.Uint160{})

	session, iter, err := r.Providers(testOwner)
	require.NoError(t, err)
	require.Equal(t, id, session)
	require.Equal(t, &id, iter.ID)
	require.Equal(t, "providers", inv.method)
	require.Equal(t, []any{testOwner}, inv.params)

	t.Run("no session", func(t *testing.T) {
		inv.session = uuid.UUID{}

		_, _, err := r.Providers(testOwner)
		require.Error(t, err)
	})
}

func TestContractReader_ProvidersExpanded(t *testing.T) {
	inv := &testInvoker{stack: []stackitem.Item{stackitem.NewArray(nil)}}
	r := NewReader(inv, util.Uint160{})

	res, err := r.ProvidersExpanded(testOwner, 10)
	require.NoError(t, err)
	require.Empty(t, res)
	require.Equal(t, "providers", inv.method)
	require.Equal(t, 10, inv.maxItems)

	second := registry.ProviderMetadata{Name: []byte("p2"), ResourceDetails: []byte("1 CPU")}
	inv.stack = []stackitem.Item{stackitem.NewArray([]stackitem.Item{
		testProvider.ToStackItem(),
		second.ToStackItem(),
	})}

	res, err = r.ProvidersExpanded(testOwner, 10)
	require.NoError(t, err)
	require.Equal(t, []registry.ProviderMetadata{testProvider, second}, res)

	t.Run("invalid item", func(t *testing.T) {
		inv.stack = []stackitem.Item{stackitem.NewArray([]stackitem.Item{
			testProvider.ToStackItem(),
			stackitem.NewArray([]stackitem.Item{stackitem.Make("p3")}),
		})}

		_, err := r.ProvidersExpanded(testOwner, 10)
		require.ErrorContains(t, err, "item 1")
	})
}

func TestContractReader_Version(t *testing.T) {
	inv := &testInvoker{stack: []stackitem.Item{stackitem.Make(1000)}}

	v, err := NewReader(inv, util.Uint160{}).Version()
	require.NoError(t, err)
	require.EqualValues(t, 1000, v.Int64())
}

func TestEventsFromApplicationLog(t *testing.T) {
	created := registry.SubnetCreated{Owner: testOwner, Metadata: testSubnet}
	registered := registry.ProviderRegistered{Caller: testCaller, Provider: testProvider}

	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			Trigger: 0x40,
			VMState: vmstate.Halt,
			Events: []state.NotificationEvent{
				{Name: created.Name(), Item: created.ToStackItem().(*stackitem.Array)},
				{Name: "Transfer", Item: stackitem.NewArray(nil)},
				{Name: registered.Name(), Item: registered.ToStackItem().(*stackitem.Array)},
			},
		}},
	}

	evsCreated, err := SubnetCreatedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Equal(t, []*SubnetCreatedEvent{(*SubnetCreatedEvent)(&created)}, evsCreated)

	evsRegistered, err := ProviderRegisteredEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Equal(t, []*ProviderRegisteredEvent{(*ProviderRegisteredEvent)(&registered)}, evsRegistered)

	t.Run("nil log", func(t *testing.T) {
		_, err := SubnetCreatedEventsFromApplicationLog(nil)
		require.Error(t, err)
		_, err = ProviderRegisteredEventsFromApplicationLog(nil)
		require.Error(t, err)
	})

	t.Run("owner in provider event", func(t *testing.T) {
		log.Executions[0].Events[2].Item = stackitem.NewArray([]stackitem.Item{
			stackitem.NewByteArray(testCaller.BytesBE()),
			stackitem.NewByteArray(testOwner.BytesBE()),
			testProvider.ToStackItem(),
		})

		_, err := ProviderRegisteredEventsFromApplicationLog(log)
		require.Error(t, err)
	})
}
