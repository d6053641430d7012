package registry

import (
	"sync"

	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"go.uber.org/zap"
)

// Event is a registry state transition observed by external indexers.
type Event interface {
	// Name returns notification name of the event.
	Name() string

	// ToStackItem returns event parameters as a VM array, the same shape the
	// subnet contract notifies with.
	ToStackItem() stackitem.Item
}

// SubnetCreated is emitted when a subnet is created.
type SubnetCreated struct {
	Owner    AccountID
	Metadata SubnetMetadata
}

// ProviderRegistered is emitted when a provider is registered. Caller is the
// account that registered the provider, the subnet it was attached to is not
// a part of the event.
type ProviderRegistered struct {
	Caller   AccountID
	Provider ProviderMetadata
}

// Name implements Event.
func (SubnetCreated) Name() string { return "SubnetCreated" }

// ToStackItem implements Event.
func (e SubnetCreated) ToStackItem() stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(e.Owner.BytesBE()),
		e.Metadata.ToStackItem(),
	})
}

// Name implements Event.
func (ProviderRegistered) Name() string { return "ProviderRegistered" }

// ToStackItem implements Event.
func (e ProviderRegistered) ToStackItem() stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(e.Caller.BytesBE()),
		e.Provider.ToStackItem(),
	})
}

// Recorder is an EventSink keeping all emitted events in memory in emission
// order. Recorder is safe for concurrent use.
type Recorder struct {
	mtx    sync.RWMutex
	events []Event
}

// Emit implements EventSink.
func (x *Recorder) Emit(e Event) {
	x.mtx.Lock()
	x.events = append(x.events, e)
	x.mtx.Unlock()
}

// Events returns a copy of recorded events.
func (x *Recorder) Events() []Event {
	x.mtx.RLock()
	defer x.mtx.RUnlock()

	res := make([]Event, len(x.events))
	copy(res, x.events)
	return res
}

// LogSink is an EventSink writing events into the log.
type LogSink struct {
	log *zap.Logger
}

// NewLogSink returns LogSink writing into l at info level.
func NewLogSink(l *zap.Logger) LogSink {
	return LogSink{log: l}
}

// Emit implements EventSink.
func (x LogSink) Emit(e Event) {
	switch ev := e.(type) {
	case SubnetCreated:
		x.log.Info("event", zap.String("name", ev.Name()),
			zap.String("owner", accountString(ev.Owner)),
			zap.ByteString("title", ev.Metadata.Title),
			zap.Uint32("rewards", ev.Metadata.RewardsAllocation))
	case ProviderRegistered:
		x.log.Info("event", zap.String("name", ev.Name()),
			zap.String("caller", accountString(ev.Caller)),
			zap.ByteString("provider", ev.Provider.Name))
	default:
		x.log.Info("event", zap.String("name", e.Name()))
	}
}

// MultiSink passes each event to all sinks in order.
type MultiSink []EventSink

// Emit implements EventSink.
func (x MultiSink) Emit(e Event) {
	for i := range x {
		x[i].Emit(e)
	}
}
