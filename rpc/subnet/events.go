package subnet

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/subnet-registry/registry"
)

// SubnetCreatedEvent represents "SubnetCreated" event emitted by the contract.
type SubnetCreatedEvent registry.SubnetCreated

// ProviderRegisteredEvent represents "ProviderRegistered" event emitted by the
// contract. Caller is the account that registered the provider, the subnet
// owner is not a part of the event.
type ProviderRegisteredEvent registry.ProviderRegistered

// SubnetCreatedEventsFromApplicationLog retrieves a set of all emitted events
// with "SubnetCreated" name from the provided [result.ApplicationLog].
func SubnetCreatedEventsFromApplicationLog(log *result.ApplicationLog) ([]*SubnetCreatedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*SubnetCreatedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "SubnetCreated" {
				continue
			}
			event := new(SubnetCreatedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize SubnetCreatedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to SubnetCreatedEvent or
// returns an error if it's not possible to do to so.
func (e *SubnetCreatedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	e.Owner, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	err = SubnetMetadataFromStackItem(&e.Metadata, arr[1])
	if err != nil {
		return fmt.Errorf("field Metadata: %w", err)
	}

	return nil
}

// ProviderRegisteredEventsFromApplicationLog retrieves a set of all emitted
// events with "ProviderRegistered" name from the provided [result.ApplicationLog].
func ProviderRegisteredEventsFromApplicationLog(log *result.ApplicationLog) ([]*ProviderRegisteredEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*ProviderRegisteredEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "ProviderRegistered" {
				continue
			}
			event := new(ProviderRegisteredEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize ProviderRegisteredEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to ProviderRegisteredEvent
// or returns an error if it's not possible to do to so.
func (e *ProviderRegisteredEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	e.Caller, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Caller: %w", err)
	}

	err = ProviderMetadataFromStackItem(&e.Provider, arr[1])
	if err != nil {
		return fmt.Errorf("field Provider: %w", err)
	}

	return nil
}
