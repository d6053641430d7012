package registry

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Storage provides access to the persisted registry state. Absence of a
// provider list is equivalent to an empty one.
//
// Storage does not check referential integrity: AppendProvider accepts any
// owner, Registry is responsible for calling it only for existing subnets.
type Storage interface {
	// Subnet returns subnet record of the owner. The flag is false if the owner
	// has no subnet.
	Subnet(owner AccountID) (SubnetMetadata, bool, error)

	// ContainsSubnet checks whether the owner has a subnet.
	ContainsSubnet(owner AccountID) (bool, error)

	// PutSubnet stores subnet record of the owner overwriting the existing one.
	PutSubnet(owner AccountID, metadata SubnetMetadata) error

	// Providers returns provider records of the owner in registration order.
	Providers(owner AccountID) ([]ProviderMetadata, error)

	// AppendProvider adds a provider record to the end of the owner's list.
	AppendProvider(owner AccountID, provider ProviderMetadata) error
}

// EventSink receives events of committed state transitions. Emit must not
// block for long, delivery to external observers is up to the implementation.
type EventSink interface {
	Emit(Event)
}

// Prm groups Registry parameters.
type Prm struct {
	// Persistent registry state. Required.
	Storage Storage

	// Receiver of transition events. Required.
	Events EventSink

	// Optional logger, zap.NewNop is used by default.
	Logger *zap.Logger
}

// Registry is the subnet registry state machine. It is not safe for concurrent
// use: the host must serialize calls (see Dispatcher).
type Registry struct {
	storage Storage
	events  EventSink
	log     *zap.Logger
}

// New constructs Registry from the given parameters.
func New(prm Prm) (*Registry, error) {
	switch {
	case prm.Storage == nil:
		return nil, errors.New("missing storage")
	case prm.Events == nil:
		return nil, errors.New("missing event sink")
	}

	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}

	return &Registry{
		storage: prm.Storage,
		events:  prm.Events,
		log:     prm.Logger,
	}, nil
}

// CreateSubnet registers a subnet owned by the caller. Caller must already be
// authenticated. Returns ErrSubnetAlreadyExists if the caller owns a subnet,
// the stored record is left intact then.
//
// SubnetCreated event is emitted on success.
func (r *Registry) CreateSubnet(caller AccountID, metadata SubnetMetadata) error {
	exists, err := r.storage.ContainsSubnet(caller)
	if err != nil {
		return fmt.Errorf("check subnet presence: %w", err)
	}

	if exists {
		r.log.Debug("subnet creation rejected",
			zap.String("owner", accountString(caller)), zap.Error(ErrSubnetAlreadyExists))
		return ErrSubnetAlreadyExists
	}

	err = r.storage.PutSubnet(caller, metadata)
	if err != nil {
		return fmt.Errorf("put subnet: %w", err)
	}

	r.events.Emit(SubnetCreated{Owner: caller, Metadata: metadata})

	r.log.Info("subnet created", zap.String("owner", accountString(caller)),
		zap.ByteString("title", metadata.Title))

	return nil
}

// RegisterProvider appends provider to the list of the subnet owned by
// subnetOwner. Any authenticated caller may register a provider against any
// subnet. Returns ErrSubnetNotFound if subnetOwner has no subnet.
//
// ProviderRegistered event carrying the caller (not the subnet owner) is
// emitted on success.
func (r *Registry) RegisterProvider(caller, subnetOwner AccountID, provider ProviderMetadata) error {
	exists, err := r.storage.ContainsSubnet(subnetOwner)
	if err != nil {
		return fmt.Errorf("check subnet presence: %w", err)
	}

	if !exists {
		r.log.Debug("provider registration rejected",
			zap.String("caller", accountString(caller)),
			zap.String("owner", accountString(subnetOwner)),
			zap.Error(ErrSubnetNotFound))
		return ErrSubnetNotFound
	}

	err = r.storage.AppendProvider(subnetOwner, provider)
	if err != nil {
		return fmt.Errorf("append provider: %w", err)
	}

	r.events.Emit(ProviderRegistered{Caller: caller, Provider: provider})

	r.log.Info("provider registered",
		zap.String("caller", accountString(caller)),
		zap.String("owner", accountString(subnetOwner)),
		zap.ByteString("name", provider.Name))

	return nil
}

// Subnet returns subnet of the owner. The flag is false if there is none.
func (r *Registry) Subnet(owner AccountID) (SubnetMetadata, bool, error) {
	return r.storage.Subnet(owner)
}

// Providers returns providers registered against the owner's subnet in
// registration order. The result is empty if there are none.
func (r *Registry) Providers(owner AccountID) ([]ProviderMetadata, error) {
	return r.storage.Providers(owner)
}
