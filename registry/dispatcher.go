package registry

import (
	"fmt"
	"sync"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"go.uber.org/zap"
)

const (
	methodCreateSubnet     = "createSubnet"
	methodRegisterProvider = "registerProvider"
)

// Dispatcher is the public call surface of the registry. It authenticates
// call origins and applies calls to the Registry one at a time. Dispatcher is
// safe for concurrent use.
type Dispatcher struct {
	auth Authenticator
	reg  *Registry
	log  *zap.Logger

	mtx sync.Mutex
}

// NewDispatcher returns Dispatcher authenticating calls with auth and applying
// them to reg. Nil logger is replaced with zap.NewNop.
func NewDispatcher(reg *Registry, auth Authenticator, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}

	return &Dispatcher{
		auth: auth,
		reg:  reg,
		log:  log,
	}
}

// CreateSubnet authenticates origin of the call and creates a subnet owned by
// the resolved account. See Registry.CreateSubnet.
func (d *Dispatcher) CreateSubnet(o Origin, metadata SubnetMetadata) error {
	payload, err := CreateSubnetPayload(metadata)
	if err != nil {
		return err
	}

	caller, err := d.authenticate(methodCreateSubnet, o, payload)
	if err != nil {
		return err
	}

	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.reg.CreateSubnet(caller, metadata)
}

// RegisterProvider authenticates origin of the call and registers provider
// against the subnet of subnetOwner on behalf of the resolved account. See
// Registry.RegisterProvider.
func (d *Dispatcher) RegisterProvider(o Origin, subnetOwner AccountID, provider ProviderMetadata) error {
	payload, err := RegisterProviderPayload(subnetOwner, provider)
	if err != nil {
		return err
	}

	caller, err := d.authenticate(methodRegisterProvider, o, payload)
	if err != nil {
		return err
	}

	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.reg.RegisterProvider(caller, subnetOwner, provider)
}

func (d *Dispatcher) authenticate(method string, o Origin, payload []byte) (AccountID, error) {
	caller, err := d.auth.Authenticate(o, payload)
	if err != nil {
		d.log.Debug("call rejected", zap.String("method", method), zap.Error(err))
		return AccountID{}, fmt.Errorf("authenticate %s call: %w", method, err)
	}

	return caller, nil
}

// CreateSubnetPayload returns the payload a CreateSubnet call origin signs.
func CreateSubnetPayload(metadata SubnetMetadata) ([]byte, error) {
	w := io.NewBufBinWriter()
	w.WriteString(methodCreateSubnet)
	metadata.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", methodCreateSubnet, w.Err)
	}

	return w.Bytes(), nil
}

// RegisterProviderPayload returns the payload a RegisterProvider call origin
// signs.
func RegisterProviderPayload(subnetOwner AccountID, provider ProviderMetadata) ([]byte, error) {
	w := io.NewBufBinWriter()
	w.WriteString(methodRegisterProvider)
	w.WriteBytes(subnetOwner.BytesBE())
	provider.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", methodRegisterProvider, w.Err)
	}

	return w.Bytes(), nil
}
