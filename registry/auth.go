package registry

import (
	"crypto/elliptic"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
)

// Origin is a raw call origin as received from the network: a public key and
// its signature of the call payload.
type Origin struct {
	// Compressed or uncompressed secp256r1 public key.
	PublicKey []byte

	// Signature of SHA-256 of the call payload.
	Signature []byte
}

// Authenticator resolves call origins into accounts.
type Authenticator interface {
	// Authenticate checks that origin is allowed to make a call with the given
	// payload and returns the calling account. Errors must wrap
	// ErrUnauthenticated.
	Authenticate(o Origin, payload []byte) (AccountID, error)
}

// SignatureAuthenticator authenticates origins by their signatures. The
// account of a verified origin is the script hash of its public key, the same
// account a standard Neo signature contract has.
type SignatureAuthenticator struct{}

// Authenticate implements Authenticator.
func (SignatureAuthenticator) Authenticate(o Origin, payload []byte) (AccountID, error) {
	pub, err := keys.NewPublicKeyFromBytes(o.PublicKey, elliptic.P256())
	if err != nil {
		return AccountID{}, fmt.Errorf("%w: decode public key: %v", ErrUnauthenticated, err)
	}

	if !pub.Verify(o.Signature, hash.Sha256(payload).BytesBE()) {
		return AccountID{}, fmt.Errorf("%w: invalid signature", ErrUnauthenticated)
	}

	return pub.GetScriptHash(), nil
}

// SignCreateSubnet returns Origin for the CreateSubnet call with the given
// metadata signed by the key.
func SignCreateSubnet(key *keys.PrivateKey, metadata SubnetMetadata) (Origin, error) {
	payload, err := CreateSubnetPayload(metadata)
	if err != nil {
		return Origin{}, err
	}

	return sign(key, payload), nil
}

// SignRegisterProvider returns Origin for the RegisterProvider call with the
// given arguments signed by the key.
func SignRegisterProvider(key *keys.PrivateKey, subnetOwner AccountID, provider ProviderMetadata) (Origin, error) {
	payload, err := RegisterProviderPayload(subnetOwner, provider)
	if err != nil {
		return Origin{}, err
	}

	return sign(key, payload), nil
}

func sign(key *keys.PrivateKey, payload []byte) Origin {
	return Origin{
		PublicKey: key.PublicKey().Bytes(),
		Signature: key.Sign(payload),
	}
}
