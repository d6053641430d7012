package registry

import "errors"

var (
	// ErrSubnetAlreadyExists is returned by CreateSubnet when the caller
	// already owns a subnet.
	ErrSubnetAlreadyExists = errors.New("subnet already exists")

	// ErrSubnetNotFound is returned by RegisterProvider when the referenced
	// owner has no subnet.
	ErrSubnetNotFound = errors.New("subnet not found")

	// ErrProviderAlreadyRegistered is reserved. No operation returns it,
	// duplicate provider records are allowed.
	ErrProviderAlreadyRegistered = errors.New("provider already registered")

	// ErrUnauthenticated is returned by Authenticator when a call origin can't
	// be resolved to an account.
	ErrUnauthenticated = errors.New("unauthenticated call origin")
)
