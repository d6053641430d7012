/*
Package registry implements the subnet registry state machine independently of
any particular ledger.

Registry maps account identifiers to subnet and provider records. It is driven
by two operations:

  - CreateSubnet stores a subnet record under the calling account. A second
    call by the same account fails with ErrSubnetAlreadyExists.
  - RegisterProvider appends a provider record to the list kept under an
    existing subnet owner. It fails with ErrSubnetNotFound if the owner has no
    subnet.

A failed operation leaves storage untouched and emits nothing. A successful one
writes storage first and then emits exactly one event to the EventSink.

Registry never authenticates callers itself: it accepts an already verified
AccountID. Dispatcher is the entry point for raw calls. It authenticates an
Origin through an Authenticator, serializes transitions and forwards them to
the Registry.

# Storage model

KVStore persists records in a neo-go storage.Store:
 - 's' + owner -> SubnetMetadata
   binary-encoded subnet record of the owner
 - 'c' + owner -> uint32 (little-endian)
   number of providers registered against the owner's subnet
 - 'p' + owner + index (big-endian uint32) -> ProviderMetadata
   binary-encoded provider records in registration order, starting from 0

# Events

	SubnetCreated
	  - name: owner
	    type: Hash160
	  - name: metadata
	    type: Array

	ProviderRegistered
	  - name: caller
	    type: Hash160
	  - name: provider
	    type: Array

ProviderRegistered carries the registering caller, not the subnet owner.
*/
package registry
