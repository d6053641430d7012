/*
Package subnet implements Subnet Registry contract which is deployed to FS chain.

Subnet Registry contract associates a subnet with the account that created
it and keeps the list of providers registered against every subnet. A subnet
is created once by its owner and is never changed or removed afterwards. Any
account may register a provider against any existing subnet; providers are
never removed either, duplicates are allowed.

# Contract notifications

SubnetCreated notification. This notification is produced when a new subnet
is registered by invoking CreateSubnet method.

	SubnetCreated
	  - name: owner
	    type: Hash160
	  - name: metadata
	    type: Array

ProviderRegistered notification. This notification is produced when a provider
is registered by invoking RegisterProvider method. Notice that it carries the
account that made the call, not the owner of the subnet.

	ProviderRegistered
	  - name: caller
	    type: Hash160
	  - name: provider
	    type: Array
*/
package subnet

/*
Contract storage model.

Current conventions:
 <owner>: 20-byte script hash of the subnet owner account
 <index>: 4-byte big-endian integer, index of the provider in registration order

# Summary
Key-value storage format:
 - 's<owner>' -> std.Serialize(SubnetMetadata)
   subnet of the owner
 - 'c<owner>' -> int
   number of providers registered against the subnet of the owner
 - 'p<owner><index>' -> std.Serialize([Name, ResourceDetails])
   providers of the owner's subnet, indices are counted starting from 0

# Subnets
Contract stores subnets created within the contract lifetime. Subnet key
presence is checked before any provider is written.

# Providers
Providers of a subnet are read with a prefix search over 'p<owner>', fixed
index width keeps the search result in registration order.
*/
