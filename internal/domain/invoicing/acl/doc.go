// Package acl defines anti-corruption interfaces for external
// collaborators the invoicing engine consumes: the customer directory,
// the product catalog and the notification service. Infrastructure
// provides the concrete adapters.
package acl
