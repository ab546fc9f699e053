// Package domain defines the core domain models for CartVault.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - Cart: the TTL-governed cart record and its pure transforms
//   - Customer: optional contact annotation on a cart
//   - Rate: integer rational for tax computation
//   - Errors: domain-specific error definitions
//
// Cart mutation is modeled as pure transforms (MergeItem, RemoveItem,
// WithCustomer) that produce a new record value from an old one; the
// store only ever replaces whole records atomically.
package domain
