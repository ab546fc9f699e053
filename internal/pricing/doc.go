// Package pricing provides the price and tax lookup collaborator.
//
// The catalog is a pure, static lookup: known SKUs resolve to their
// configured unit price, unknown SKUs fall back to a default price,
// and a single rational tax rate applies to the subtotal. All amounts
// are integer currency units.
package pricing
