// Package clock provides an injectable time source.
//
// All expiry and token-age computations in CartVault read time through
// a Clock so tests can advance virtual time deterministically instead
// of sleeping.
package clock
