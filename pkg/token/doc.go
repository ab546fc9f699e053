// Package token implements the cart recovery token codec.
//
// A recovery token is a signed, self-contained encoding of cart
// contents that lets a client rebuild an equivalent cart after the
// original record has expired. The codec is a stateless sign/verify
// pair parameterized by a shared secret and a maximum token age.
//
// Token Format:
//
//   - <payload>.<signature>
//   - payload: Base64 RawURL encoded JSON {"iat": <unix_ms>, "items": [...]}
//   - signature: Base64 RawURL encoded HMAC-SHA256 over the payload segment
//
// The payload carries only (sku, quantity) pairs and the issuance
// instant. Identifiers, customer data, and monetary totals are
// deliberately excluded; totals are always recomputed server-side.
//
// Security:
//
//   - Signing key derived from the shared secret via HKDF-SHA256
//   - Constant-time signature comparison (length checked first)
//   - Future-dated issuance instants are rejected, not tolerated
package token
