// Package token implements the cart recovery token codec.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/freshlane/cartvault/pkg/clock"
)

// MinSecretLength is the minimum accepted signing secret length in bytes.
const MinSecretLength = 16

// derivedKeyLength is the HMAC key length derived from the secret.
const derivedKeyLength = 32

// keyDerivationInfo binds derived keys to this codec version.
const keyDerivationInfo = "cartvault/recovery-token/v1"

// Verification errors. All are terminal for the verification attempt.
var (
	// ErrMalformed indicates the token does not have exactly two segments.
	ErrMalformed = errors.New("recovery token malformed")

	// ErrSignatureInvalid indicates the signature does not match the payload.
	ErrSignatureInvalid = errors.New("recovery token signature invalid")

	// ErrPayloadInvalid indicates the payload segment could not be decoded or parsed.
	ErrPayloadInvalid = errors.New("recovery token payload invalid")

	// ErrPayloadMalformed indicates the payload decoded but has the wrong structure.
	ErrPayloadMalformed = errors.New("recovery token payload malformed")

	// ErrTimestampInvalid indicates the token aged out or carries a future timestamp.
	ErrTimestampInvalid = errors.New("recovery token expired or timestamp invalid")
)

// ErrSecretTooShort is returned by NewCodec for secrets below MinSecretLength.
var ErrSecretTooShort = errors.New("recovery token secret too short")

// Item is one line of cart contents as carried by a token.
type Item struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// payload is the signed token body.
type payload struct {
	IssuedAt *int64 `json:"iat"`
	Items    []Item `json:"items"`
}

// Codec signs and verifies recovery tokens.
//
// Codec holds no cart state; it is safe for concurrent use.
type Codec struct {
	key   []byte
	clock clock.Clock
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock sets the time source used for issuance and age checks.
func WithClock(c clock.Clock) Option {
	return func(cd *Codec) {
		cd.clock = c
	}
}

// NewCodec creates a Codec whose signing key is derived from secret
// via HKDF-SHA256. The secret must be at least MinSecretLength bytes.
func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}

	key := make([]byte, derivedKeyLength)
	kdf := hkdf.New(sha256.New, secret, nil, []byte(keyDerivationInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}

	c := &Codec{
		key:   key,
		clock: clock.System(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Sign encodes items into a signed token issued at the current instant.
//
// The payload carries (sku, quantity) pairs only. Line identifiers,
// customer data, and totals never enter a token.
func (c *Codec) Sign(items []Item) (string, error) {
	iat := c.clock.Now().UnixMilli()

	reduced := make([]Item, len(items))
	copy(reduced, items)

	body, err := json.Marshal(payload{IssuedAt: &iat, Items: reduced})
	if err != nil {
		return "", err
	}

	seg := base64.RawURLEncoding.EncodeToString(body)
	return seg + "." + c.signSegment(seg), nil
}

// Verify checks a token's signature, structure, and age, returning the
// carried items list on success.
//
// A token older than maxAge, or dated in the future, is permanently
// unusable. Verification failures are all terminal; there is no
// partial-trust mode.
func (c *Codec) Verify(tok string, maxAge time.Duration) ([]Item, error) {
	segs := strings.Split(tok, ".")
	if len(segs) != 2 {
		return nil, ErrMalformed
	}
	payloadSeg, sigSeg := segs[0], segs[1]

	// Signature first: nothing in the payload is trusted before the MAC
	// has been checked.
	expected := c.signSegment(payloadSeg)
	if subtle.ConstantTimeEq(int32(len(expected)), int32(len(sigSeg))) != 1 {
		return nil, ErrSignatureInvalid
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sigSeg)) != 1 {
		return nil, ErrSignatureInvalid
	}

	body, err := base64.RawURLEncoding.DecodeString(payloadSeg)
	if err != nil {
		return nil, ErrPayloadInvalid
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrPayloadMalformed
		}
		return nil, ErrPayloadInvalid
	}

	if err := validateStructure(&p); err != nil {
		return nil, err
	}

	age := c.clock.Now().UnixMilli() - *p.IssuedAt
	if age < 0 || age > maxAge.Milliseconds() {
		return nil, ErrTimestampInvalid
	}

	return p.Items, nil
}

// signSegment computes the Base64 RawURL encoded HMAC-SHA256 of a
// payload segment.
func (c *Codec) signSegment(seg string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(seg))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// validateStructure enforces the payload shape: iat must be a number,
// items must be a sequence of (sku, quantity) with non-empty SKUs and
// positive quantities.
func validateStructure(p *payload) error {
	if p.IssuedAt == nil {
		return ErrPayloadMalformed
	}
	if p.Items == nil {
		return ErrPayloadMalformed
	}
	for _, item := range p.Items {
		if item.SKU == "" || item.Quantity < 1 {
			return ErrPayloadMalformed
		}
	}
	return nil
}
