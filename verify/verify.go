// Copyright 2025 OpenAnchor Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package verify checks signed tokens against a JWKS snapshot. It holds no
// registry state: callers fetch the active document for the issuer's domain
// and pass it in.
package verify

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	ErrInvalidJwks               = errors.New("invalid JWKS document")
	ErrInvalidToken              = errors.New("invalid token")
	ErrNoJwkForKid               = errors.New("no JWK found for token key ID")
	ErrNotPossibleToGetDecodeKey = errors.New(
		"unable to derive verification key from JWK",
	)
	ErrVerifying    = errors.New("token signature verification failed")
	ErrNoIssuer     = errors.New("token has no issuer claim")
	ErrNoSub        = errors.New("token has no subject claim")
	ErrTokenExpired = errors.New("token is expired")
)

type options struct {
	checkClaims bool
}

type OptionFunc func(*options)

// WithClaims additionally requires a non-empty iss and sub claim and a
// non-expired exp claim
func WithClaims() OptionFunc {
	return func(o *options) {
		o.checkClaims = true
	}
}

// Verify checks the token's signature against the key set in jwksBytes. The
// signing key is selected by the token's kid header.
func Verify(token string, jwksBytes []byte, opts ...OptionFunc) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	keySet, err := jwk.Parse(jwksBytes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJwks, err)
	}

	msg, err := jws.Parse([]byte(token))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	sigs := msg.Signatures()
	if len(sigs) == 0 {
		return ErrInvalidToken
	}
	headers := sigs[0].ProtectedHeaders()
	kid := headers.KeyID()
	if kid == "" {
		return fmt.Errorf("%w: missing kid header", ErrInvalidToken)
	}

	key, ok := keySet.LookupKeyID(kid)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoJwkForKid, kid)
	}
	var rawKey any
	if err := key.Raw(&rawKey); err != nil {
		return fmt.Errorf("%w: %w", ErrNotPossibleToGetDecodeKey, err)
	}

	if _, err := jws.Verify(
		[]byte(token),
		jws.WithKey(headers.Algorithm(), rawKey),
	); err != nil {
		return fmt.Errorf("%w: %w", ErrVerifying, err)
	}

	if o.checkClaims {
		return verifyClaims(token)
	}
	return nil
}

// verifyClaims parses the already-verified token and checks the iss, sub,
// and exp claims
func verifyClaims(token string) error {
	tok, err := jwt.Parse(
		[]byte(token),
		jwt.WithVerify(false),
		jwt.WithValidate(false),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if tok.Issuer() == "" {
		return ErrNoIssuer
	}
	if tok.Subject() == "" {
		return ErrNoSub
	}
	if exp := tok.Expiration(); !exp.IsZero() && time.Now().After(exp) {
		return ErrTokenExpired
	}
	return nil
}
