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

package verify

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKid = "test-key-1"

type testSigner struct {
	privKey   jwk.Key
	jwksBytes []byte
}

func newTestSigner(t *testing.T, kid string) *testSigner {
	t.Helper()
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privKey, err := jwk.FromRaw(rsaKey)
	require.NoError(t, err)
	require.NoError(t, privKey.Set(jwk.KeyIDKey, kid))
	require.NoError(t, privKey.Set(jwk.AlgorithmKey, jwa.RS256))

	pubKey, err := privKey.PublicKey()
	require.NoError(t, err)
	keySet := jwk.NewSet()
	require.NoError(t, keySet.AddKey(pubKey))
	jwksBytes, err := json.Marshal(keySet)
	require.NoError(t, err)

	return &testSigner{
		privKey:   privKey,
		jwksBytes: jwksBytes,
	}
}

func (s *testSigner) sign(t *testing.T, claims map[string]any) string {
	t.Helper()
	builder := jwt.NewBuilder()
	for name, value := range claims {
		builder = builder.Claim(name, value)
	}
	tok, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, s.privKey))
	require.NoError(t, err)
	return string(signed)
}

func defaultClaims() map[string]any {
	return map[string]any{
		jwt.IssuerKey:     "https://example.com",
		jwt.SubjectKey:    "user-1",
		jwt.ExpirationKey: time.Now().Add(time.Hour),
	}
}

func TestVerify(t *testing.T) {
	signer := newTestSigner(t, testKid)
	token := signer.sign(t, defaultClaims())
	assert.NoError(t, Verify(token, signer.jwksBytes))
	assert.NoError(t, Verify(token, signer.jwksBytes, WithClaims()))
}

func TestVerifyInvalidJwks(t *testing.T) {
	signer := newTestSigner(t, testKid)
	token := signer.sign(t, defaultClaims())
	err := Verify(token, []byte(`{"keys": [`))
	assert.ErrorIs(t, err, ErrInvalidJwks)
}

func TestVerifyInvalidToken(t *testing.T) {
	signer := newTestSigner(t, testKid)
	err := Verify("not-a-token", signer.jwksBytes)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyUnknownKid(t *testing.T) {
	signer := newTestSigner(t, testKid)
	other := newTestSigner(t, "other-key")
	token := other.sign(t, defaultClaims())
	err := Verify(token, signer.jwksBytes)
	assert.ErrorIs(t, err, ErrNoJwkForKid)
}

func TestVerifyWrongKey(t *testing.T) {
	signer := newTestSigner(t, testKid)
	// Different key material under the same kid
	impostor := newTestSigner(t, testKid)
	token := impostor.sign(t, defaultClaims())
	err := Verify(token, signer.jwksBytes)
	assert.ErrorIs(t, err, ErrVerifying)
}

func TestVerifyClaimsMissingIssuer(t *testing.T) {
	signer := newTestSigner(t, testKid)
	claims := defaultClaims()
	delete(claims, jwt.IssuerKey)
	token := signer.sign(t, claims)

	// Signature still verifies without the claim checks
	assert.NoError(t, Verify(token, signer.jwksBytes))
	err := Verify(token, signer.jwksBytes, WithClaims())
	assert.ErrorIs(t, err, ErrNoIssuer)
}

func TestVerifyClaimsMissingSubject(t *testing.T) {
	signer := newTestSigner(t, testKid)
	claims := defaultClaims()
	delete(claims, jwt.SubjectKey)
	token := signer.sign(t, claims)
	err := Verify(token, signer.jwksBytes, WithClaims())
	assert.ErrorIs(t, err, ErrNoSub)
}

func TestVerifyClaimsExpired(t *testing.T) {
	signer := newTestSigner(t, testKid)
	claims := defaultClaims()
	claims[jwt.ExpirationKey] = time.Now().Add(-time.Hour)
	token := signer.sign(t, claims)

	assert.NoError(t, Verify(token, signer.jwksBytes))
	err := Verify(token, signer.jwksBytes, WithClaims())
	assert.ErrorIs(t, err, ErrTokenExpired)
}
