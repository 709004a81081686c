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

package jwks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEquivalentDocuments(t *testing.T) {
	docA := []byte(`{"keys": [{"kty": "RSA", "kid": "a"}]}`)
	docB := []byte("{\n  \"keys\": [\n    {\"kid\": \"a\", \"kty\": \"RSA\"}\n  ]\n}")

	canonA, err := Canonicalize(docA)
	require.NoError(t, err)
	canonB, err := Canonicalize(docB)
	require.NoError(t, err)
	assert.Equal(t, canonA, canonB)
	assert.Equal(t, ContentHash(canonA), ContentHash(canonB))
}

func TestCanonicalizeDistinctDocuments(t *testing.T) {
	docA := []byte(`{"keys":[{"kid":"a"}]}`)
	docB := []byte(`{"keys":[{"kid":"b"}]}`)

	canonA, err := Canonicalize(docA)
	require.NoError(t, err)
	canonB, err := Canonicalize(docB)
	require.NoError(t, err)
	assert.NotEqual(t, ContentHash(canonA), ContentHash(canonB))
}

func TestCanonicalizeInvalidJson(t *testing.T) {
	_, err := Canonicalize([]byte(`{"keys": [`))
	assert.ErrorIs(t, err, ErrInvalidJson)

	_, err = Canonicalize([]byte(``))
	assert.ErrorIs(t, err, ErrInvalidJson)
}

func TestCanonicalizeIsStable(t *testing.T) {
	doc := []byte(`{"keys":[{"kid":"a","kty":"RSA"}]}`)
	canon, err := Canonicalize(doc)
	require.NoError(t, err)
	// Canonicalizing canonical bytes is a fixed point
	canon2, err := Canonicalize(canon)
	require.NoError(t, err)
	assert.Equal(t, canon, canon2)
}

func TestHashRoundTrip(t *testing.T) {
	h := ContentHash([]byte(`{"keys":[]}`))
	assert.Len(t, h.String(), HashSize*2)

	h2, err := HashFromBytes(h.Bytes())
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	_, err = HashFromBytes([]byte{0x01})
	assert.Error(t, err)
}
