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
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/zeebo/blake3"
)

// ErrInvalidJson is returned when a JWKS document is not well-formed JSON
var ErrInvalidJson = errors.New("invalid json")

// HashSize is the size of a JWKS content hash in bytes
const HashSize = 32

// Hash is the content hash of a canonical JWKS document. Two documents that
// differ only in whitespace or key order produce the same hash.
type Hash [HashSize]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	return h[:]
}

// HashFromBytes converts a raw byte slice into a Hash
func HashFromBytes(data []byte) (Hash, error) {
	var h Hash
	if len(data) != HashSize {
		return h, errors.New("invalid hash length")
	}
	copy(h[:], data)
	return h, nil
}

// Canonicalize converts a JWKS document into its canonical byte form by
// parsing it and re-encoding with sorted object keys and no insignificant
// whitespace. Returns ErrInvalidJson when the document cannot be parsed.
func Canonicalize(content []byte) ([]byte, error) {
	var parsed any
	if err := json.Unmarshal(content, &parsed); err != nil {
		return nil, ErrInvalidJson
	}
	canonical, err := json.Marshal(parsed)
	if err != nil {
		return nil, ErrInvalidJson
	}
	return canonical, nil
}

// ContentHash computes the content hash of a canonical JWKS document
func ContentHash(canonical []byte) Hash {
	return Hash(blake3.Sum256(canonical))
}
