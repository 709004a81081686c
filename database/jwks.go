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

package database

import (
	"errors"

	"github.com/openanchor-io/anchord/database/types"
)

// Blob key prefixes for JWKS documents. Proposed documents are stored once
// under their content hash, while each domain has a single mutable slot for
// its active document.
const (
	jwksContentKeyPrefix = "jwks/c/"
	activeJwksKeyPrefix  = "jwks/a/"
)

// JwksContentKey returns the blob key for a content-addressed JWKS document
func JwksContentKey(contentHash []byte) []byte {
	key := []byte(jwksContentKeyPrefix)
	return append(key, contentHash...)
}

// ActiveJwksKey returns the blob key for a domain's active JWKS document
func ActiveJwksKey(domain string) []byte {
	key := []byte(activeJwksKeyPrefix)
	return append(key, []byte(domain)...)
}

// StoreJwksContent stores a JWKS document under its content hash. Storing
// the same content again is a no-op, which keeps identical proposals from
// different voters deduplicated.
func (d *Database) StoreJwksContent(
	contentHash []byte,
	content []byte,
	txn *Txn,
) error {
	if txn == nil || txn.Blob() == nil {
		return types.ErrNilTxn
	}
	key := JwksContentKey(contentHash)
	_, err := d.Blob().Get(txn.Blob(), key)
	if err == nil {
		// Content already stored
		return nil
	}
	if !errors.Is(err, types.ErrBlobKeyNotFound) {
		return err
	}
	return d.Blob().Set(txn.Blob(), key, content)
}

// GetJwksContent returns the JWKS document stored under a content hash
func (d *Database) GetJwksContent(
	contentHash []byte,
	txn *Txn,
) ([]byte, error) {
	if txn == nil {
		txn = NewBlobOnlyTxn(d, false)
		defer txn.Release()
	}
	if txn.Blob() == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	return d.Blob().Get(txn.Blob(), JwksContentKey(contentHash))
}

// SetActiveJwks installs a JWKS document as the active document for a domain
func (d *Database) SetActiveJwks(
	domain string,
	content []byte,
	txn *Txn,
) error {
	if txn == nil || txn.Blob() == nil {
		return types.ErrNilTxn
	}
	return d.Blob().Set(txn.Blob(), ActiveJwksKey(domain), content)
}

// GetActiveJwks returns the active JWKS document for a domain. Returns
// types.ErrBlobKeyNotFound when the domain has no active document
func (d *Database) GetActiveJwks(
	domain string,
	txn *Txn,
) ([]byte, error) {
	if txn == nil {
		txn = NewBlobOnlyTxn(d, false)
		defer txn.Release()
	}
	if txn.Blob() == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	return d.Blob().Get(txn.Blob(), ActiveJwksKey(domain))
}

// DeleteActiveJwks removes the active JWKS document for a domain
func (d *Database) DeleteActiveJwks(
	domain string,
	txn *Txn,
) error {
	if txn == nil || txn.Blob() == nil {
		return types.ErrNilTxn
	}
	return d.Blob().Delete(txn.Blob(), ActiveJwksKey(domain))
}
