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
	"fmt"
	"sync"
	"time"

	"github.com/openanchor-io/anchord/database/types"
)

// Txn coordinates a metadata transaction and a blob transaction so that a
// registry operation commits to both stores or to neither. The two halves
// are siblings, not nested.
type Txn struct {
	db        *Database
	blobTxn   types.Txn
	metaTxn   types.Txn
	mu        sync.Mutex
	done      bool
	readWrite bool
}

// NewTxn opens a transaction spanning both stores
func NewTxn(db *Database, readWrite bool) *Txn {
	return &Txn{
		db:        db,
		readWrite: readWrite,
		blobTxn:   db.Blob().NewTransaction(readWrite),
		metaTxn:   db.Metadata().Transaction(),
	}
}

// NewBlobOnlyTxn opens a transaction against the blob store alone, for
// reads that never touch metadata
func NewBlobOnlyTxn(db *Database, readWrite bool) *Txn {
	return &Txn{
		db:        db,
		readWrite: readWrite,
		blobTxn:   db.Blob().NewTransaction(readWrite),
	}
}

func (t *Txn) DB() *Database {
	return t.db
}

// Metadata returns the metadata transaction handle, nil for blob-only
// transactions
func (t *Txn) Metadata() types.Txn {
	return t.metaTxn
}

// Blob returns the blob transaction handle
func (t *Txn) Blob() types.Txn {
	return t.blobTxn
}

// Do runs fn inside the transaction, committing when fn returns nil and
// rolling back otherwise
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return fmt.Errorf(
				"rollback failed: %w: original error: %w",
				rbErr,
				err,
			)
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

// Commit writes both halves of the transaction. When both stores take
// part, a shared commit timestamp is recorded first, so a crash between
// the two store commits is detectable on the next startup. The blob store
// commits before metadata: a failed blob commit leaves metadata untouched.
func (t *Txn) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	// Read-only transactions only need their resources released
	if !t.readWrite {
		return t.finish()
	}
	if t.blobTxn == nil && t.metaTxn == nil {
		t.done = true
		return types.ErrNoStoreAvailable
	}
	if t.blobTxn != nil && t.metaTxn != nil {
		stamp := time.Now().UnixMilli()
		if err := t.db.updateCommitTimestamp(t, stamp); err != nil {
			_ = t.finish()
			return fmt.Errorf("failed to update commit timestamp: %w", err)
		}
	}
	if t.blobTxn != nil {
		if err := t.blobTxn.Commit(); err != nil {
			if t.metaTxn != nil {
				_ = t.metaTxn.Rollback()
			}
			t.done = true
			return fmt.Errorf("blob commit failed: %w", err)
		}
	}
	if t.metaTxn != nil {
		if err := t.metaTxn.Commit(); err != nil {
			t.db.logger.Error(
				"partial commit: blob committed, metadata failed",
				"error", err,
			)
			_ = t.metaTxn.Rollback()
			t.done = true
			return fmt.Errorf(
				"metadata commit failed after blob commit: %w",
				err,
			)
		}
	}
	t.done = true
	return nil
}

// Rollback discards both halves of the transaction
func (t *Txn) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finish()
}

func (t *Txn) finish() error {
	if t.done {
		return nil
	}
	t.done = true
	var err error
	if t.blobTxn != nil {
		if rbErr := t.blobTxn.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("blob rollback: %w", rbErr))
		}
	}
	if t.metaTxn != nil {
		if rbErr := t.metaTxn.Rollback(); rbErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("metadata rollback: %w", rbErr),
			)
		}
	}
	return err
}

// Release rolls the transaction back, logging any error instead of
// returning it. Meant for use in defer statements.
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
