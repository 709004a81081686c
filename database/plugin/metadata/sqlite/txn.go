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

package sqlite

import (
	"sync"

	"github.com/openanchor-io/anchord/database/types"
	"gorm.io/gorm"
)

// sqliteTxn is a thin wrapper around a gorm transaction handle that
// implements the generic transaction interface
type sqliteTxn struct {
	txn      *gorm.DB
	lock     sync.Mutex
	finished bool
}

func (t *sqliteTxn) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil
	}
	t.finished = true
	return t.txn.Commit().Error
}

func (t *sqliteTxn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil
	}
	t.finished = true
	return t.txn.Rollback().Error
}

// Transaction creates a new database transaction
func (d *MetadataStoreSqlite) Transaction() types.Txn {
	if d.metrics != nil {
		d.metrics.txnsTotal.Inc()
	}
	return &sqliteTxn{
		txn: d.DB().Begin(),
	}
}

// resolveDB returns the gorm handle for the given transaction, falling back
// to the base handle when no transaction is given
func (d *MetadataStoreSqlite) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return d.DB(), nil
	}
	tmpTxn, ok := txn.(*sqliteTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if tmpTxn.finished {
		return nil, types.ErrTxnFinished
	}
	return tmpTxn.txn, nil
}
