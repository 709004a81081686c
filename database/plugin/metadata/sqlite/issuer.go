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
	"errors"

	"github.com/openanchor-io/anchord/database/models"
	"github.com/openanchor-io/anchord/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetIssuer returns an issuer record by domain. Returns nil when no record
// exists for the domain
func (d *MetadataStoreSqlite) GetIssuer(
	domain string,
	txn types.Txn,
) (*models.Issuer, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Issuer{}
	result := db.First(ret, "domain = ?", domain)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetIssuers returns all issuer records ordered by domain
func (d *MetadataStoreSqlite) GetIssuers(
	txn types.Txn,
) ([]models.Issuer, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Issuer
	result := db.Order("domain").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetIssuer saves an issuer record, or updates it if one already exists for
// the domain
func (d *MetadataStoreSqlite) SetIssuer(
	issuer models.Issuer,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	// Records with a known primary key update in place. New records insert
	// with an upsert on domain so repeated registration attempts within a
	// transaction surface as updates rather than unique constraint errors.
	if issuer.ID != 0 {
		result := db.Save(&issuer)
		if result.Error != nil {
			return result.Error
		}
		return nil
	}
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		UpdateAll: true,
	}
	result := db.Clauses(onConflict).Create(&issuer)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// DeleteIssuer removes the issuer record for a domain
func (d *MetadataStoreSqlite) DeleteIssuer(
	domain string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Where("domain = ?", domain).Delete(&models.Issuer{})
	if result.Error != nil {
		return result.Error
	}
	return nil
}
