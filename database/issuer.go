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
	"github.com/openanchor-io/anchord/database/models"
	"github.com/openanchor-io/anchord/database/types"
)

// GetIssuer returns the issuer record for a domain, or nil when the domain
// is not registered
func (d *Database) GetIssuer(
	domain string,
	txn *Txn,
) (*models.Issuer, error) {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().GetIssuer(domain, metadataTxn)
}

// GetIssuers returns all issuer records ordered by domain
func (d *Database) GetIssuers(txn *Txn) ([]models.Issuer, error) {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().GetIssuers(metadataTxn)
}

// SetIssuer saves an issuer record, updating any existing record for the
// domain
func (d *Database) SetIssuer(
	issuer models.Issuer,
	txn *Txn,
) error {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().SetIssuer(issuer, metadataTxn)
}

// DeleteIssuer removes the issuer record for a domain
func (d *Database) DeleteIssuer(
	domain string,
	txn *Txn,
) error {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().DeleteIssuer(domain, metadataTxn)
}
