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
	"math"

	"github.com/openanchor-io/anchord/database/models"
	"github.com/openanchor-io/anchord/database/types"
	"gorm.io/gorm"
)

// maxVoteCount is the saturation bound for vote counters. Sqlite stores
// INTEGER values as signed 64-bit, so counts must stay within int64 range
// to survive the round trip through the driver.
const maxVoteCount = uint64(math.MaxInt64)

// AddProposer records that a voter has proposed for a domain in the current
// round
func (d *MetadataStoreSqlite) AddProposer(
	domain string,
	voter string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpItem := models.Proposer{
		Domain: domain,
		Voter:  voter,
	}
	result := db.Create(&tmpItem)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// HasProposer returns whether a voter has already proposed for a domain in
// the current round
func (d *MetadataStoreSqlite) HasProposer(
	domain string,
	voter string,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return false, err
	}
	var tmpItem models.Proposer
	result := db.First(&tmpItem, "domain = ? AND voter = ?", domain, voter)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, result.Error
	}
	return true, nil
}

// CountProposers returns the number of voters that have proposed for a
// domain in the current round
func (d *MetadataStoreSqlite) CountProposers(
	domain string,
	txn types.Txn,
) (int64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	result := db.Model(&models.Proposer{}).
		Where("domain = ?", domain).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetProposers returns the proposers recorded for a domain in the current
// round
func (d *MetadataStoreSqlite) GetProposers(
	domain string,
	txn types.Txn,
) ([]models.Proposer, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Proposer
	result := db.Where("domain = ?", domain).Order("id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetProposedDomains returns the distinct domains that have proposers
// recorded in the current round
func (d *MetadataStoreSqlite) GetProposedDomains(
	txn types.Txn,
) ([]string, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []string
	result := db.Model(&models.Proposer{}).
		Distinct("domain").
		Order("domain").
		Pluck("domain", &ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// DeleteProposers removes all proposers recorded for a domain
func (d *MetadataStoreSqlite) DeleteProposers(
	domain string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Where("domain = ?", domain).Delete(&models.Proposer{})
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// IncrementVoteCounter bumps the vote counter for a domain and content hash,
// creating it if needed. The counter saturates instead of wrapping. Returns
// the new count
func (d *MetadataStoreSqlite) IncrementVoteCounter(
	domain string,
	contentHash []byte,
	txn types.Txn,
) (uint64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var tmpItem models.VoteCounter
	result := db.First(
		&tmpItem,
		"domain = ? AND content_hash = ?",
		domain,
		contentHash,
	)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, result.Error
		}
		tmpItem = models.VoteCounter{
			Domain:      domain,
			ContentHash: contentHash,
			Count:       1,
		}
		if result := db.Create(&tmpItem); result.Error != nil {
			return 0, result.Error
		}
		return tmpItem.Count, nil
	}
	// Saturate at the maximum storable count rather than wrapping around
	if tmpItem.Count < maxVoteCount {
		tmpItem.Count++
	}
	if result := db.Model(&tmpItem).Update("count", tmpItem.Count); result.Error != nil {
		return 0, result.Error
	}
	return tmpItem.Count, nil
}

// GetVoteCounters returns the vote counters recorded for a domain in the
// current round
func (d *MetadataStoreSqlite) GetVoteCounters(
	domain string,
	txn types.Txn,
) ([]models.VoteCounter, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.VoteCounter
	result := db.Where("domain = ?", domain).Order("id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// DeleteVoteCounters removes all vote counters recorded for a domain
func (d *MetadataStoreSqlite) DeleteVoteCounters(
	domain string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Where("domain = ?", domain).Delete(&models.VoteCounter{})
	if result.Error != nil {
		return result.Error
	}
	return nil
}
