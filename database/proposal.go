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

// AddProposer records that a voter has proposed for a domain in the current
// round
func (d *Database) AddProposer(
	domain string,
	voter string,
	txn *Txn,
) error {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().AddProposer(domain, voter, metadataTxn)
}

// HasProposer returns whether a voter has already proposed for a domain in
// the current round
func (d *Database) HasProposer(
	domain string,
	voter string,
	txn *Txn,
) (bool, error) {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().HasProposer(domain, voter, metadataTxn)
}

// CountProposers returns the number of voters that have proposed for a
// domain in the current round
func (d *Database) CountProposers(
	domain string,
	txn *Txn,
) (int64, error) {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().CountProposers(domain, metadataTxn)
}

// GetProposers returns the proposers recorded for a domain in the current
// round
func (d *Database) GetProposers(
	domain string,
	txn *Txn,
) ([]models.Proposer, error) {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().GetProposers(domain, metadataTxn)
}

// GetProposedDomains returns the distinct domains that have proposers
// recorded in the current round
func (d *Database) GetProposedDomains(txn *Txn) ([]string, error) {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().GetProposedDomains(metadataTxn)
}

// DeleteProposers removes all proposers recorded for a domain
func (d *Database) DeleteProposers(
	domain string,
	txn *Txn,
) error {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().DeleteProposers(domain, metadataTxn)
}

// IncrementVoteCounter bumps the vote counter for a domain and content hash
// and returns the new count
func (d *Database) IncrementVoteCounter(
	domain string,
	contentHash []byte,
	txn *Txn,
) (uint64, error) {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().IncrementVoteCounter(domain, contentHash, metadataTxn)
}

// GetVoteCounters returns the vote counters recorded for a domain in the
// current round
func (d *Database) GetVoteCounters(
	domain string,
	txn *Txn,
) ([]models.VoteCounter, error) {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().GetVoteCounters(domain, metadataTxn)
}

// DeleteVoteCounters removes all vote counters recorded for a domain
func (d *Database) DeleteVoteCounters(
	domain string,
	txn *Txn,
) error {
	var metadataTxn types.Txn
	if txn != nil {
		metadataTxn = txn.Metadata()
	}
	return d.Metadata().DeleteVoteCounters(domain, metadataTxn)
}
