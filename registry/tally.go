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

package registry

import (
	"bytes"
	"errors"

	"github.com/openanchor-io/anchord/database"
	"github.com/openanchor-io/anchord/database/types"
	"github.com/openanchor-io/anchord/event"
)

// tallyResult describes the outcome of a tally for event publication
type tallyResult struct {
	winnerHash []byte
	installed  bool
}

// Tally selects the winning JWKS proposal for a domain and installs it as
// the domain's active document. The winner is the content hash with the
// strictly highest vote count; ties keep the first hash that reached the
// running maximum in counter insertion order. A domain with zero proposals
// has its active document cleared.
func (r *Registry) Tally(caller string, domain string) error {
	if !r.authority.AuthorizeRegistrar(caller) {
		return ErrNotAuthorized
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var result tallyResult
	txn := r.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		var err error
		result, err = r.tallyDomain(domain, txn)
		return err
	})
	if err != nil {
		return err
	}

	r.logger.Info(
		"tally complete",
		"domain", domain,
		"caller", caller,
		"installed", result.installed,
	)
	if result.installed {
		r.publish(
			event.JwksUpdatedEventType,
			event.JwksUpdatedEvent{
				Domain:      domain,
				ContentHash: result.winnerHash,
			},
		)
	}
	return nil
}

// tallyDomain runs the winner selection for a domain within an open
// transaction. Callers publish events after the transaction commits.
func (r *Registry) tallyDomain(
	domain string,
	txn *database.Txn,
) (tallyResult, error) {
	var result tallyResult
	existing, err := r.db.GetIssuer(domain, txn)
	if err != nil {
		return result, err
	}
	if existing == nil {
		return result, ErrIssuerNotFound
	}

	counters, err := r.db.GetVoteCounters(domain, txn)
	if err != nil {
		return result, err
	}
	// First hash to reach the running strict maximum wins. Counters are
	// scanned in insertion order, so ties resolve to the earliest proposal.
	var winnerHash []byte
	var maxCount uint64
	for _, counter := range counters {
		if counter.Count > maxCount {
			maxCount = counter.Count
			winnerHash = counter.ContentHash
		}
	}

	current, err := r.db.GetActiveJwks(domain, txn)
	if err != nil {
		if !errors.Is(err, types.ErrBlobKeyNotFound) {
			return result, err
		}
		current = nil
	}

	if winnerHash == nil {
		// No proposals. The empty winner is still installed, clearing any
		// previously active document.
		if current == nil {
			return result, nil
		}
		if err := r.db.DeleteActiveJwks(domain, txn); err != nil {
			return result, err
		}
		result.installed = true
		return result, nil
	}

	winnerContent, err := r.db.GetJwksContent(winnerHash, txn)
	if err != nil {
		return result, err
	}
	if bytes.Equal(current, winnerContent) {
		// Unchanged: skip the write and the event
		return result, nil
	}
	if err := r.db.SetActiveJwks(domain, winnerContent, txn); err != nil {
		return result, err
	}
	result.winnerHash = winnerHash
	result.installed = true
	return result, nil
}
