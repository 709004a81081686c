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
	"github.com/openanchor-io/anchord/database"
	"github.com/openanchor-io/anchord/event"
	"github.com/openanchor-io/anchord/jwks"
)

// Propose records a voter's JWKS proposal for a domain. The canonical
// document is stored once in the content store no matter how many voters or
// domains propose it. Each voter may propose at most once per domain per
// round, and the proposer list is bounded.
func (r *Registry) Propose(
	caller string,
	domain string,
	jwksBytes []byte,
) error {
	if !r.authority.AuthorizeVoter(caller) {
		return ErrVoterNotAuthorized
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var votes uint64
	var contentHash jwks.Hash
	txn := r.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		// The issuer check precedes document validation, so a malformed
		// proposal for an unknown domain reports the missing issuer
		existing, err := r.db.GetIssuer(domain, txn)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrIssuerNotFound
		}
		canonical, err := r.canonicalizeJwks(jwksBytes)
		if err != nil {
			return err
		}
		contentHash = jwks.ContentHash(canonical)
		if err := r.db.StoreJwksContent(contentHash.Bytes(), canonical, txn); err != nil {
			return err
		}
		has, err := r.db.HasProposer(domain, caller, txn)
		if err != nil {
			return err
		}
		if has {
			return ErrAlreadyProposed
		}
		count, err := r.db.CountProposers(domain, txn)
		if err != nil {
			return err
		}
		if count >= int64(r.config.MaxProposersPerIssuer) {
			return ErrMaxProposers
		}
		if err := r.db.AddProposer(domain, caller, txn); err != nil {
			return err
		}
		votes, err = r.db.IncrementVoteCounter(domain, contentHash.Bytes(), txn)
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info(
		"jwks proposal recorded",
		"domain", domain,
		"voter", caller,
		"content_hash", contentHash.String(),
		"votes", votes,
	)
	r.publish(
		event.JwksProposedEventType,
		event.JwksProposedEvent{
			Voter:       caller,
			Domain:      domain,
			ContentHash: contentHash.Bytes(),
			Votes:       votes,
		},
	)
	return nil
}
