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
)

// AdvanceRound closes the current voting round: every domain with recorded
// proposals is tallied and its proposer rows and vote counters are cleared,
// one atomic transaction per domain. A failure on one domain does not roll
// back domains already advanced.
func (r *Registry) AdvanceRound(caller string) error {
	if !r.authority.AuthorizeRegistrar(caller) {
		return ErrNotAuthorized
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	domains, err := r.db.GetProposedDomains(nil)
	if err != nil {
		return err
	}

	for _, domain := range domains {
		var result tallyResult
		txn := r.db.Transaction(true)
		err := txn.Do(func(txn *database.Txn) error {
			var err error
			result, err = r.tallyDomain(domain, txn)
			if err != nil {
				return err
			}
			if err := r.db.DeleteProposers(domain, txn); err != nil {
				return err
			}
			return r.db.DeleteVoteCounters(domain, txn)
		})
		if err != nil {
			return err
		}

		r.logger.Info(
			"round advanced",
			"domain", domain,
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
		r.publish(
			event.RoundAdvancedEventType,
			event.RoundAdvancedEvent{
				Domain:    domain,
				Installed: result.installed,
			},
		)
	}
	return nil
}
