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
	"errors"

	"github.com/openanchor-io/anchord/database"
	"github.com/openanchor-io/anchord/database/models"
	"github.com/openanchor-io/anchord/database/types"
	"github.com/openanchor-io/anchord/event"
	"github.com/openanchor-io/anchord/jwks"
)

// Register creates an issuer record for a domain. When a JWKS document is
// supplied it is canonicalized, stored in the content store, and installed
// as the domain's active document. The whole operation commits atomically or
// leaves no trace.
func (r *Registry) Register(
	caller string,
	domain string,
	openIDURL *string,
	jwksBytes []byte,
	interval *uint64,
) error {
	if !r.authority.AuthorizeRegistrar(caller) {
		return ErrNotAuthorized
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.validateDomain(domain); err != nil {
		return err
	}
	if openIDURL != nil {
		if err := r.validateUrl(*openIDURL); err != nil {
			return err
		}
	}
	var canonical []byte
	var contentHash jwks.Hash
	if jwksBytes != nil {
		var err error
		canonical, err = r.canonicalizeJwks(jwksBytes)
		if err != nil {
			return err
		}
		contentHash = jwks.ContentHash(canonical)
	}
	var storedInterval *uint64
	if interval != nil {
		clamped := r.clampInterval(*interval)
		storedInterval = &clamped
	}

	txn := r.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		existing, err := r.db.GetIssuer(domain, txn)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrIssuerExists
		}
		issuer := models.Issuer{
			Domain:         domain,
			OpenIDURL:      openIDURL,
			IntervalUpdate: storedInterval,
			IsEnabled:      true,
		}
		if err := r.db.SetIssuer(issuer, txn); err != nil {
			return err
		}
		if canonical != nil {
			if err := r.db.StoreJwksContent(contentHash.Bytes(), canonical, txn); err != nil {
				return err
			}
			if err := r.db.SetActiveJwks(domain, canonical, txn); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info(
		"issuer registered",
		"domain", domain,
		"caller", caller,
	)
	r.publish(
		event.IssuerRegisteredEventType,
		event.IssuerRegisteredEvent{Caller: caller, Domain: domain},
	)
	if canonical != nil {
		r.publish(
			event.JwksUpdatedEventType,
			event.JwksUpdatedEvent{
				Domain:      domain,
				ContentHash: contentHash.Bytes(),
			},
		)
	}
	return nil
}

// Update replaces all mutable fields of an issuer record. Absent inputs
// clear the stored values, including removing the active JWKS document. This
// is full-replace, not a partial patch.
func (r *Registry) Update(
	caller string,
	domain string,
	openIDURL *string,
	jwksBytes []byte,
	interval *uint64,
	enabled bool,
) error {
	if !r.authority.AuthorizeRegistrar(caller) {
		return ErrNotAuthorized
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.validateDomain(domain); err != nil {
		return err
	}
	if openIDURL != nil {
		if err := r.validateUrl(*openIDURL); err != nil {
			return err
		}
	}
	var canonical []byte
	var contentHash jwks.Hash
	if jwksBytes != nil {
		var err error
		canonical, err = r.canonicalizeJwks(jwksBytes)
		if err != nil {
			return err
		}
		contentHash = jwks.ContentHash(canonical)
	}
	var storedInterval *uint64
	if interval != nil {
		clamped := r.clampInterval(*interval)
		storedInterval = &clamped
	}

	txn := r.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		existing, err := r.db.GetIssuer(domain, txn)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrIssuerNotFound
		}
		issuer := models.Issuer{
			ID:             existing.ID,
			Domain:         domain,
			OpenIDURL:      openIDURL,
			IntervalUpdate: storedInterval,
			IsEnabled:      enabled,
		}
		if err := r.db.SetIssuer(issuer, txn); err != nil {
			return err
		}
		if canonical != nil {
			if err := r.db.StoreJwksContent(contentHash.Bytes(), canonical, txn); err != nil {
				return err
			}
			if err := r.db.SetActiveJwks(domain, canonical, txn); err != nil {
				return err
			}
		} else {
			if err := r.db.DeleteActiveJwks(domain, txn); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info(
		"issuer updated",
		"domain", domain,
		"caller", caller,
	)
	r.publish(
		event.IssuerUpdatedEventType,
		event.IssuerUpdatedEvent{Caller: caller, Domain: domain},
	)
	return nil
}

// Delete removes an issuer and all of its associated state: the active JWKS
// document, proposer rows, and vote counters
func (r *Registry) Delete(caller string, domain string) error {
	if !r.authority.AuthorizeRegistrar(caller) {
		return ErrNotAuthorized
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	txn := r.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		existing, err := r.db.GetIssuer(domain, txn)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrIssuerNotFound
		}
		if err := r.db.DeleteIssuer(domain, txn); err != nil {
			return err
		}
		if err := r.db.DeleteActiveJwks(domain, txn); err != nil {
			return err
		}
		if err := r.db.DeleteProposers(domain, txn); err != nil {
			return err
		}
		if err := r.db.DeleteVoteCounters(domain, txn); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info(
		"issuer deleted",
		"domain", domain,
		"caller", caller,
	)
	r.publish(
		event.IssuerDeletedEventType,
		event.IssuerDeletedEvent{Caller: caller, Domain: domain},
	)
	return nil
}

// SetUpdateInterval clamps and stores the issuer's JWKS update interval. A
// nil interval clears the stored value.
func (r *Registry) SetUpdateInterval(
	caller string,
	domain string,
	interval *uint64,
) error {
	if !r.authority.AuthorizeRegistrar(caller) {
		return ErrNotAuthorized
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var storedInterval *uint64
	if interval != nil {
		clamped := r.clampInterval(*interval)
		storedInterval = &clamped
	}

	txn := r.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		existing, err := r.db.GetIssuer(domain, txn)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrIssuerNotFound
		}
		existing.IntervalUpdate = storedInterval
		return r.db.SetIssuer(*existing, txn)
	})
	if err != nil {
		return err
	}

	var evtInterval uint64
	if storedInterval != nil {
		evtInterval = *storedInterval
	}
	r.publish(
		event.IssuerIntervalChangedEventType,
		event.IssuerIntervalChangedEvent{
			Caller:   caller,
			Domain:   domain,
			Interval: evtInterval,
		},
	)
	return nil
}

// SetEnabled sets the issuer's enabled flag. Setting the flag to its current
// value performs no write and publishes no event.
func (r *Registry) SetEnabled(
	caller string,
	domain string,
	enabled bool,
) error {
	if !r.authority.AuthorizeRegistrar(caller) {
		return ErrNotAuthorized
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	changed := false
	txn := r.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		existing, err := r.db.GetIssuer(domain, txn)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrIssuerNotFound
		}
		if existing.IsEnabled == enabled {
			return nil
		}
		changed = true
		existing.IsEnabled = enabled
		return r.db.SetIssuer(*existing, txn)
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	r.publish(
		event.IssuerEnabledChangedEventType,
		event.IssuerEnabledChangedEvent{
			Caller:  caller,
			Domain:  domain,
			Enabled: enabled,
		},
	)
	return nil
}

// SetOpenIDURL sets the issuer's OpenID discovery URL. Setting the URL to
// its current value performs no write and publishes no event.
func (r *Registry) SetOpenIDURL(
	caller string,
	domain string,
	url string,
) error {
	if !r.authority.AuthorizeRegistrar(caller) {
		return ErrNotAuthorized
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.validateUrl(url); err != nil {
		return err
	}

	changed := false
	txn := r.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		existing, err := r.db.GetIssuer(domain, txn)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrIssuerNotFound
		}
		if existing.OpenIDURL != nil && *existing.OpenIDURL == url {
			return nil
		}
		changed = true
		existing.OpenIDURL = &url
		return r.db.SetIssuer(*existing, txn)
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	r.publish(
		event.IssuerUrlChangedEventType,
		event.IssuerUrlChangedEvent{
			Caller: caller,
			Domain: domain,
			Url:    url,
		},
	)
	return nil
}

// GetIssuer returns the issuer record for a domain
func (r *Registry) GetIssuer(domain string) (*models.Issuer, error) {
	issuer, err := r.db.GetIssuer(domain, nil)
	if err != nil {
		return nil, err
	}
	if issuer == nil {
		return nil, ErrIssuerNotFound
	}
	return issuer, nil
}

// Issuers returns all issuer records ordered by domain
func (r *Registry) Issuers() ([]models.Issuer, error) {
	return r.db.GetIssuers(nil)
}

// ActiveJwks returns the active JWKS document for a domain. Returns nil
// bytes when the issuer exists but has no active document.
func (r *Registry) ActiveJwks(domain string) ([]byte, error) {
	issuer, err := r.db.GetIssuer(domain, nil)
	if err != nil {
		return nil, err
	}
	if issuer == nil {
		return nil, ErrIssuerNotFound
	}
	content, err := r.db.GetActiveJwks(domain, nil)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return content, nil
}
