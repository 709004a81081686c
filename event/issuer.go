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

package event

// IssuerRegisteredEventType is the event type for new issuer registrations
const IssuerRegisteredEventType = EventType("issuer.registered")

// IssuerRegisteredEvent is emitted when an issuer is registered for a domain
type IssuerRegisteredEvent struct {
	Caller string
	Domain string
}

// IssuerUpdatedEventType is the event type for issuer record updates
const IssuerUpdatedEventType = EventType("issuer.updated")

// IssuerUpdatedEvent is emitted when an issuer record is replaced wholesale
type IssuerUpdatedEvent struct {
	Caller string
	Domain string
}

// IssuerDeletedEventType is the event type for issuer removals
const IssuerDeletedEventType = EventType("issuer.deleted")

// IssuerDeletedEvent is emitted when an issuer and all of its associated
// state is removed
type IssuerDeletedEvent struct {
	Caller string
	Domain string
}

// IssuerEnabledChangedEventType is the event type for enabled flag changes
const IssuerEnabledChangedEventType = EventType("issuer.enabled_changed")

// IssuerEnabledChangedEvent is emitted when an issuer's enabled flag changes
type IssuerEnabledChangedEvent struct {
	Caller  string
	Domain  string
	Enabled bool
}

// IssuerUrlChangedEventType is the event type for discovery URL changes
const IssuerUrlChangedEventType = EventType("issuer.url_changed")

// IssuerUrlChangedEvent is emitted when an issuer's OpenID discovery URL
// changes
type IssuerUrlChangedEvent struct {
	Caller string
	Domain string
	Url    string
}

// IssuerIntervalChangedEventType is the event type for update interval changes
const IssuerIntervalChangedEventType = EventType("issuer.interval_changed")

// IssuerIntervalChangedEvent is emitted when an issuer's JWKS update
// interval changes. Interval is the stored value after clamping.
type IssuerIntervalChangedEvent struct {
	Caller   string
	Domain   string
	Interval uint64
}

// JwksUpdatedEventType is the event type for active JWKS changes
const JwksUpdatedEventType = EventType("issuer.jwks_updated")

// JwksUpdatedEvent is emitted when a domain's active JWKS document changes,
// either directly or as the outcome of a tally
type JwksUpdatedEvent struct {
	Domain      string
	ContentHash []byte
}

// JwksProposedEventType is the event type for JWKS proposals
const JwksProposedEventType = EventType("jwks.proposed")

// JwksProposedEvent is emitted when a voter proposes a JWKS document for a
// domain
type JwksProposedEvent struct {
	Voter       string
	Domain      string
	ContentHash []byte
	Votes       uint64
}

// RoundAdvancedEventType is the event type for voting round advancement
const RoundAdvancedEventType = EventType("round.advanced")

// RoundAdvancedEvent is emitted when a domain's voting round is tallied and
// reset. Installed indicates whether a new active document was installed.
type RoundAdvancedEvent struct {
	Domain    string
	Installed bool
}
