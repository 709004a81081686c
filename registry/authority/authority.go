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

package authority

// Policy holds the identity sets that gate registry operations: registrars
// may manage issuer records and trigger tallies, voters may propose JWKS
// documents. Membership is the only authorization model.
type Policy struct {
	registrars map[string]struct{}
	voters     map[string]struct{}
}

// NewPolicy builds a policy from the configured registrar and voter
// identities
func NewPolicy(registrars []string, voters []string) *Policy {
	p := &Policy{
		registrars: make(map[string]struct{}, len(registrars)),
		voters:     make(map[string]struct{}, len(voters)),
	}
	for _, r := range registrars {
		p.registrars[r] = struct{}{}
	}
	for _, v := range voters {
		p.voters[v] = struct{}{}
	}
	return p
}

// AuthorizeRegistrar returns whether the caller may perform privileged
// registry operations
func (p *Policy) AuthorizeRegistrar(caller string) bool {
	_, ok := p.registrars[caller]
	return ok
}

// AuthorizeVoter returns whether the caller is in the authorized voter set
func (p *Policy) AuthorizeVoter(caller string) bool {
	_, ok := p.voters[caller]
	return ok
}

// Voters returns the number of identities in the voter set
func (p *Policy) Voters() int {
	return len(p.voters)
}
