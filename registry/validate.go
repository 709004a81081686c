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
	"github.com/openanchor-io/anchord/jwks"
)

func (r *Registry) validateDomain(domain string) error {
	if domain == "" {
		return ErrInvalidDomain
	}
	if uint(len(domain)) > r.config.MaxDomainLen {
		return ErrDomainTooLong
	}
	return nil
}

func (r *Registry) validateUrl(url string) error {
	if uint(len(url)) > r.config.MaxOpenIDURLLen {
		return ErrUrlTooLong
	}
	return nil
}

// canonicalizeJwks validates and canonicalizes a JWKS document. Length is
// checked both before and after canonicalization, since canonicalization can
// change byte length in either direction.
func (r *Registry) canonicalizeJwks(content []byte) ([]byte, error) {
	if len(content) == 0 {
		return nil, ErrJwksEmpty
	}
	if uint(len(content)) > r.config.MaxJwksLen {
		return nil, ErrJwksTooLong
	}
	canonical, err := jwks.Canonicalize(content)
	if err != nil {
		return nil, err
	}
	if uint(len(canonical)) > r.config.MaxJwksLen {
		return nil, ErrJwksTooLong
	}
	return canonical, nil
}

// clampInterval silently corrects out-of-range update intervals into the
// configured bounds rather than rejecting them
func (r *Registry) clampInterval(interval uint64) uint64 {
	if interval < r.config.MinUpdateInterval {
		return r.config.MinUpdateInterval
	}
	if interval > r.config.MaxUpdateInterval {
		return r.config.MaxUpdateInterval
	}
	return interval
}
