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

import "errors"

// State errors
var (
	ErrIssuerExists   = errors.New("issuer already exists")
	ErrIssuerNotFound = errors.New("issuer does not exist")
)

// Authorization errors
var (
	ErrNotAuthorized      = errors.New("caller is not an authorized registrar")
	ErrVoterNotAuthorized = errors.New("caller is not an authorized voter")
)

// Vote-integrity errors
var (
	ErrAlreadyProposed = errors.New("voter already proposed for this domain")
	ErrMaxProposers    = errors.New("proposer list at capacity")
)

// Validation errors
var (
	ErrInvalidDomain  = errors.New("invalid domain")
	ErrDomainTooLong  = errors.New("domain exceeds maximum length")
	ErrUrlTooLong     = errors.New("url exceeds maximum length")
	ErrJwksTooLong    = errors.New("jwks document exceeds maximum length")
	ErrJwksEmpty      = errors.New("jwks document is empty")
	ErrUnknownCommand = errors.New("unknown command")
)
