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

package models

// Issuer is the registry entry for an identity issuer, keyed by domain.
// The active JWKS document itself lives in the blob store; this row only
// carries the issuer metadata.
type Issuer struct {
	Domain         string  `gorm:"index;not null;unique;size:253"`
	OpenIDURL      *string `gorm:"size:2048"`
	IntervalUpdate *uint64
	IsEnabled      bool `gorm:"not null"`
	ID             uint `gorm:"primarykey"`
}

func (Issuer) TableName() string {
	return "issuer"
}
