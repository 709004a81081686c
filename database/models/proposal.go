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

// Proposer records that a voter identity has proposed a JWKS for a domain
// in the current voting round. The composite unique index gives set
// semantics: a voter appears at most once per domain.
type Proposer struct {
	Domain string `gorm:"uniqueIndex:proposer_domain_voter;not null;size:253"`
	Voter  string `gorm:"uniqueIndex:proposer_domain_voter;not null;size:128"`
	ID     uint   `gorm:"primarykey"`
}

func (Proposer) TableName() string {
	return "proposer"
}

// VoteCounter tracks the number of proposals received for a given
// (domain, content hash) pair in the current voting round. Count is
// saturating; increments never wrap.
type VoteCounter struct {
	Domain      string `gorm:"uniqueIndex:vote_counter_domain_hash;not null;size:253"`
	ContentHash []byte `gorm:"uniqueIndex:vote_counter_domain_hash;not null;size:32"`
	Count       uint64 `gorm:"not null"`
	ID          uint   `gorm:"primarykey"`
}

func (VoteCounter) TableName() string {
	return "vote_counter"
}
