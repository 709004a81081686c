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

package metadata

import (
	"log/slog"

	"github.com/openanchor-io/anchord/database/models"
	"github.com/openanchor-io/anchord/database/plugin/metadata/sqlite"
	"github.com/openanchor-io/anchord/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Issuers
	GetIssuer(
		string, // domain
		types.Txn,
	) (*models.Issuer, error)
	GetIssuers(types.Txn) ([]models.Issuer, error)
	SetIssuer(
		models.Issuer,
		types.Txn,
	) error
	DeleteIssuer(
		string, // domain
		types.Txn,
	) error

	// Proposers
	AddProposer(
		string, // domain
		string, // voter
		types.Txn,
	) error
	HasProposer(
		string, // domain
		string, // voter
		types.Txn,
	) (bool, error)
	CountProposers(
		string, // domain
		types.Txn,
	) (int64, error)
	GetProposers(
		string, // domain
		types.Txn,
	) ([]models.Proposer, error)
	DeleteProposers(
		string, // domain
		types.Txn,
	) error
	GetProposedDomains(types.Txn) ([]string, error)

	// Vote counters
	IncrementVoteCounter(
		string, // domain
		[]byte, // contentHash
		types.Txn,
	) (uint64, error)
	GetVoteCounters(
		string, // domain
		types.Txn,
	) ([]models.VoteCounter, error)
	DeleteVoteCounters(
		string, // domain
		types.Txn,
	) error
}

// For now, this always returns a sqlite plugin
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	return sqlite.New(dataDir, logger, promRegistry)
}
