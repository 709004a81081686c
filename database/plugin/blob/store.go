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

package blob

import (
	"fmt"
	"log/slog"

	"github.com/openanchor-io/anchord/database/plugin"
	badgerstore "github.com/openanchor-io/anchord/database/plugin/blob/badger"
	"github.com/openanchor-io/anchord/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

// BlobStore is the interface for the key-value store holding JWKS documents:
// hash-addressed immutable content blobs plus the mutable active-JWKS slot
// per domain. All access happens within a types.Txn so the database layer
// can coordinate blob and metadata writes atomically.
type BlobStore interface {
	Close() error
	NewTransaction(readWrite bool) types.Txn
	Get(txn types.Txn, key []byte) ([]byte, error)
	Set(txn types.Txn, key, val []byte) error
	Delete(txn types.Txn, key []byte) error
	NewIterator(txn types.Txn, opts types.BlobIteratorOptions) types.BlobIterator

	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
}

// New returns the started blob plugin selected by name
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (BlobStore, error) {
	// Construct the default plugin directly so it picks up our logger and
	// metrics registry; anything else goes through the plugin registry
	if pluginName == "badger" {
		return badgerstore.New(
			badgerstore.WithDataDir(dataDir),
			badgerstore.WithLogger(logger),
			badgerstore.WithPromRegistry(promRegistry),
		)
	}

	if err := plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "data-dir", dataDir); err != nil {
		return nil, err
	}
	p, err := plugin.StartPlugin(plugin.PluginTypeBlob, pluginName)
	if err != nil {
		return nil, err
	}

	// Type assert to BlobStore interface
	blobStore, ok := p.(BlobStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement BlobStore interface",
			pluginName,
		)
	}

	return blobStore, nil
}
