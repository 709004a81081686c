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

package sqlite

import "github.com/prometheus/client_golang/prometheus"

const metadataMetricPrefix = "database_metadata_"

type metadataMetrics struct {
	txnsTotal    prometheus.Counter
	vacuumsTotal prometheus.Counter
}

func (d *MetadataStoreSqlite) registerMetadataMetrics() {
	d.metrics = &metadataMetrics{
		txnsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metadataMetricPrefix + "txns_total",
				Help: "Total number of metadata store transactions started",
			},
		),
		vacuumsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metadataMetricPrefix + "vacuums_total",
				Help: "Total number of vacuum operations run",
			},
		),
	}
	d.promRegistry.MustRegister(
		d.metrics.txnsTotal,
		d.metrics.vacuumsTotal,
	)
}
