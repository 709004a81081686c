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

package badger

import "github.com/prometheus/client_golang/prometheus"

const blobMetricPrefix = "database_blob_"

type blobMetrics struct {
	opsTotal   *prometheus.CounterVec
	bytesTotal *prometheus.CounterVec
}

func (d *BlobStoreBadger) registerBlobMetrics() {
	d.metrics = &blobMetrics{
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: blobMetricPrefix + "ops_total",
				Help: "Total number of blob store operations by type",
			},
			[]string{"op"},
		),
		bytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: blobMetricPrefix + "bytes_total",
				Help: "Total bytes read and written by blob store operations",
			},
			[]string{"op"},
		),
	}
	d.promRegistry.MustRegister(
		d.metrics.opsTotal,
		d.metrics.bytesTotal,
	)
}

// observeBlobOp records an operation and its payload size. No-op when no
// prometheus registry was configured.
func (d *BlobStoreBadger) observeBlobOp(op string, size int) {
	if d.metrics == nil {
		return
	}
	d.metrics.opsTotal.WithLabelValues(op).Inc()
	if size > 0 {
		d.metrics.bytesTotal.WithLabelValues(op).Add(float64(size))
	}
}
