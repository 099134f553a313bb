// Package provider implements the HTTP transports used to reach nodes and reference services.
//
// This package contains:
//   - HTTPProvider: JSON-RPC 2.0 and query-string REST calls over HTTP, with per-endpoint
//     availability, error rate and latency published as Prometheus gauges
//   - RPCError: a JSON-RPC error object returned by the remote side
//   - DecodeQuantity: parsing of hex/decimal JSON quantities
package provider

import (
	"fmt"
	"time"
)

// healthStatus is the running health of a provider, exported as gauges.
type healthStatus struct {
	Available     bool
	Latency       time.Duration
	ErrorRate     float64
	LastSuccessAt time.Time
	LastFailureAt time.Time
}

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
