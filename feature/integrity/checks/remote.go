package checks

import (
	"context"
	"time"
)

// Pinger is implemented by the remote case service client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RemoteReport is the result of a remote service reachability check.
type RemoteReport struct {
	Reachable bool   `json:"reachable"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// CheckRemote pings the remote case service once.
func CheckRemote(ctx context.Context, p Pinger) RemoteReport {
	start := time.Now()
	err := p.Ping(ctx)
	report := RemoteReport{
		Reachable: err == nil,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}
