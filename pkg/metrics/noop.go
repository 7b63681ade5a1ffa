package metrics

import "time"

var _ Recorder = (*NoopMetrics)(nil)

// NoopMetrics discards everything
type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordSync(platform, outcome string) {}

func (n *NoopMetrics) RecordPlatformRequest(platform, status string, duration time.Duration) {}

func (n *NoopMetrics) RecordCertificationWriteFailure(platform string) {}
