package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics counts code issuance and verification outcomes.
type Metrics struct {
	issued   metric.Int64Counter
	verified metric.Int64Counter
	rejected metric.Int64Counter
	failed   metric.Int64Counter
}

// NewMetrics registers the counters on mp. A nil provider yields no-op counters.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter("rsvp.verification")
	issued, err := meter.Int64Counter("rsvp.codes.issued", metric.WithDescription("Verification codes issued"))
	if err != nil {
		return nil, err
	}
	verified, err := meter.Int64Counter("rsvp.codes.verified", metric.WithDescription("Verification codes accepted"))
	if err != nil {
		return nil, err
	}
	rejected, err := meter.Int64Counter("rsvp.codes.rejected", metric.WithDescription("Verification attempts rejected"))
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("rsvp.codes.dispatch_failed", metric.WithDescription("Codes the SMS provider did not accept"))
	if err != nil {
		return nil, err
	}
	return &Metrics{issued: issued, verified: verified, rejected: rejected, failed: failed}, nil
}

// CodeIssued records an issued code; channel is "sms" or "dev".
func (m *Metrics) CodeIssued(ctx context.Context, channel string) {
	if m == nil {
		return
	}
	m.issued.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", channel)))
}

// CodeVerified records a successful verification.
func (m *Metrics) CodeVerified(ctx context.Context) {
	if m == nil {
		return
	}
	m.verified.Add(ctx, 1)
}

// CodeRejected records a failed verification.
func (m *Metrics) CodeRejected(ctx context.Context) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1)
}

// DispatchFailed records an SMS provider failure.
func (m *Metrics) DispatchFailed(ctx context.Context) {
	if m == nil {
		return
	}
	m.failed.Add(ctx, 1)
}
