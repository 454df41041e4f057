package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"releasegate/internal/bootstrap/logging"
	"releasegate/internal/errs"
	"releasegate/internal/ports"
)

const DefaultSubjectPrefix = "releasegate.readiness"

// Publisher is the part of *nats.Conn the sink needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes readiness events as JSON:
//
//	{prefix}.gate.{environment}
//	{prefix}.run.{environment}
//
// Publish failures are logged and dropped.
type NATSSink struct {
	pub    Publisher
	prefix string
}

func NewNATSSink(pub Publisher, subjectPrefix string) *NATSSink {
	subjectPrefix = strings.Trim(strings.TrimSpace(subjectPrefix), ".")
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}
	return &NATSSink{pub: pub, prefix: subjectPrefix}
}

// Connect dials NATS with the reconnect policy used for event fan-out.
func Connect(ctx context.Context, url string) (*nats.Conn, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "telemetry.nats"))

	nc, err := nats.Connect(url,
		nats.Name("releasegate"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %s", url)
	}
	logging.Info(logCtx, "connected to nats", slog.String("url", url))
	return nc, nil
}

func (s *NATSSink) RecordGateEvaluation(ctx context.Context, event ports.GateEvaluationEvent) {
	s.publish(ctx, s.subject("gate", event.Environment), event)
}

func (s *NATSSink) RecordRunStatus(ctx context.Context, event ports.RunStatusEvent) {
	s.publish(ctx, s.subject("run", event.Environment), event)
}

func (s *NATSSink) subject(kind string, environment string) string {
	env := strings.TrimSpace(environment)
	if env == "" {
		env = "unknown"
	}
	return s.prefix + "." + kind + "." + env
}

func (s *NATSSink) publish(ctx context.Context, subject string, event any) {
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "telemetry.nats"),
		slog.String("subject", subject),
	)

	data, err := json.Marshal(event)
	if err != nil {
		logging.Warn(logCtx, "marshal readiness event failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	if err := s.pub.Publish(subject, data); err != nil {
		logging.Warn(logCtx, "publish readiness event failed", slog.Any("err", errs.Loggable(err)))
	}
}
