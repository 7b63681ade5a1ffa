package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of audit event
type EventType string

const (
	EventSyncCompleted      EventType = "sync_completed"
	EventSyncDegraded       EventType = "sync_degraded"
	EventSyncUnsupported    EventType = "sync_unsupported"
	EventPlatformRemoved    EventType = "platform_removed"
	EventAuthRejected       EventType = "auth_rejected"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
)

// Event is one entry of the sync audit trail
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Service   string         `json:"service"`
	Env       string         `json:"env"`
	Event     EventType      `json:"event"`
	UserID    string         `json:"user_id,omitempty"`
	Platform  string         `json:"platform,omitempty"`
	Username  string         `json:"username,omitempty"` // masked
	IP        string         `json:"ip,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Logger writes audit events through zap
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var defaultLogger *Logger

// New builds a production zap logger writing JSON to stdout
func New(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zl, err := config.Build(zap.AddCaller())
	if err != nil {
		zl, _ = zap.NewProduction()
	}

	l := NewWithZap(zl, serviceName, environment)
	defaultLogger = l
	return l
}

// NewWithZap wraps an existing zap logger
func NewWithZap(zl *zap.Logger, serviceName, environment string) *Logger {
	return &Logger{zapLogger: zl, serviceName: serviceName, environment: environment}
}

// Default returns the process logger, or a no-op logger before New is called
func Default() *Logger {
	if defaultLogger == nil {
		return NewWithZap(zap.NewNop(), "skill-sync-backend", "development")
	}
	return defaultLogger
}

// Log writes one event
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = l.serviceName
	event.Env = l.environment

	level := zapcore.InfoLevel
	switch event.Event {
	case EventSyncDegraded, EventRateLimitTriggered:
		level = zapcore.WarnLevel
	case EventAuthRejected:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Env),
		zap.String("event", string(event.Event)),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.Platform != "" {
		fields = append(fields, zap.String("platform", event.Platform))
	}
	if event.Username != "" {
		fields = append(fields, zap.String("username", MaskUsername(event.Username)))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	l.zapLogger.Log(level, string(event.Event), fields...)
}

// LogSync records the outcome of one sync call
func (l *Logger) LogSync(ctx context.Context, event EventType, userID, platform, username string, details map[string]any) {
	l.Log(ctx, Event{
		Event:    event,
		UserID:   userID,
		Platform: platform,
		Username: username,
		Details:  details,
	})
}

// LogAuthRejected records a request turned away by the auth middleware
func (l *Logger) LogAuthRejected(ctx context.Context, ip, requestID, reason string) {
	l.Log(ctx, Event{
		Event:     EventAuthRejected,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]any{"reason": reason},
	})
}

// LogRateLimitTriggered records a throttled request. userID is empty for
// anonymous callers; the limiter key is masked since it may be a user id or IP.
func (l *Logger) LogRateLimitTriggered(ctx context.Context, userID, key, ip, requestID, endpoint string) {
	l.Log(ctx, Event{
		Event:     EventRateLimitTriggered,
		UserID:    userID,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]any{"endpoint": endpoint, "key": MaskUsername(key)},
	})
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// MaskUsername keeps the first two characters: "leetcoder" -> "le*******"
func MaskUsername(username string) string {
	runes := []rune(username)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-2)
}
