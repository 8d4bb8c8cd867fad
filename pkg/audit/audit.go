package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"jobby-backend/internal/domain"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Action names one entry of the profile audit trail.
type Action string

const (
	ActionProfileUpdated     Action = "profile_updated"
	ActionImageUpdated       Action = "profile_image_updated"
	ActionContactUpdated     Action = "contact_updated"
	ActionImageUploaded      Action = "image_uploaded"
	ActionUploadRejected     Action = "upload_rejected"
	ActionOwnershipViolation Action = "ownership_violation"
	ActionRateLimited        Action = "rate_limit_triggered"
	ActionValidationFailed   Action = "validation_failed"
)

type Entry struct {
	Action    Action
	UserID    string
	ProfileID int64
	IP        string
	RequestID string
	Details   map[string]interface{}
}

// Logger writes the audit trail of profile writes and rejected requests.
type Logger struct {
	zap         *zap.Logger
	service     string
	environment string
}

func New(service, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return &Logger{zap: logger, service: service, environment: environment}
}

// NewWithCore is used by tests to capture entries.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{zap: zap.New(core), service: "test", environment: "test"}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

func (l *Logger) Record(ctx context.Context, e Entry) {
	if l == nil {
		return
	}
	if e.RequestID == "" {
		e.RequestID, _ = ctx.Value(domain.KeyRequestID).(string)
	}

	level := zapcore.InfoLevel
	switch e.Action {
	case ActionUploadRejected, ActionRateLimited, ActionValidationFailed:
		level = zapcore.WarnLevel
	case ActionOwnershipViolation:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("service", l.service),
		zap.String("env", l.environment),
		zap.String("action", string(e.Action)),
		zap.Time("at", time.Now().UTC()),
	}
	if e.UserID != "" {
		fields = append(fields, zap.String("subject", HashValue(e.UserID)))
	}
	if e.ProfileID != 0 {
		fields = append(fields, zap.Int64("profile_id", e.ProfileID))
	}
	if e.IP != "" {
		fields = append(fields, zap.String("ip", e.IP))
	}
	if e.RequestID != "" {
		fields = append(fields, zap.String("request_id", e.RequestID))
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("details", e.Details))
	}

	l.zap.Log(level, string(e.Action), fields...)
}

func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.zap.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 3 || at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue creates a short SHA256 digest of a value so logs carry no PII.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
