// Package security provides structured security and request logging.
package security

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Severity is attached to every entry as the "severity" field.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
	SeveritySecurity Severity = "SECURITY"
)

// SecurityEventType names an auditable event.
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventLogout             SecurityEventType = "LOGOUT"
	EventRegister           SecurityEventType = "REGISTER"
	EventRegisterDuplicate  SecurityEventType = "REGISTER_DUPLICATE"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventCardCreate         SecurityEventType = "CARD_CREATE"
	EventCardUpdate         SecurityEventType = "CARD_UPDATE"
	EventCardDelete         SecurityEventType = "CARD_DELETE"
	EventCardScopeMiss      SecurityEventType = "CARD_SCOPE_MISS"
)

// Logger writes JSON log entries through logrus.
type Logger struct {
	log *logrus.Logger
}

// NewLogger returns a Logger writing JSON to stdout at info level.
func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(newJSONFormatter())
	l.SetLevel(logrus.InfoLevel)
	return &Logger{log: l}
}

func newJSONFormatter() *logrus.JSONFormatter {
	return &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg:  "message",
			logrus.FieldKeyTime: "timestamp",
		},
	}
}

// SetOutput redirects log output.
func (l *Logger) SetOutput(w io.Writer) {
	l.log.SetOutput(w)
}

// SetLevel parses and applies a level name; unknown names fall back to info.
func (l *Logger) SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.log.SetLevel(lvl)
}

func (l *Logger) entry(sev Severity) *logrus.Entry {
	return l.log.WithField("severity", sev)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.entry(SeverityInfo).Info(msg)
}

// Warn logs a warning.
func (l *Logger) Warn(msg string) {
	l.entry(SeverityWarning).Warn(msg)
}

// Error logs an error with its full wrapped chain.
func (l *Logger) Error(msg string, err error) {
	e := l.entry(SeverityError)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}

// Critical logs an error that prevents the service from working.
func (l *Logger) Critical(msg string, err error) {
	e := l.entry(SeverityCritical)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}

// SecurityEvent logs an auditable event with the acting user and request origin.
// actorID is nil when the actor is not authenticated.
func (l *Logger) SecurityEvent(
	eventType SecurityEventType,
	actorID *int,
	actorName string,
	ipAddress string,
	userAgent string,
	extra map[string]interface{},
) {
	fields := logrus.Fields{
		"event_type": eventType,
		"ip_address": ipAddress,
		"user_agent": userAgent,
	}
	if actorID != nil {
		fields["actor_id"] = *actorID
	}
	if actorName != "" {
		fields["actor"] = actorName
	}
	if len(extra) > 0 {
		fields["extra"] = extra
	}

	l.entry(SeveritySecurity).WithFields(fields).Info(fmt.Sprintf("security event: %s", eventType))
}

// HTTPRequest logs one served request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMS int64, ipAddress, userAgent, requestID string) {
	l.entry(SeverityInfo).WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"status":     status,
		"latency_ms": latencyMS,
		"ip_address": ipAddress,
		"user_agent": userAgent,
		"request_id": requestID,
	}).Info(fmt.Sprintf("%s %s %d", method, path, status))
}
