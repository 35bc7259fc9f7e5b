package services

import (
	"context"
	"log/slog"
)

// Security event types.
const (
	EventSignInFailed   = "signin_failed"
	EventSignIn         = "signin"
	EventSignUp         = "signup"
	EventSignOut        = "signout"
	EventForcedLogout   = "forced_logout"
	EventAccessDenied   = "access_denied"
	EventRateLimited    = "rate_limited"
	EventPasswordChange = "password_changed"
)

// SecurityLogger records authentication and authorization events on a
// dedicated slog logger.
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger tags every record with component=security.
func NewSecurityLogger(logger *slog.Logger) *SecurityLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SecurityLogger{logger: logger.With("component", "security")}
}

// LogSecurityEvent records one event. Failures and denials are warnings.
func (sl *SecurityLogger) LogSecurityEvent(eventType, details, ipAddress string) {
	if sl == nil {
		return
	}
	level := slog.LevelInfo
	switch eventType {
	case EventSignInFailed, EventForcedLogout, EventAccessDenied, EventRateLimited:
		level = slog.LevelWarn
	}
	sl.logger.Log(context.Background(), level, "Security event",
		"event", eventType,
		"details", details,
		"ip", ipAddress,
	)
}
