package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". Nil errors produce an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// AccountID records the account that owns the second factor.
func AccountID(id string) slog.Attr {
	return nonEmpty("account_id", id)
}

// EnrollmentID records the enrollment session identifier.
func EnrollmentID(id string) slog.Attr {
	return nonEmpty("enrollment_id", id)
}

// State records a workflow state name.
func State(s string) slog.Attr {
	return nonEmpty("state", s)
}

// Reason records why an operation was refused.
func Reason(r string) slog.Attr {
	return nonEmpty("reason", r)
}

// RequestID records the request correlation identifier.
func RequestID(id string) slog.Attr {
	return nonEmpty("request_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Group nests attrs under name.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

func nonEmpty(key, value string) slog.Attr {
	if value == "" {
		return slog.Attr{}
	}
	return slog.String(key, value)
}
