package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Validation errors. Callers match them with errors.Is; each is returned
// before any store access.
var (
	ErrMissingBadgeID = errors.New("tag or tag_id is required")
	ErrMalformedField = errors.New("malformed field")
	ErrMissingField   = errors.New("required field missing")
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidRange   = errors.New("invalid date range")
	ErrInvalidCursor  = errors.New("last_id must be a non-negative integer")
)

// IsValidation reports whether err is one of the validation errors above.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrMissingBadgeID, ErrMalformedField, ErrMissingField,
		ErrInvalidDate, ErrInvalidRange, ErrInvalidCursor,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

const DefaultStoreTimeout = 3 * time.Second

var tracer = otel.Tracer("github.com/BrandonDHaskell/rollcall/internal/rollcall/service")

// Settings are shared by every service.
type Settings struct {
	// Location is the serving timezone used for calendar dates.
	Location *time.Location
	// StoreTimeout bounds each operation's store work.
	StoreTimeout time.Duration
	Now          func() time.Time
	Logger       *zap.Logger
}

func (s Settings) withDefaults() Settings {
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.StoreTimeout <= 0 {
		s.StoreTimeout = DefaultStoreTimeout
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return s
}

func (s Settings) now() time.Time { return s.Now().In(s.Location) }

func (s Settings) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.StoreTimeout)
}

// endSpan records err on span, then ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
