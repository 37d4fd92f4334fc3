package observability

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
)

type meterKey struct{}

// WithMeter stores a request-scoped meter, usually one already carrying the
// request and visitor attributes.
func WithMeter(ctx context.Context, meter sentry.Meter) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if meter == nil {
		meter = sentry.NewMeter(ctx)
	}
	return context.WithValue(ctx, meterKey{}, meter.WithCtx(ctx))
}

// MeterFromContext returns the request-scoped meter bound to ctx, creating
// an unattributed one outside requests.
func MeterFromContext(ctx context.Context) sentry.Meter {
	if ctx == nil {
		ctx = context.Background()
	}
	if meter, ok := ctx.Value(meterKey{}).(sentry.Meter); ok && meter != nil {
		return meter.WithCtx(ctx)
	}
	return sentry.NewMeter(ctx).WithCtx(ctx)
}

// Count increments the named Sentry counter once. kv is read as
// attribute name/value pairs; a trailing name without a value is dropped.
func Count(ctx context.Context, name string, kv ...string) {
	attrs := make([]attribute.Builder, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = append(attrs, attribute.String(kv[i], kv[i+1]))
	}
	if len(attrs) == 0 {
		MeterFromContext(ctx).Count(name, 1)
		return
	}
	MeterFromContext(ctx).Count(name, 1, sentry.WithAttributes(attrs...))
}
