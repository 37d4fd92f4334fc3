package db

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5"

	"github.com/gitshopapp/storefront/internal/logging"
)

const maxTracedQueryLength = 512

type traceKey struct{}

type queryTrace struct {
	query string
	start time.Time
	span  *sentry.Span
}

// queryTracer wraps each statement in a Sentry span when the caller is
// traced and logs statements slower than slowThreshold.
type queryTracer struct {
	logger        *slog.Logger
	slowThreshold time.Duration
}

func newQueryTracer(logger *slog.Logger, slowThreshold time.Duration) *queryTracer {
	return &queryTracer{logger: logger, slowThreshold: slowThreshold}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	trace := &queryTrace{query: normalizeQuery(data.SQL), start: time.Now()}

	if sentry.SpanFromContext(ctx) != nil {
		trace.span = sentry.StartSpan(ctx, "db.query",
			sentry.WithDescription(trace.query),
			sentry.WithSpanOrigin(sentry.SpanOriginManual),
		)
		trace.span.SetData("db.system", "postgresql")
		if op := queryOperation(trace.query); op != "" {
			trace.span.SetData("db.operation", op)
		}
		if table := queryTable(trace.query); table != "" {
			trace.span.SetData("db.sql.table", table)
		}
		ctx = trace.span.Context()
	}

	return context.WithValue(ctx, traceKey{}, trace)
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	trace, _ := ctx.Value(traceKey{}).(*queryTrace)
	if trace == nil {
		return
	}
	elapsed := time.Since(trace.start)

	if trace.span != nil {
		if data.Err != nil {
			trace.span.Status = sentry.SpanStatusInternalError
			trace.span.SetData("db.error", data.Err.Error())
		} else {
			trace.span.Status = sentry.SpanStatusOK
		}
		if rows := data.CommandTag.RowsAffected(); rows >= 0 {
			trace.span.SetData("db.rows_affected", rows)
		}
		trace.span.Finish()
	}

	if t.logger != nil && t.slowThreshold > 0 && elapsed >= t.slowThreshold {
		logging.FromContext(ctx, t.logger).Warn("slow query",
			"operation", queryOperation(trace.query),
			"table", queryTable(trace.query),
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}

// normalizeQuery collapses whitespace so traced statements group cleanly.
func normalizeQuery(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if normalized == "" {
		return "sql.query"
	}
	if len(normalized) > maxTracedQueryLength {
		return normalized[:maxTracedQueryLength]
	}
	return normalized
}

func queryOperation(query string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(query), " ")
	return strings.ToUpper(first)
}

// queryTable finds the first table named after FROM, INTO or UPDATE.
func queryTable(query string) string {
	fields := strings.Fields(query)
	for i := 0; i < len(fields)-1; i++ {
		switch strings.ToUpper(fields[i]) {
		case "FROM", "INTO", "UPDATE":
			table := strings.Trim(fields[i+1], `"(),;`)
			if table != "" && !strings.HasPrefix(table, "$") {
				return strings.ToLower(table)
			}
		}
	}
	return ""
}
