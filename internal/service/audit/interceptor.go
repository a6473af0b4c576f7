package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type commandRecorder interface {
	RecordCommand(ctx context.Context, c CommandCapture) error
}

// Skip reasons used as metric labels.
const (
	guardText     = "table_name"
	guardSuppress = "suppressed"
)

type (
	traceKey struct{}
	batchKey struct{}
	copyKey  struct{}
)

type batchData struct {
	last time.Time
}

type traceData struct {
	sql   string
	args  []any
	start time.Time
}

// CommandInterceptor captures every storage command run through a pgx
// connection it is installed on, reads and writes alike. It implements
// pgx.QueryTracer, pgx.BatchTracer and pgx.CopyFromTracer, so batched
// queries and COPY are captured too.
//
// Two guards keep it from capturing the entry store's own writes: commands
// whose text names the store table are skipped, and so is everything run
// under Suppress. Capture failures are logged and never reach the traced
// command.
type CommandInterceptor struct {
	rec     commandRecorder
	tableRe *regexp.Regexp
	metrics *Metrics
	log     *slog.Logger
}

var (
	_ pgx.QueryTracer    = (*CommandInterceptor)(nil)
	_ pgx.BatchTracer    = (*CommandInterceptor)(nil)
	_ pgx.CopyFromTracer = (*CommandInterceptor)(nil)
)

// NewCommandInterceptor creates an interceptor that records through rec and
// skips commands naming table. A schema-qualified table is matched on its
// last segment.
func NewCommandInterceptor(log *slog.Logger, rec commandRecorder, table string, metrics *Metrics) *CommandInterceptor {
	return &CommandInterceptor{
		rec:     rec,
		tableRe: tablePattern(table),
		metrics: metrics,
		log:     log.With("service", "audit", "component", "command_interceptor"),
	}
}

func tablePattern(table string) *regexp.Regexp {
	if table == "" {
		table = "audit_logs"
	}
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		table = table[i+1:]
	}
	table = strings.Trim(table, `"`)
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(table) + `\b`)
}

// TraceQueryStart decides whether the command is captured. Skipped commands
// get a context that hides any capture started further up the chain.
func (i *CommandInterceptor) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	if !i.allowed(ctx, data.SQL) {
		if ctx.Value(traceKey{}) != nil {
			return context.WithValue(ctx, traceKey{}, (*traceData)(nil))
		}
		return ctx
	}

	return context.WithValue(ctx, traceKey{}, &traceData{
		sql:   data.SQL,
		args:  data.Args,
		start: time.Now(),
	})
}

// TraceQueryEnd records the command started in TraceQueryStart.
func (i *CommandInterceptor) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryEndData) {
	td, ok := ctx.Value(traceKey{}).(*traceData)
	if !ok || td == nil {
		return
	}
	i.capture(ctx, td.sql, td.args, time.Since(td.start))
}

// TraceBatchStart marks the start of a batch. Each query is captured
// separately in TraceBatchQuery.
func (i *CommandInterceptor) TraceBatchStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceBatchStartData) context.Context {
	return context.WithValue(ctx, batchKey{}, &batchData{last: time.Now()})
}

// TraceBatchQuery captures one query of a batch. Its duration runs from the
// previous query's result, or from the start of the batch for the first one.
func (i *CommandInterceptor) TraceBatchQuery(ctx context.Context, _ *pgx.Conn, data pgx.TraceBatchQueryData) {
	now := time.Now()
	var d time.Duration
	if bd, ok := ctx.Value(batchKey{}).(*batchData); ok {
		d = now.Sub(bd.last)
		bd.last = now
	}
	if !i.allowed(ctx, data.SQL) {
		return
	}
	i.capture(ctx, data.SQL, data.Args, d)
}

// TraceBatchEnd is a no-op; batch queries are captured as they complete.
func (i *CommandInterceptor) TraceBatchEnd(context.Context, *pgx.Conn, pgx.TraceBatchEndData) {}

// TraceCopyFromStart decides whether a COPY is captured. The command is
// rendered as COPY <table> (<columns>).
func (i *CommandInterceptor) TraceCopyFromStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceCopyFromStartData) context.Context {
	sql := copySQL(data.TableName, data.ColumnNames)
	if !i.allowed(ctx, sql) {
		if ctx.Value(copyKey{}) != nil {
			return context.WithValue(ctx, copyKey{}, (*traceData)(nil))
		}
		return ctx
	}
	return context.WithValue(ctx, copyKey{}, &traceData{sql: sql, start: time.Now()})
}

// TraceCopyFromEnd records the COPY started in TraceCopyFromStart.
func (i *CommandInterceptor) TraceCopyFromEnd(ctx context.Context, _ *pgx.Conn, _ pgx.TraceCopyFromEndData) {
	td, ok := ctx.Value(copyKey{}).(*traceData)
	if !ok || td == nil {
		return
	}
	i.capture(ctx, td.sql, nil, time.Since(td.start))
}

func copySQL(table pgx.Identifier, columns []string) string {
	cols := make([]string, len(columns))
	for n, c := range columns {
		cols[n] = pgx.Identifier{c}.Sanitize()
	}
	return "COPY " + table.Sanitize() + " (" + strings.Join(cols, ", ") + ")"
}

// Observe records a command the caller has timed itself. The same guards
// apply as for traced commands.
func (i *CommandInterceptor) Observe(ctx context.Context, sql string, args []any, d time.Duration) {
	if !i.allowed(ctx, sql) {
		return
	}
	i.capture(ctx, sql, args, d)
}

// Matches reports whether sql names the entry store table.
func (i *CommandInterceptor) Matches(sql string) bool {
	return i.tableRe.MatchString(sql)
}

func (i *CommandInterceptor) allowed(ctx context.Context, sql string) bool {
	if IsSuppressed(ctx) {
		i.metrics.incSkipped(guardSuppress)
		return false
	}
	if i.Matches(sql) {
		i.metrics.incSkipped(guardText)
		return false
	}
	return true
}

func (i *CommandInterceptor) capture(ctx context.Context, sql string, args []any, d time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			i.metrics.incFailed(sourceCommand)
			i.log.Error("panic while capturing storage command",
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	c := CommandCapture{
		SQL:        sql,
		Parameters: EncodeParams(args),
		Duration:   d,
	}
	if err := i.rec.RecordCommand(context.WithoutCancel(ctx), c); err != nil {
		i.log.WarnContext(ctx, "storage command capture failed",
			slog.String("error", err.Error()),
		)
	}
}

// EncodeParams renders command arguments as a JSON array. Values that do not
// marshal are rendered with %v and byte slices become a length placeholder.
// No arguments encode as an empty string.
func EncodeParams(args []any) string {
	if len(args) == 0 {
		return ""
	}

	out := make([]json.RawMessage, len(args))
	for n, a := range args {
		out[n] = encodeParam(a)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf("%v", args)
	}
	return string(b)
}

func encodeParam(a any) json.RawMessage {
	var v any = a
	if raw, ok := a.([]byte); ok {
		v = fmt.Sprintf("<binary %d bytes>", len(raw))
	}

	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(fmt.Sprintf("%v", a))
	}
	return b
}
