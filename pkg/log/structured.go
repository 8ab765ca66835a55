package log

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/landclear/quote-planner/pkg/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StructuredLogger produces operation tracers that log every step of an
// operation with the same set of fields.
//
//	tracer := log.NewDebugLogger("quote_service").
//		WithContext(ctx).
//		Operation("create_quote").
//		WithString("package", "medium").
//		Build()
//	tracer.Step("resolved_location").WithBool("verified", true).Log()
//	tracer.Success().Log()
type StructuredLogger struct {
	name string
	ctx  context.Context
}

func NewDebugLogger(name string) *StructuredLogger {
	return &StructuredLogger{name: name, ctx: context.Background()}
}

// WithContext returns a copy of the logger bound to ctx. The request id
// stored in ctx, if any, is attached to every entry.
func (l *StructuredLogger) WithContext(ctx context.Context) *StructuredLogger {
	if ctx == nil {
		ctx = context.Background()
	}
	return &StructuredLogger{name: l.name, ctx: ctx}
}

func (l *StructuredLogger) Operation(op string) *OperationBuilder {
	b := &OperationBuilder{name: l.name, op: op}
	if id := requestid.FromContext(l.ctx); id != "" {
		b.fields = append(b.fields, zap.String("request_id", id))
	}
	return b
}

type OperationBuilder struct {
	name   string
	op     string
	fields []zapcore.Field
}

func (b *OperationBuilder) WithString(key, value string) *OperationBuilder {
	b.fields = append(b.fields, zap.String(key, value))
	return b
}

func (b *OperationBuilder) WithInt(key string, value int) *OperationBuilder {
	b.fields = append(b.fields, zap.Int(key, value))
	return b
}

func (b *OperationBuilder) WithFloat(key string, value float64) *OperationBuilder {
	b.fields = append(b.fields, zap.Float64(key, value))
	return b
}

func (b *OperationBuilder) WithBool(key string, value bool) *OperationBuilder {
	b.fields = append(b.fields, zap.Bool(key, value))
	return b
}

func (b *OperationBuilder) WithUUID(key string, value uuid.UUID) *OperationBuilder {
	b.fields = append(b.fields, zap.String(key, value.String()))
	return b
}

func (b *OperationBuilder) Build() *OperationTracer {
	return &OperationTracer{
		logger: zap.L().Named(b.name).With(zap.String("operation", b.op)),
		fields: b.fields,
		start:  time.Now(),
	}
}

// OperationTracer logs the steps and the outcome of one operation.
type OperationTracer struct {
	logger *zap.Logger
	fields []zapcore.Field
	start  time.Time
}

func (t *OperationTracer) Step(name string) *Entry {
	return t.entry(zapcore.DebugLevel, "step", zap.String("step", name))
}

func (t *OperationTracer) Success() *Entry {
	return t.entry(zapcore.DebugLevel, "operation succeeded", zap.Duration("duration", time.Since(t.start)))
}

func (t *OperationTracer) Error(err error) *Entry {
	return t.entry(zapcore.ErrorLevel, "operation failed", zap.Error(err), zap.Duration("duration", time.Since(t.start)))
}

func (t *OperationTracer) entry(lvl zapcore.Level, msg string, extra ...zapcore.Field) *Entry {
	fields := make([]zapcore.Field, 0, len(t.fields)+len(extra))
	fields = append(fields, t.fields...)
	fields = append(fields, extra...)
	return &Entry{logger: t.logger, level: lvl, msg: msg, fields: fields}
}

// Entry is a single log line. Nothing is written until Log is called.
type Entry struct {
	logger *zap.Logger
	level  zapcore.Level
	msg    string
	fields []zapcore.Field
}

func (e *Entry) WithString(key, value string) *Entry {
	e.fields = append(e.fields, zap.String(key, value))
	return e
}

func (e *Entry) WithInt(key string, value int) *Entry {
	e.fields = append(e.fields, zap.Int(key, value))
	return e
}

func (e *Entry) WithFloat(key string, value float64) *Entry {
	e.fields = append(e.fields, zap.Float64(key, value))
	return e
}

func (e *Entry) WithBool(key string, value bool) *Entry {
	e.fields = append(e.fields, zap.Bool(key, value))
	return e
}

func (e *Entry) WithUUID(key string, value uuid.UUID) *Entry {
	e.fields = append(e.fields, zap.String(key, value.String()))
	return e
}

func (e *Entry) Log() {
	if ce := e.logger.Check(e.level, e.msg); ce != nil {
		ce.Write(e.fields...)
	}
}
