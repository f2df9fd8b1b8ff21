package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQueryThreshold marks queries slower than this on their span
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// DBTracingConfig configures GORM tracing
type DBTracingConfig struct {
	Enabled         bool
	DBName          string
	IncludeVars     bool // include bind variables in db.statement; dev only
	SlowQueryThresh time.Duration
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// callbackRegistrar is the value gorm returns from a processor's Before/After
type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// callbackProcessor adapts gorm's unexported processor type
type callbackProcessor struct {
	before func(name string) callbackRegistrar
	after  func(name string) callbackRegistrar
}

func (p callbackProcessor) Before(name string) callbackRegistrar { return p.before(name) }
func (p callbackProcessor) After(name string) callbackRegistrar  { return p.after(name) }

func adaptProcessor[C callbackRegistrar](p interface {
	Before(name string) C
	After(name string) C
}) callbackProcessor {
	return callbackProcessor{
		before: func(name string) callbackRegistrar { return p.Before(name) },
		after:  func(name string) callbackRegistrar { return p.After(name) },
	}
}

// gormHook names one GORM callback chain and the processor step to hook around
type gormHook struct {
	op       string
	step     string
	register func(db *gorm.DB) callbackProcessor
}

var gormHooks = []gormHook{
	{"create", "gorm:create", func(db *gorm.DB) callbackProcessor { return adaptProcessor(db.Callback().Create()) }},
	{"query", "gorm:query", func(db *gorm.DB) callbackProcessor { return adaptProcessor(db.Callback().Query()) }},
	{"update", "gorm:update", func(db *gorm.DB) callbackProcessor { return adaptProcessor(db.Callback().Update()) }},
	{"delete", "gorm:delete", func(db *gorm.DB) callbackProcessor { return adaptProcessor(db.Callback().Delete()) }},
	{"row", "gorm:row", func(db *gorm.DB) callbackProcessor { return adaptProcessor(db.Callback().Row()) }},
	{"raw", "gorm:raw", func(db *gorm.DB) callbackProcessor { return adaptProcessor(db.Callback().Raw()) }},
}

// registerAround installs before/after callbacks named prefix:before_<op> and prefix:after_<op>
func registerAround(db *gorm.DB, prefix string, before func(*gorm.DB), after func(*gorm.DB, string)) error {
	for _, h := range gormHooks {
		op := h.op
		if before != nil {
			if err := h.register(db).Before(h.step).Register(prefix+":before_"+op, before); err != nil {
				return err
			}
		}
		if after != nil {
			if err := h.register(db).After(h.step).Register(prefix+":after_"+op, func(tx *gorm.DB) { after(tx, op) }); err != nil {
				return err
			}
		}
	}
	return nil
}

func stampStart(key any) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		db.Statement.Context = context.WithValue(ctx, key, time.Now())
	}
}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that tag slow
// and failed statements on the active span
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = DefaultSlowQueryThreshold
	}

	// Registered ahead of otelgorm so the annotation runs while its span is still open
	after := func(tx *gorm.DB, _ string) { annotateSpan(tx, cfg.SlowQueryThresh) }
	if err := registerAround(db, "otel_timing", stampStart(queryStartTimeKey), after); err != nil {
		return err
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.IncludeVars {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_name", cfg.DBName),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateSpan(db *gorm.DB, threshold time.Duration) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", threshold.Milliseconds()),
		))
	}
}
