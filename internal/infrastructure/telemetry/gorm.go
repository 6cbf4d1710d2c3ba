package telemetry

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls GORM instrumentation.
type DBConfig struct {
	Tracing            bool
	Metrics            bool
	LogFullSQL         bool          // include query variables in spans; dev only
	SlowQueryThreshold time.Duration // default 200ms
}

// InstrumentGorm registers otelgorm tracing and query metrics on db according to cfg.
func InstrumentGorm(db *gorm.DB, cfg DBConfig, meter metric.Meter, logger *zap.Logger) error {
	if cfg.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
		logger.Info("Database tracing enabled", zap.Bool("log_full_sql", cfg.LogFullSQL))
	}
	if cfg.Metrics && meter != nil {
		plugin, err := NewQueryMetricsPlugin(meter, cfg.SlowQueryThreshold)
		if err != nil {
			return err
		}
		if err := db.Use(plugin); err != nil {
			return err
		}
		logger.Info("Database metrics enabled", zap.Duration("slow_query_threshold", plugin.slowQuery))
	}
	return nil
}

// QueryMetricsPlugin is a GORM plugin recording query counts and latencies.
type QueryMetricsPlugin struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	slowQuery      time.Duration
}

// NewQueryMetricsPlugin creates the db_query_* instruments.
func NewQueryMetricsPlugin(meter metric.Meter, slowQuery time.Duration) (*QueryMetricsPlugin, error) {
	if slowQuery <= 0 {
		slowQuery = 200 * time.Millisecond
	}
	p := &QueryMetricsPlugin{slowQuery: slowQuery}

	var err error
	if p.queryTotal, err = NewCounter(meter, "db_query_total", "Total number of database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if p.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if p.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Total number of slow database queries", "{query}"); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the plugin name.
func (p *QueryMetricsPlugin) Name() string {
	return "db_metrics"
}

// Initialize registers before/after callbacks for query and raw statements, the
// only kinds this read-only engine issues.
func (p *QueryMetricsPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("db_metrics:before_query", p.before); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("db_metrics:after_query", p.after); err != nil {
		return err
	}
	if err := db.Callback().Raw().Before("gorm:raw").Register("db_metrics:before_raw", p.before); err != nil {
		return err
	}
	if err := db.Callback().Raw().After("gorm:raw").Register("db_metrics:after_raw", p.after); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("db_metrics:before_row", p.before); err != nil {
		return err
	}
	return db.Callback().Row().After("gorm:row").Register("db_metrics:after_row", p.after)
}

type queryStartKey struct{}

func (p *QueryMetricsPlugin) before(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, queryStartKey{}, time.Now())
}

func (p *QueryMetricsPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	op := AttrDBOperation.String(detectOperation(db.Statement.SQL.String()))

	p.queryTotal.Inc(ctx, op)
	p.queryDuration.RecordDuration(ctx, elapsed, op)
	if elapsed > p.slowQuery {
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		p.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

func detectOperation(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, op := range []string{"SELECT", "REFRESH", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}
