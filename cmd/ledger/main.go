package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	ledgerapp "github.com/Apolo151/tourist-village-app-sub000/internal/application/ledger"
	occupancyapp "github.com/Apolo151/tourist-village-app-sub000/internal/application/occupancy"
	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/config"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/logger"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// exit codes
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitPartial  = 3
	exitNotFound = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitUsage
	}

	command, rest := args[0], args[1:]
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	opts := &options{}
	opts.register(fs, command)
	if err := fs.Parse(rest); err != nil {
		return exitUsage
	}

	switch command {
	case "summary", "statement", "occupancy":
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		printUsage()
		return exitUsage
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitFailure
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return exitFailure
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return exitFailure
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "summary", "statement":
		return runLedger(ctx, command, cfg, db, opts, log)
	default:
		return runOccupancy(ctx, cfg, db, opts, log)
	}
}

func runLedger(ctx context.Context, command string, cfg *config.Config, db *persistence.Database, opts *options, log *zap.Logger) int {
	req, err := opts.summaryRequest()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	aggCfg, err := ledgerapp.ConfigFromSettings(cfg.Ledger)
	if err != nil {
		log.Error("Invalid ledger configuration", zap.Error(err))
		return exitFailure
	}
	agg := ledgerapp.NewAggregator(
		persistence.NewPaymentRepository(db.DB),
		persistence.NewServiceChargeRepository(db.DB),
		persistence.NewUtilityChargeRepository(db.DB),
		aggCfg,
		ledgerapp.WithLogger(log),
		ledgerapp.WithApartments(persistence.NewApartmentRepository(db.DB)),
	)

	var (
		out     any
		partial bool
	)
	if command == "summary" {
		res, err := agg.Summarize(ctx, req)
		if err != nil {
			return reportError(log, err)
		}
		out, partial = res, res.Partial
	} else {
		res, err := agg.Statement(ctx, req)
		if err != nil {
			return reportError(log, err)
		}
		out, partial = res, res.Partial
	}

	if err := writeJSON(out); err != nil {
		log.Error("Failed to write output", zap.Error(err))
		return exitFailure
	}
	if partial {
		log.Warn("Result is partial: a transaction source failed", zap.Int64("apartment_id", req.ApartmentID))
		return exitPartial
	}
	return exitOK
}

func runOccupancy(ctx context.Context, cfg *config.Config, db *persistence.Database, opts *options, log *zap.Logger) int {
	if opts.apartmentID <= 0 {
		fmt.Fprintln(os.Stderr, "-apartment is required")
		return exitUsage
	}
	at := time.Now()
	if opts.at != "" {
		t, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -at %q: %v\n", opts.at, err)
			return exitUsage
		}
		at = t
	}

	exists, err := persistence.NewApartmentRepository(db.DB).Exists(ctx, opts.apartmentID)
	if err != nil {
		return reportError(log, err)
	}
	if !exists {
		return reportError(log, shared.ErrNotFound.WithMessage(fmt.Sprintf("apartment %d not found", opts.apartmentID)))
	}

	svcOpts := []occupancyapp.Option{occupancyapp.WithLogger(log)}
	if opts.crossCheck {
		svcOpts = append(svcOpts, occupancyapp.WithStatusView(persistence.NewOccupancyViewRepository(db.DB)))
	}
	svcCfg := occupancyapp.ConfigFromSettings(cfg.Occupancy)
	svcCfg.CacheEnabled = false
	svc := occupancyapp.NewService(persistence.NewBookingRepository(db.DB), nil, svcCfg, svcOpts...)

	p, err := svc.CurrentStatus(ctx, opts.apartmentID, at)
	if err != nil {
		return reportError(log, err)
	}

	var mismatch *occupancyapp.Mismatch
	if opts.crossCheck {
		mismatch, err = svc.CrossCheck(ctx, opts.apartmentID, at)
		if err != nil {
			log.Warn("Occupancy view cross-check failed", zap.Error(err))
		}
	}

	if err := writeJSON(struct {
		Projection any                    `json:"projection"`
		Mismatch   *occupancyapp.Mismatch `json:"view_mismatch,omitempty"`
	}{p, mismatch}); err != nil {
		log.Error("Failed to write output", zap.Error(err))
		return exitFailure
	}
	return exitOK
}

func reportError(log *zap.Logger, err error) int {
	var de *shared.DomainError
	if errors.As(err, &de) {
		log.Error("Request failed", zap.String("code", de.Code), zap.String("message", de.Message))
		switch {
		case errors.Is(err, shared.ErrNotFound):
			return exitNotFound
		case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidDateRange):
			return exitUsage
		}
		return exitFailure
	}
	log.Error("Request failed", zap.Error(err))
	return exitFailure
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// options holds the flags of every subcommand
type options struct {
	configFile         string
	apartmentID        int64
	from               string
	to                 string
	includeRenters     bool
	includeCompanyPaid *bool
	at                 string
	crossCheck         bool
}

func (o *options) register(fs *flag.FlagSet, command string) {
	fs.StringVar(&o.configFile, "config", "", "Path to a config file (default: ./config.toml if present)")
	fs.Int64Var(&o.apartmentID, "apartment", 0, "Apartment id")

	if command == "occupancy" {
		fs.StringVar(&o.at, "at", "", "Instant to resolve at, RFC3339 (default: now)")
		fs.BoolVar(&o.crossCheck, "cross-check", false, "Compare with the database occupancy view")
		return
	}

	fs.StringVar(&o.from, "from", "", "First day of the window, YYYY-MM-DD")
	fs.StringVar(&o.to, "to", "", "Last day of the window (inclusive), YYYY-MM-DD")
	fs.BoolVar(&o.includeRenters, "include-renters", false, "Include renter transactions")
	fs.Func("include-company-paid", "Override the company-paid policy (true or false)", func(s string) error {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		o.includeCompanyPaid = &v
		return nil
	})
}

func (o *options) summaryRequest() (ledgerapp.SummaryRequest, error) {
	req := ledgerapp.SummaryRequest{
		ApartmentID:               o.apartmentID,
		IncludeRenterTransactions: o.includeRenters,
		IncludeCompanyPaid:        o.includeCompanyPaid,
	}
	var err error
	if req.DateFrom, err = parseDay("from", o.from); err != nil {
		return req, err
	}
	if req.DateTo, err = parseDay("to", o.to); err != nil {
		return req, err
	}
	return req, nil
}

func parseDay(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid -%s %q: want YYYY-MM-DD", name, value)
	}
	return &t, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Village Ledger

Usage:
  ledger <command> [flags]

Commands:
  summary     Per-currency totals, opening balance and ledger of an apartment
  statement   Owner transactions table with running balances
  occupancy   Current occupancy status of an apartment

Flags (summary, statement):
  -apartment int              Apartment id (required)
  -from YYYY-MM-DD            First day of the reporting window
  -to YYYY-MM-DD              Last day of the reporting window (inclusive)
  -include-renters            Include renter payments and charges
  -include-company-paid bool  Override the configured company-paid policy

Flags (occupancy):
  -apartment int              Apartment id (required)
  -at RFC3339                 Instant to resolve at (default: now)
  -cross-check                Compare with the database occupancy view

Common:
  -config string              Config file (default: ./config.toml if present)

Exit codes:
  0 ok, 1 failure, 2 invalid input, 3 partial result, 4 not found`)
}
