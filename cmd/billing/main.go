package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jesses-code-adventures/billing/internal/archive"
	"github.com/jesses-code-adventures/billing/internal/cache"
	"github.com/jesses-code-adventures/billing/internal/config"
	"github.com/jesses-code-adventures/billing/internal/database"
	"github.com/jesses-code-adventures/billing/internal/errs"
	"github.com/jesses-code-adventures/billing/internal/logger"
	"github.com/jesses-code-adventures/billing/internal/metrics"
	"github.com/jesses-code-adventures/billing/internal/numbering"
	"github.com/jesses-code-adventures/billing/internal/render"
	"github.com/jesses-code-adventures/billing/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))
		os.Exit(1)
	}
}

func run() error {
	a := &app{}
	defer a.close()

	rootCmd := newRootCmd(a)
	return rootCmd.ExecuteContext(context.Background())
}

// app holds everything a command needs. It is built lazily so flags can override config.
type app struct {
	dbURL           string
	dbDriver        string
	sequenceBackend string

	cfg     *config.Config
	store   database.DB
	docs    *service.DocumentService
	metrics *metrics.Metrics
	closers []func() error
}

func (a *app) setup(ctx context.Context) error {
	if a.docs != nil {
		return nil
	}

	cfg, err := config.Load(a.dbURL, a.dbDriver, a.sequenceBackend)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	a.cfg = cfg

	store, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	a.metrics = metrics.New()
	opts := []service.Option{
		service.WithMetrics(a.metrics),
		service.WithCompany(render.Company{
			Name:    cfg.Company.Name,
			Address: cfg.Company.Address,
			Phone:   cfg.Company.Phone,
			Email:   cfg.Company.Email,
			ABN:     cfg.Company.ABN,
			Bank:    cfg.Company.Bank,
		}),
	}

	// Counters outside the record store start from the highest stored number in each scope.
	var seed func(ctx context.Context, scope string, last int64) error
	switch cfg.SequenceBackend {
	case config.SequenceRedis:
		counter, err := cache.NewRedisCounter(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, counter.Close)
		opts = append(opts, service.WithCounter(counter))
		seed = counter.Seed
	case config.SequenceLocal:
		counter := numbering.NewLocalCounter()
		opts = append(opts, service.WithCounter(counter))
		seed = func(_ context.Context, scope string, last int64) error {
			counter.Seed(scope, last)
			return nil
		}
	}

	if cfg.ArchiveEnabled() {
		bucket, err := archive.NewS3Archive(ctx, archive.Options{
			Bucket:    cfg.Archive.Bucket,
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
		})
		if err != nil {
			return err
		}
		opts = append(opts, service.WithArchive(bucket))
	}

	a.docs = service.NewDocumentService(store, opts...)
	if seed == nil {
		return nil
	}

	highest, err := a.docs.HighestSequences(ctx)
	if err != nil {
		return err
	}
	for scope, last := range highest {
		if err := seed(ctx, scope, last); err != nil {
			return fmt.Errorf("failed to seed %s counter: %w", scope, err)
		}
	}
	return nil
}

// close pushes the run's metrics and releases connections.
func (a *app) close() {
	log := logger.WithComponent("cli")
	if a.cfg != nil {
		if err := a.metrics.Push(a.cfg.PushgatewayURL, "billing"); err != nil {
			log.Warn().Err(err).Msg("metrics were not pushed")
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("failed to close resource")
		}
	}
}

// describeError shows the stable kind and message of a document failure. Startup and usage
// errors are printed as they are.
func describeError(err error) string {
	var e *errs.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	kind, msg := errs.Public(err)
	return fmt.Sprintf("%s (%s)", msg, kind)
}
