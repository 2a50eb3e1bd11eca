// Command worker runs the criminal-record-check background worker: it polls
// the verification request queue, matches candidates against the case record
// index and writes the terminal report for each request.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonesrussell/crc-worker/internal/api"
	"github.com/jonesrussell/crc-worker/internal/config"
	"github.com/jonesrussell/crc-worker/internal/database"
	"github.com/jonesrussell/crc-worker/internal/detail"
	"github.com/jonesrussell/crc-worker/internal/logging"
	"github.com/jonesrussell/crc-worker/internal/match"
	"github.com/jonesrussell/crc-worker/internal/notify"
	"github.com/jonesrussell/crc-worker/internal/search"
	"github.com/jonesrussell/crc-worker/internal/storage"
	"github.com/jonesrussell/crc-worker/internal/telemetry"
	"github.com/jonesrussell/crc-worker/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Must(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting record-check worker",
		logging.String("version", cfg.Service.Version),
		logging.Int("port", cfg.Service.Port),
		logging.Duration("poll_interval", cfg.Service.PollInterval),
	)

	db, err := database.NewPostgresConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     strconv.Itoa(cfg.Database.Port),
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close database connection", logging.Error(closeErr))
		}
	}()
	logger.Info("Connected to PostgreSQL")

	searchClient, err := search.NewClient(search.Config{
		CloudID:    cfg.Elasticsearch.CloudID,
		APIKey:     cfg.Elasticsearch.APIKey,
		URL:        cfg.Elasticsearch.URL,
		Username:   cfg.Elasticsearch.Username,
		Password:   cfg.Elasticsearch.Password,
		Index:      cfg.Elasticsearch.Index,
		MaxRetries: cfg.Elasticsearch.MaxRetries,
	})
	if err != nil {
		return fmt.Errorf("create search client: %w", err)
	}

	ctx := context.Background()
	if err = searchClient.Ping(ctx); err != nil {
		return fmt.Errorf("verify search connection: %w", err)
	}
	logger.Info("Connected to Elasticsearch", logging.String("index", cfg.Elasticsearch.Index))

	documents, err := storage.NewDocumentStore(ctx, storage.Config{
		Region:    cfg.AWS.Region,
		AccessKey: cfg.AWS.AccessKey,
		SecretKey: cfg.AWS.SecretKey,
		Bucket:    cfg.AWS.Bucket,
		URLExpiry: cfg.AWS.URLExpiry,
	})
	if err != nil {
		return fmt.Errorf("create document store: %w", err)
	}

	tables := database.Tables{
		Queue:        cfg.Database.Tables.Queue,
		Status:       cfg.Database.Tables.Status,
		Result:       cfg.Database.Tables.Result,
		Report:       cfg.Database.Tables.Report,
		FIRIndex:     cfg.Database.Tables.FIRIndex,
		FIRGeocode:   cfg.Database.Tables.FIRGeocode,
		CourtGeocode: cfg.Database.Tables.CourtGeocode,
	}

	provider := telemetry.NewProvider()

	w := worker.New(
		database.NewQueueRepository(db, tables),
		database.NewLocationRepository(db),
		database.NewLegalCodeRepository(db),
		database.NewReportRepository(db, tables),
		search.NewRetriever(searchClient, logger, cfg.Elasticsearch.Timeout),
		match.NewDistanceResolver(database.NewGeocodeRepository(db, tables)),
		documents,
		detail.NewFetcher(nil),
		notify.NewClient(cfg.Notify.URL, cfg.Notify.Token, &http.Client{Timeout: cfg.Notify.Timeout}),
		provider,
		logger,
		worker.Config{ResultSize: cfg.Elasticsearch.MaxResultSize},
	)

	poller := worker.NewPoller(w, logger, worker.PollerConfig{
		PollInterval: cfg.Service.PollInterval,
	})

	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()

	if err = poller.Start(pollCtx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	handler := api.NewHandler(cfg.Service.Name, cfg.Service.Version, db, searchClient, logger)
	server := api.NewServer(handler, provider, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", logging.String("signal", sig.String()))
	}

	poller.Stop()
	cancelPoll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("Worker stopped gracefully")
	return nil
}
