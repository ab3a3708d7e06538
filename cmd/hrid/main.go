package main

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Alvearie/hri-mgmt-api-sub000/authorization"
	"github.com/Alvearie/hri-mgmt-api-sub000/batch"
	"github.com/Alvearie/hri-mgmt-api-sub000/bolt"
	"github.com/Alvearie/hri-mgmt-api-sub000/http"
	"github.com/Alvearie/hri-mgmt-api-sub000/kafka"
	"github.com/Alvearie/hri-mgmt-api-sub000/kit/cli"
	"github.com/Alvearie/hri-mgmt-api-sub000/stream"
	"github.com/Alvearie/hri-mgmt-api-sub000/tenant"
)

type config struct {
	httpBindAddress string
	boltPath        string
	kafkaBrokers    []string
	kafkaTimeout    time.Duration

	jwtSecret        string
	jwtPublicKeyPath string
	jwtIssuer        string
	jwtAudience      string
}

func main() {
	c := config{}
	cmd := cli.NewCommand(&cli.Program{
		Name: "hrid",
		Run:  func() error { return run(&c) },
		Opts: []cli.Opt{
			cli.NewOpt(&c.httpBindAddress, "http-bind-address", ":1323", "bind address for the HTTP API"),
			cli.NewOpt(&c.boltPath, "bolt-path", "hri.bolt", "path to the boltdb file holding batch documents"),
			cli.NewOpt(&c.kafkaBrokers, "kafka-brokers", []string{"localhost:9092"}, "kafka bootstrap broker addresses"),
			cli.NewOpt(&c.kafkaTimeout, "kafka-timeout", 10*time.Second, "timeout for kafka admin and publish calls"),
			cli.NewOpt(&c.jwtSecret, "jwt-secret", "", "shared secret accepted for HS256 bearer tokens"),
			cli.NewOpt(&c.jwtPublicKeyPath, "jwt-public-key", "", "PEM public key accepted for RS256 bearer tokens"),
			cli.NewOpt(&c.jwtIssuer, "jwt-issuer", "", "required token issuer; empty disables the check"),
			cli.NewOpt(&c.jwtAudience, "jwt-audience", "", "required token audience; empty disables the check"),
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *config) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store := bolt.NewClient(c.boltPath, logger.With(zap.String("service", "bolt")))
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := store.Open(ctx); err != nil {
		return err
	}
	defer store.Close()

	events := kafka.NewBroker(c.kafkaBrokers, c.kafkaTimeout, logger.With(zap.String("service", "kafka")))
	defer events.Close()

	validator, err := authorization.NewValidator(c.jwtSecret, c.jwtPublicKeyPath, c.jwtIssuer, c.jwtAudience)
	if err != nil {
		return err
	}

	handler := http.NewHandler(&http.APIBackend{
		Logger:         logger,
		Store:          store,
		Events:         events,
		TokenValidator: validator,
		TenantService:  tenant.NewService(store, logger.With(zap.String("handler", "tenant"))),
		StreamService:  stream.NewService(events, logger.With(zap.String("handler", "stream"))),
		BatchService:   batch.NewService(store, events, logger.With(zap.String("handler", "batch"))),
	})

	srv := &nethttp.Server{
		Addr:    c.httpBindAddress,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", c.httpBindAddress))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer shutdownCancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
