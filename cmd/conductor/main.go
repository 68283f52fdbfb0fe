package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/example/meeting-conductor/internal/application"
	"github.com/example/meeting-conductor/internal/config"
	httptransport "github.com/example/meeting-conductor/internal/http"
	"github.com/example/meeting-conductor/internal/logging"
	"github.com/example/meeting-conductor/internal/osc"
	"github.com/example/meeting-conductor/internal/persistence"
	"github.com/example/meeting-conductor/internal/persistence/sqlite"
	"github.com/example/meeting-conductor/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, flagSet, err := config.Parse("conductor", args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stderr, "Usage: conductor [flags]\n\nRuns the ZoomOSC meeting conductor.\n\n")
			flagSet.SetOutput(stderr)
			flagSet.PrintDefaults()
			return nil
		}
		return err
	}
	if cfg.HashCodeword {
		return hashCodeword(stdin, stdout)
	}

	logger, err := logging.New(stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	pc, err := net.ListenPacket("udp", fmt.Sprintf(":%d", cfg.ListenPort))
	if err != nil {
		return fmt.Errorf("listen for ZoomOSC events: %w", err)
	}
	return serve(ctx, cfg, pc, logger)
}

// hashCodeword reads one codeword line and prints the argon2id hash to paste
// into the schedule file.
func hashCodeword(stdin io.Reader, stdout io.Writer) error {
	scanner := bufio.NewScanner(stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read codeword: %w", err)
		}
		return errors.New("no codeword on stdin")
	}
	codeword := strings.TrimSpace(scanner.Text())
	if codeword == "" {
		return errors.New("no codeword on stdin")
	}
	hashed, err := application.HashCodeword(codeword, application.DefaultArgon2idParams)
	if err != nil {
		return fmt.Errorf("hash codeword: %w", err)
	}
	_, err = fmt.Fprintln(stdout, hashed)
	return err
}

// serve wires every component around pc and blocks until ctx ends or a
// component fails.
func serve(ctx context.Context, cfg config.Config, pc net.PacketConn, logger *slog.Logger) error {
	location, err := cfg.Location()
	if err != nil {
		return err
	}
	mode, err := application.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, application.ErrStopped) {
				errs <- fmt.Errorf("%s: %w", name, err)
			}
			cancel()
		}()
	}

	var journal application.Journal
	if cfg.JournalDSN != "" {
		pool, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.JournalDSN))
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer func() {
			if cerr := pool.Close(); cerr != nil {
				logger.Error("failed to close journal", "error", cerr)
			}
		}()
		writer := persistence.NewWriter(sqlite.NewJournalRepository(pool), logger, 0)
		journal = writer
		start("journal", func(ctx context.Context) error {
			writer.Run(ctx)
			return nil
		})
	}

	var source application.ScheduleSource
	if cfg.SchedulePath != "" {
		source = scheduler.NewSource(cfg.SchedulePath)
	} else {
		logger.Warn("no schedule file configured, meetings will not be started automatically")
	}

	client := osc.NewClient(cfg.ZoomOSCHost, cfg.ZoomOSCPort, logger)
	conductor := application.NewConductorWithLogger(application.Options{
		Mode:              mode,
		PrimaryName:       cfg.PrimaryName,
		SelfName:          cfg.SelfName,
		TickInterval:      cfg.TickInterval,
		DiscoveryInterval: cfg.DiscoveryInterval,
		WarnWindow:        cfg.WarnWindow,
		StaleCycles:       cfg.StaleCycles,
		Location:          location,
	}, client, source, journal, uuid.NewString, time.Now, logger)

	listener := osc.NewListener(pc.LocalAddr().String(), conductor, logger)
	start("conductor", conductor.Run)
	start("listener", func(ctx context.Context) error { return listener.Serve(ctx, pc) })

	if cfg.StatusAddr != "" {
		router := httptransport.NewRouter(httptransport.RouterConfig{
			Status: httptransport.NewStatusHandler(conductor, 0, logger),
			Middleware: []func(http.Handler) http.Handler{
				httptransport.RequestLogger(logger),
				httptransport.Recover(logger),
			},
		})
		start("status", func(ctx context.Context) error {
			return httptransport.Serve(ctx, cfg.StatusAddr, router, logger)
		})
	}

	logger.Info("conductor running",
		"listen", pc.LocalAddr().String(),
		"zoomosc", fmt.Sprintf("%s:%d", cfg.ZoomOSCHost, cfg.ZoomOSCPort),
		"mode", string(mode),
		"schedule", cfg.SchedulePath,
	)

	wg.Wait()
	close(errs)

	var failures []error
	for err := range errs {
		failures = append(failures, err)
	}
	return errors.Join(failures...)
}
