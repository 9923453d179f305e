package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/drivese/drivese/internal/config"
	"github.com/drivese/drivese/internal/cost"
	"github.com/drivese/drivese/internal/dispatcher"
	"github.com/drivese/drivese/internal/influx"
	"github.com/drivese/drivese/internal/logging"
	"github.com/drivese/drivese/internal/metrics"
	intOtel "github.com/drivese/drivese/internal/otel"
	"github.com/drivese/drivese/internal/storage"
	"github.com/drivese/drivese/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	Version   string = "0.1.0"
	BuildDate string = "unknown"
	AppName   string = "drivese"
)

// app holds the services wired for one process.
type app struct {
	SessionStartTime time.Time

	SlogManager *logging.SlogManager
	Logger      *slog.Logger
	ZLogger     zerolog.Logger
	OTel        *intOtel.Provider

	Backend    storage.Backend
	Influx     *influx.Manager
	Registry   *prometheus.Registry
	Metrics    *metrics.Collector
	Worker     *worker.Manager
	Dispatcher *dispatcher.Dispatcher

	storageType string
	logFile     *os.File
	closers     []io.Closer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		usage(fs, stderr)
		return 2
	}

	switch rest[0] {
	case "version":
		fmt.Fprintf(stdout, "%s %s (built %s)\n", AppName, Version, BuildDate)
		return 0
	case "presets":
		printPresets(stdout)
		return 0
	}

	configDir, _ := fs.GetString("config")
	if err := config.Load(configDir); err != nil {
		fmt.Fprintf(stderr, "Failed to load config, using defaults: %v\n", err)
	}
	if err := viper.BindPFlag("logLevel", fs.Lookup("log-level")); err != nil {
		fmt.Fprintf(stderr, "binding log-level flag: %v\n", err)
	}

	a, err := newApp(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "startup failed: %v\n", err)
		return 1
	}
	defer a.close()

	if err := a.runCommand(fs, rest, stdout); err != nil {
		a.Logger.Error("command failed", "command", rest[0], "error", err)
		fmt.Fprintf(stderr, "%s: %v\n", rest[0], err)
		return 1
	}
	return 0
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringP("config", "c", ".", "directory containing "+config.FileName)
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.StringP("input", "i", "", "JSON request file for size and hub commands")
	fs.String("assembly", "", "filter runs by assembly (drive4pt, drive3pt, hub)")
	fs.String("preset", "", "filter runs by preset")
	fs.IntP("limit", "n", 20, "maximum number of runs to list")
	return fs
}

func usage(fs *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `usage: %s [flags] <command> [args]

commands:
  size4pt [preset]     size a drivetrain on two main bearings
  size3pt [preset]     size a drivetrain on one main bearing
  hub [preset]         size the hub, pitch system and spinner
  batch <preset>...    size every assembly for each preset through the queue
  runs                 list stored runs
  show <id>            print a stored run
  presets              list reference turbines
  serve                start the HTTP API
  version              print the version

flags:
`, AppName)
	fs.PrintDefaults()
}

// newApp builds logging, telemetry, storage and the sizing worker from the loaded config.
func newApp(stderr io.Writer) (*app, error) {
	a := &app{
		SessionStartTime: time.Now(),
		SlogManager:      logging.NewSlogManager(),
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating logs dir: %w", err)
	}
	logFilePath := logging.LogFilePath(logsDir, AppName, a.SessionStartTime)
	logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	a.logFile = logFile

	level := viper.GetString("logLevel")
	zlevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zlevel = zerolog.InfoLevel
	}
	a.ZLogger = zerolog.New(logFile).Level(zlevel).With().Timestamp().Str("app", AppName).Logger()

	a.storageType = config.GetStorageConfig().Type

	// Initialize OTel provider if enabled (after log file is created)
	a.OTel, err = intOtel.New(intOtel.FromSettings(config.GetOTelConfig(), Version, a.storageType, logFile))
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize OTel provider: %v\n", err)
		a.OTel, _ = intOtel.New(intOtel.Config{})
	}
	var otelLogProvider *sdklog.LoggerProvider
	if a.OTel.Enabled() {
		otelLogProvider = a.OTel.LoggerProvider()
	}

	opts := []logging.Option{logging.WithContext(a.logContext)}
	if config.GetBool("graylog.enabled") {
		gelf, err := logging.NewGraylogWriter(config.GetString("graylog.address"), AppName)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to connect to graylog: %v\n", err)
		} else {
			opts = append(opts, logging.WithGraylog(gelf))
			a.closers = append(a.closers, gelf)
		}
	}
	a.SlogManager.Setup(logFile, level, otelLogProvider, opts...)
	a.Logger = a.SlogManager.Logger()
	a.Logger.Info("Begin logging in logs directory", "path", logFilePath, "version", Version)

	a.Backend, err = createStorageBackend(config.GetStorageConfig(), a.SlogManager, a.ZLogger)
	if err != nil {
		return nil, fmt.Errorf("creating storage backend: %w", err)
	}
	if err := a.Backend.Init(); err != nil {
		return nil, fmt.Errorf("initializing storage backend: %w", err)
	}

	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		m := influx.NewManager(a.ZLogger, influxCfg, filepath.Join(logsDir, "influx_backup.log.gz"))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := m.Connect(ctx)
		cancel()
		if err != nil {
			a.Logger.Warn("InfluxDB unavailable, not recording time series", "error", err)
			_ = m.Close()
		} else {
			a.Influx = m
		}
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if a.Metrics, err = metrics.NewCollector(a.Registry); err != nil {
		return nil, err
	}

	costCfg, err := config.GetCostConfig()
	if err != nil {
		return nil, fmt.Errorf("reading cost rates: %w", err)
	}
	a.Worker = worker.NewManager(worker.Dependencies{
		LogManager:  a.SlogManager,
		Cost:        cost.New(costCfg),
		Influx:      a.Influx,
		Metrics:     a.Metrics,
		BatchBuffer: config.GetInt("dispatcher.buffer"),
	}, a.Backend)

	a.Dispatcher, err = dispatcher.New(logging.NewDispatcherLogger(a.ZLogger))
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}
	a.Worker.RegisterHandlers(a.Dispatcher)
	a.Logger.Debug("Worker handlers registered with dispatcher", "commands", a.Dispatcher.Commands())

	return a, nil
}

// logContext adds process-wide attributes to every slog record.
func (a *app) logContext() []slog.Attr {
	attrs := []slog.Attr{slog.String("storage", a.storageType)}
	if p, ok := a.Backend.(interface{ Pending() int }); ok {
		attrs = append(attrs, slog.Int("pendingWrites", p.Pending()))
	}
	return attrs
}

// close drains queued work, then shuts down storage and telemetry.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.Dispatcher != nil {
		if err := a.Dispatcher.Close(ctx); err != nil {
			a.Logger.Error("Failed to drain queues", "error", err)
		}
	}
	if a.Backend != nil {
		if err := a.Backend.Close(); err != nil {
			a.Logger.Error("Failed to close storage backend", "error", err)
		}
	}
	if a.Influx != nil {
		if err := a.Influx.Close(); err != nil {
			a.Logger.Error("Failed to close InfluxDB manager", "error", err)
		}
	}

	a.Logger.Info("Shutting down", "uptime", time.Since(a.SessionStartTime))
	if err := a.SlogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "log flush failed: %v\n", err)
	}
	if a.OTel != nil {
		_ = a.OTel.Shutdown(ctx)
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
