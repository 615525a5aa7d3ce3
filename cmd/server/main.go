package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/vinodismyname/buzzlens/config"
	"github.com/vinodismyname/buzzlens/internal/classify"
	"github.com/vinodismyname/buzzlens/internal/datasets"
	"github.com/vinodismyname/buzzlens/internal/ingest"
	"github.com/vinodismyname/buzzlens/internal/insights"
	"github.com/vinodismyname/buzzlens/internal/months"
	"github.com/vinodismyname/buzzlens/internal/registry"
	"github.com/vinodismyname/buzzlens/internal/runtime"
	"github.com/vinodismyname/buzzlens/internal/schema"
	"github.com/vinodismyname/buzzlens/internal/security"
	"github.com/vinodismyname/buzzlens/internal/telemetry"
	"github.com/vinodismyname/buzzlens/pkg/validation"
	"github.com/vinodismyname/buzzlens/pkg/version"
)

// errNoTransport is returned when no transport flag was given.
var errNoTransport = errors.New("no transport selected; use --stdio to run over stdio")

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		useStdio        bool
		showVersion     bool
		envHelp         bool
		shutdownTimeout time.Duration
	)

	flag.BoolVar(&useStdio, "stdio", false, "Run server over stdio transport")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.BoolVar(&envHelp, "env-help", false, "List BUZZLENS_* environment variables and exit")
	flag.DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")
	flag.Parse()

	switch {
	case showVersion:
		fmt.Println(version.Get())
		return
	case envHelp:
		if err := config.Usage(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(useStdio, shutdownTimeout); err != nil {
		// Use stderr so stdio clients don't misinterpret output
		fmt.Fprintf(os.Stderr, "buzzlens: %v\n", err)
		if errors.Is(err, errNoTransport) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(useStdio bool, shutdownTimeout time.Duration) error {
	cfg, err := config.Load(validation.Validator())
	if err != nil {
		return err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	logger := zlog.With().Str("service", "buzzlens-server").Logger()
	ctx := logger.WithContext(context.Background())

	// Security: validate allow-list directories on startup (fail-safe on error)
	secMgr, err := security.NewManager(cfg.Dirs(), nil)
	if err != nil {
		return fmt.Errorf("security: %w", err)
	}
	if err := secMgr.ValidateConfig(); err != nil {
		return fmt.Errorf("%w; set %s_ALLOWED_DIRS", err, config.EnvPrefix)
	}
	logger.Info().Strs("allowed_dirs", secMgr.AllowedDirectories()).Msg("security allow-list configured")

	aliases := schema.DefaultAliases()
	if cfg.AliasesFile != "" {
		extra, err := schema.LoadAliases(cfg.AliasesFile)
		if err != nil {
			return err
		}
		aliases = aliases.Merge(extra)
		logger.Info().Str("path", cfg.AliasesFile).Msg("header aliases loaded")
	}
	if err := aliases.Validate(); err != nil {
		return err
	}
	vocab := classify.DefaultVocabulary()
	if cfg.VocabularyFile != "" {
		if vocab, err = classify.LoadVocabulary(cfg.VocabularyFile); err != nil {
			return err
		}
		logger.Info().Str("path", cfg.VocabularyFile).Int("dimensions", len(vocab)).Msg("dimension vocabulary loaded")
	}

	limits := runtime.LimitsFromConfig(cfg.LimitsConfig)
	runtimeController := runtime.NewController(limits)
	runtimeMW := runtime.NewMiddleware(runtimeController, logger)

	monthNorm := months.New(nil)
	parser := ingest.NewParser(schema.NewResolver(aliases), monthNorm, ingest.WithChunkSize(limits.ChunkSize))
	dsMgr := datasets.NewManager(cfg.DatasetIdleTTL, 0, runtimeController, time.Now,
		datasets.WithPathValidator(secMgr),
		datasets.WithParser(parser),
		datasets.WithMaxRows(limits.MaxImportRows),
		datasets.WithAcquireTimeout(limits.AcquireRequestTimeout),
	)
	dsMgr.Start(ctx)
	defer func() {
		sctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := dsMgr.Close(sctx); err != nil {
			logger.Warn().Err(err).Msg("dataset manager shutdown incomplete")
		}
	}()

	toolRegistry := registry.New()
	exportFilter := registry.NewExportToolFilter(cfg.EnableExport)

	srv := server.NewMCPServer(
		"Buzzlens Social Listening Analysis Server",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(telemetry.NewHooks(logger)),
		server.WithToolHandlerMiddleware(runtimeMW.ToolMiddleware),
		server.WithToolFilter(func(ctx context.Context, tools []mcp.Tool) []mcp.Tool { return exportFilter.FilterTools(ctx, tools) }),
	)

	deps := registry.Deps{
		Datasets:   dsMgr,
		Limits:     limits,
		Thresholds: insights.FromConfig(cfg.ThresholdsConfig),
		Months:     monthNorm,
		Classifier: classify.New(vocab),
	}
	if cfg.EnableExport {
		deps.Exports = secMgr
	}
	registry.RegisterTools(srv, toolRegistry, deps)

	logger.Info().
		Ctx(ctx).
		Str("version", version.Get().String()).
		Int("max_concurrent_requests", limits.MaxConcurrentRequests).
		Int("max_open_datasets", limits.MaxOpenDatasets).
		Int("max_import_rows", limits.MaxImportRows).
		Dur("dataset_idle_ttl", cfg.DatasetIdleTTL).
		Bool("export_enabled", cfg.EnableExport).
		Int("summary_model_context", toolRegistry.ModelContextSize(config.DefaultSummaryModel)).
		Bool("stdio", useStdio).
		Msg("server bootstrap configured")

	if !useStdio {
		return errNoTransport
	}
	return server.ServeStdio(srv)
}
