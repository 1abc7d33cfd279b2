package main

import (
	"database/sql"
	"fmt"
	"os/exec"

	"github.com/aaveggupta/cli-ai-code-editor/internal/apply"
	"github.com/aaveggupta/cli-ai-code-editor/internal/config"
	"github.com/aaveggupta/cli-ai-code-editor/internal/db"
	"github.com/aaveggupta/cli-ai-code-editor/internal/journal"
	"github.com/aaveggupta/cli-ai-code-editor/internal/oracle"
	"github.com/aaveggupta/cli-ai-code-editor/internal/pipeline"
	"github.com/aaveggupta/cli-ai-code-editor/internal/scanner"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// app holds the handles one command invocation works with.
type app struct {
	db       *sql.DB
	fs       afero.Fs
	registry *prometheus.Registry
	executor *pipeline.Executor
}

// newApp opens the database and wires the pipeline. The oracle client is
// only built when withOracle is set, so read-only commands work without
// credentials.
func newApp(cfg *config.Config, logger *zap.Logger, withOracle bool) (*app, error) {
	var proposer pipeline.Proposer
	if withOracle {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		client, err := newClient(cfg.Oracle)
		if err != nil {
			return nil, err
		}
		proposer = oracle.NewAdapter(client, logger,
			oracle.WithMaxContextFiles(cfg.Oracle.MaxContextFiles),
			oracle.WithTemperature(cfg.Oracle.Temperature),
			oracle.WithMaxTokens(cfg.Oracle.MaxTokens),
		)
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		if dbPath, err = db.DBPath(); err != nil {
			return nil, err
		}
	}
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("database opened", zap.String("path", dbPath))

	queries := db.NewQueries(database)
	fs := afero.NewOsFs()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	executor := pipeline.New(pipeline.Deps{
		Store:   queries,
		Journal: journal.New(queries, logger),
		Scanner: scanner.New(fs, scanner.WithMaxDepth(cfg.Scanner.MaxDepth)),
		Oracle:  proposer,
		Applier: apply.New(fs, logger),
		Logger:  logger,
		Metrics: pipeline.NewMetrics(registry),
	})

	return &app{db: database, fs: fs, registry: registry, executor: executor}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func newClient(oc config.OracleConfig) (oracle.Client, error) {
	switch oc.Provider {
	case config.ProviderOpenAI:
		return oracle.NewOpenAI(oc.APIKey, oc.Model, oc.BaseURL), nil
	case config.ProviderClaude:
		c := oracle.NewClaudeCLI(oc.Model)
		if _, err := exec.LookPath(c.Binary); err != nil {
			return nil, fmt.Errorf("%s CLI not found. Install: https://docs.anthropic.com/en/docs/claude-code", c.Binary)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", oc.Provider)
	}
}
