// main.go
package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"material-master/config"
	"material-master/controllers"
	"material-master/logger"
	"material-master/metrics"
	"material-master/pipeline"
	"material-master/routes"
	"material-master/rules"
	"material-master/storage"
	"material-master/workflow"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "mdm-server",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// run wires the server and blocks until it stops. Resources opened here are
// released before the error reaches main.
func run(cfg config.Config, log zerolog.Logger) error {
	ruleSet, err := rules.LoadRuleSet(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("load rule set %s: %w", cfg.RulesPath, err)
	}
	policy, err := workflow.ParseVersionPolicy(cfg.AuditVersioning)
	if err != nil {
		return err
	}

	// Open the workflow store.
	store, closeStore, err := storage.OpenWorkflowStore(cfg)
	if err != nil {
		return fmt.Errorf("open %s workflow store: %w", cfg.Storage, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("Failed to close workflow store")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	p := pipeline.New(cfg,
		pipeline.WithRules(ruleSet),
		pipeline.WithLogger(log),
		pipeline.WithMetrics(m),
	)
	w := workflow.NewService(store,
		workflow.WithVersionPolicy(policy),
		workflow.WithLogger(log),
		workflow.WithMetrics(m),
	)

	// Create a new Gin router.
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// Register the API routes.
	routes.RegisterRoutes(router, controllers.New(p, w), reg)

	log.Info().
		Str("port", cfg.Port).
		Str("storage", cfg.Storage).
		Str("data_dir", cfg.DataDir).
		Int("rules", len(ruleSet)).
		Msg("Starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("run server: %w", err)
	}
	return nil
}
