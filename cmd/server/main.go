package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/rdfload/internal/api"
	"stealthcompany.com/rdfload/internal/config"
	"stealthcompany.com/rdfload/internal/ledger"
	"stealthcompany.com/rdfload/internal/loader"
	"stealthcompany.com/rdfload/internal/metrics"
	"stealthcompany.com/rdfload/internal/orchestrator"
	"stealthcompany.com/rdfload/internal/rdf"
	"stealthcompany.com/rdfload/internal/sparql"
	"stealthcompany.com/rdfload/internal/workflow"
	"stealthcompany.com/rdfload/pkg/zerolog_config"
)

func main() {
	// Load .env file if present, otherwise rely on the environment
	if err := godotenv.Load(".env"); err != nil {
		log.Info().Msg("No .env file found, assuming environment variables are set")
	}

	elasticsearchURL := os.Getenv("ELASTICSEARCH_URL")
	logLevel := getEnvOrDefault("LOG_LEVEL", "info")

	zerolog_config.SetAppPrefix("rdfload-server")
	if err := zerolog_config.Startup(elasticsearchURL, "logs", logLevel); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	log.Info().Msg("Starting rdfload service")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Start system metrics collection
	metrics.StartSystemMetrics(15 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	neptuneClient, err := loader.NewNeptuneClient(ctx, cfg.SPARQLLoaderEndpoint, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create loader client")
	}

	stateMachine, err := workflow.NewStateMachine(ctx, cfg.RDFLoadSfnARN, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create state machine client")
	}

	sparqlClient := sparql.NewClient(cfg.SPARQLQueryEndpoint, cfg.SPARQLUpdateEndpoint, cfg.SPARQLTimeout)
	registry := rdf.NewRegistry()
	ledgerWriter := ledger.NewWriter(sparqlClient, registry, cfg.PipelineID, cfg.GraphBase, cfg.IDBase)

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	orch := orchestrator.New(neptuneClient, ledgerWriter, cfg.PipelineID, rnd)

	server := api.NewServer(orch, stateMachine, cfg)
	router := server.SetupRoutes()

	httpServer := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Cancel the root context on SIGINT/SIGTERM
	signalHandler := orchestrator.NewSignalHandler()
	signalHandler.HandleSignals(cancel)

	go func() {
		log.Info().
			Str("port", cfg.APIPort).
			Str("pipeline", cfg.PipelineID).
			Msg("Server starting")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().
				Err(err).
				Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Service shutdown complete")
}

// Helper function to get environment variable with default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
