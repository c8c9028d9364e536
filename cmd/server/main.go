package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agenthands/hive/internal/config"
	"github.com/agenthands/hive/internal/engine"
	"github.com/agenthands/hive/internal/gateway"
	"github.com/agenthands/hive/internal/graph"
	"github.com/agenthands/hive/internal/server"
	"github.com/agenthands/hive/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		log.Printf("No config file at %s, using env and defaults", cfgPath)
		cfg, err = config.Default()
		if err != nil {
			log.Fatalf("Failed to build configuration: %v", err)
		}
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", cfg.Database.Path, err)
	}
	defer st.Close()

	gw, err := gateway.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize content gateway: %v", err)
	}

	var mirror engine.AllianceMirror
	if cfg.Graph.URI != "" {
		driver, err := graph.NewBoltDriver(cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password)
		if err != nil {
			log.Fatalf("Failed to connect to graph database: %v", err)
		}
		defer driver.Close(context.Background())
		if err := driver.BuildIndices(context.Background()); err != nil {
			log.Fatalf("Failed to build graph indices: %v", err)
		}
		mirror = graph.NewMirror(driver)
		log.Printf("[graph] alliance mirror enabled at %s", cfg.Graph.URI)
	}

	eng := engine.New(engine.Options{
		Repo:               st,
		Gateway:            gw,
		Mirror:             mirror,
		Workers:            cfg.Engine.Workers,
		GatewayTimeout:     time.Duration(cfg.Engine.GatewayTimeoutSeconds) * time.Second,
		ProcessingInterval: time.Duration(cfg.Engine.ProcessingIntervalMinutes) * time.Minute,
		RestoreInterval:    time.Duration(cfg.Engine.RestoreIntervalMinutes) * time.Minute,
		DecayInterval:      time.Duration(cfg.Engine.DecayIntervalHours) * time.Hour,
		AllianceInterval:   time.Duration(cfg.Engine.AllianceIntervalHours) * time.Hour,
	})
	eng.Start()

	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: server.NewServer(eng).SetupRouter(),
	}
	go func() {
		log.Printf("[server] listening on %s", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("[server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
	eng.Stop()
}
