package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kube-rca/similarity/internal/client"
	"github.com/kube-rca/similarity/internal/config"
	"github.com/kube-rca/similarity/internal/db"
	"github.com/kube-rca/similarity/internal/handler"
	"github.com/kube-rca/similarity/internal/logger"
	"github.com/kube-rca/similarity/internal/service"
	"go.uber.org/zap"
)

// @title Incident Similarity API
// @version 1.0
// @description Finds previously recorded incidents similar to a free-text description.
// @BasePath /
func main() {
	// .env는 로컬 개발용, 없으면 무시
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	index, err := newVectorQueryClient(ctx, cfg)
	if err != nil {
		log.Fatal("failed to init vector backend", zap.String("backend", cfg.Vector.Backend), zap.Error(err))
	}
	defer func() {
		if err := index.Close(); err != nil {
			log.Warn("failed to close vector backend", zap.Error(err))
		}
	}()

	embedder := client.NewEmbeddingClient(cfg.Embedding)
	svc := service.NewSimilarityService(embedder, index, log)
	router := handler.NewRouter(
		handler.RouterConfig{CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins},
		handler.NewSimilarityHandler(svc, log),
		log,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("vector_backend", cfg.Vector.Backend),
			zap.String("embedding_model", embedder.Model()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

type vectorQueryCloser interface {
	service.VectorQueryClient
	io.Closer
}

type postgresIndex struct {
	*db.Postgres
}

func (p postgresIndex) Close() error {
	p.Pool.Close()
	return nil
}

func newVectorQueryClient(ctx context.Context, cfg config.Config) (vectorQueryCloser, error) {
	switch cfg.Vector.Backend {
	case config.BackendPinecone:
		return client.NewPineconeClient(cfg.Pinecone), nil
	case config.BackendQdrant:
		return client.NewQdrantClient(cfg.Qdrant), nil
	case config.BackendPgvector:
		pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return postgresIndex{&db.Postgres{Pool: pool, Model: cfg.Embedding.Model}}, nil
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q", cfg.Vector.Backend)
	}
}
