package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	auction "auction-marketplace/internal/auctionService"
	comment "auction-marketplace/internal/commentService"
	"auction-marketplace/internal/config"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	watchlist "auction-marketplace/internal/watchlistService"
	"auction-marketplace/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := utils.ConfigureLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		utils.Fatal("server stopped with error", map[string]any{"error": err.Error()})
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	auctionSvc := auction.NewAuctionService(repo)
	if _, err := auctionSvc.SeedCategories(ctx, cfg.SeedCategories); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	router := server.SetupRouter(server.Services{
		Auction:   auctionSvc,
		Watchlist: watchlist.NewWatchlistService(repo),
		Comments:  comment.NewCommentService(repo),
	}, server.NewAuthenticator(cfg.JWTSecret, repo))

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		utils.Info("starting auction server", map[string]any{"addr": srv.Addr, "db_driver": cfg.DBDriver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	utils.Info("shutdown signal received", map[string]any{"timeout": cfg.ShutdownTimeout.String()})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	utils.Info("server stopped", nil)
	return nil
}

// openRepository picks the storage backend named by DB_DRIVER
func openRepository(cfg *config.Config) (repository.AuctionDB, func(), error) {
	if cfg.DBDriver == config.DriverMemory {
		return repository.NewMemoryRepo(), func() {}, nil
	}

	db, err := repository.OpenSQL(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.Migrate(db, cfg.DBDriver); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			utils.Warn("failed to close database", map[string]any{"error": err.Error()})
		}
	}
	return repository.NewSQLRepo(db), closeDB, nil
}
