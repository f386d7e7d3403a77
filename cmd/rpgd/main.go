package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/violetbot/rpgengine/internal/config"
	"github.com/violetbot/rpgengine/internal/db"
	"github.com/violetbot/rpgengine/internal/engine"
	"github.com/violetbot/rpgengine/internal/gateway"
)

const ConfigPath = "config/rpgd.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	slog.Info("rpgd starting")

	cfgPath := ConfigPath
	if p := os.Getenv("RPGD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.Info("config loaded", "bind", cfg.BindAddress, "port", cfg.Port)

	dsn, err := cfg.Database.DSN()
	if err != nil {
		if errors.Is(err, config.ErrNotConfigured) {
			slog.Error("no database configured; set POSTGRES_URL or the database section in " + cfgPath)
		}
		return err
	}

	database, err := db.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, dsn); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	players := db.NewPlayerRepository(database.Pool())
	fables := db.NewFableRepository(database.Pool())
	eng := engine.New(players, fables, cfg.Game)
	gw := gateway.NewServer(eng, cfg.AdminSecretHash)

	addr := net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting gateway")
		if err := gw.Run(gctx, addr); err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
