package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/noah-isme/academic-dashboard/internal/client"
	"github.com/noah-isme/academic-dashboard/internal/dashboard"
	"github.com/noah-isme/academic-dashboard/pkg/config"
	"github.com/noah-isme/academic-dashboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.NewClient(cfg.Dashboard.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.Dashboard.APIHost, nil, logr.Named("api"))
	app := dashboard.NewApp(api, os.Stdout, logr)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		// An interrupted no-echo prompt never restores the terminal itself.
		if state, err := term.GetState(fd); err == nil {
			defer term.Restore(fd, state) //nolint:errcheck
		}
		app.SetPasswordReader(func() (string, error) {
			pw, err := term.ReadPassword(fd)
			return string(pw), err
		})
	}

	logr.Sugar().Debugw("dashboard starting", "api_host", cfg.Dashboard.APIHost)
	if err := app.Run(ctx, os.Stdin); err != nil {
		logr.Sugar().Fatalw("dashboard stopped", "error", err)
	}
}
