package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/cli"
	"github.com/luminher/luminher-api/internal/client"
	"github.com/luminher/luminher-api/internal/guard"
	"github.com/luminher/luminher-api/internal/session"
)

var version = "dev" // Set during build

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if cfg.Debug {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer logger.Sync()

	store := session.NewStore(session.NewFilePersister(cfg.SessionFile), logger)
	if err := store.Restore(); err != nil {
		logger.Warn("Ignoring unreadable session", zap.Error(err))
	}

	api := client.New(cfg.APIURL, cfg.APIKey, func() string {
		if u := store.Current().User; u != nil {
			return u.IDToken
		}
		return ""
	})

	app := &cli.App{
		Store:  store,
		Guard:  guard.New(store, nil),
		API:    api,
		Out:    os.Stdout,
		Logger: logger,
	}
	return cli.NewRootCmd(app, version).Execute()
}
