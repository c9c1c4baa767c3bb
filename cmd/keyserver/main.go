package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/djilog-keychain/api/keychainapi"
	"github.com/ruteri/djilog-keychain/cmd/flags"
	"github.com/ruteri/djilog-keychain/common"
	"github.com/ruteri/djilog-keychain/httpserver"
	"github.com/ruteri/djilog-keychain/metrics"
	"github.com/urfave/cli/v2"
)

var KeyserverLogServiceFlag = flags.LogServiceFlagFn("keyserver")

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for the keychain API",
}

var ApiKeyFlag = &cli.StringSliceFlag{
	Name:     "api-key",
	Required: true,
	EnvVars:  []string{"KEYSERVER_API_KEYS"},
	Usage:    "api key accepted in the Api-Key header, repeat for each key",
}

func main() {
	app := &cli.App{
		Name:  "keyserver",
		Usage: "Issue flight-log keychains",
		Flags: append(append(IssuerFlags, ListenAddrFlag, ApiKeyFlag, KeyserverLogServiceFlag), flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			issuer, err := SetupIssuer(cCtx, logger)
			if err != nil {
				logger.Error("Failed to initialize issuer", "err", err)
				return err
			}
			logger.Info("Issuer initialized successfully")

			cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(ListenAddrFlag.Name))

			metricsSrv, err := metrics.New(common.PackageName, cfg.MetricsAddr)
			if err != nil {
				logger.Error("Failed to create metrics server", "err", err)
				return err
			}

			handler := keychainapi.NewHandler(issuer, cCtx.StringSlice(ApiKeyFlag.Name), metricsSrv.KeyService(), logger)
			srv := httpserver.New(cfg, metricsSrv, handler)
			srv.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			srv.Shutdown()
			logger.Info("Server shutdown complete")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
