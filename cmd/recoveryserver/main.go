package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/seclave/shardwise/cmd/flags"
	"github.com/seclave/shardwise/generation"
	"github.com/seclave/shardwise/httpserver"
	"github.com/seclave/shardwise/recovery"
	"github.com/seclave/shardwise/shard"
	"github.com/urfave/cli/v2"
)

var serviceLogFlag = flags.LogServiceFlagFn("recovery-server")

var listenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

func main() {
	app := &cli.App{
		Name:  "recovery-server",
		Usage: "Serve the shard generation and recovery API",
		Flags: append([]cli.Flag{listenAddrFlag, serviceLogFlag}, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String(listenAddrFlag.Name)
			logger := flags.SetupLogger(cCtx)

			handler := httpserver.NewHandler(
				generation.NewEngine(shard.ShamirSplitter{}, logger),
				recovery.NewEngine(shard.ShamirSplitter{}, logger),
				logger,
			)

			server, err := httpserver.New(flags.ConfigureServer(cCtx, logger, listenAddr), handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
