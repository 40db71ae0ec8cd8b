package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/switchboard/pkg/config"
	switchboardmcp "github.com/urmzd/switchboard/pkg/mcp"
	"github.com/urmzd/switchboard/pkg/panel"
)

func main() {
	// Logging must go to stderr: stdout is the MCP transport
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	controller, err := panel.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build panel")
	}

	if err := controller.Activate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to activate panel")
	}
	defer func() {
		if err := controller.Deactivate(); err != nil {
			log.Error().Err(err).Msg("Failed to deactivate panel")
		}
	}()

	mcpServer := switchboardmcp.NewServer(controller)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Error().Err(err).Msg("MCP server failed")
	}
}
