package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/switchboard/pkg/config"
	"github.com/urmzd/switchboard/pkg/panel"
)

const usage = "commands: list | toggle <id> | refresh | status | help | quit"

func main() {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	updates := controller.Subscribe()
	defer controller.Unsubscribe(updates)

	if err := controller.Activate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to activate panel")
	}
	defer func() {
		if err := controller.Deactivate(); err != nil {
			log.Error().Err(err).Msg("Failed to deactivate panel")
		}
	}()

	fmt.Println(usage)

	commands := make(chan string)
	go readCommands(os.Stdin, commands)

	for {
		select {
		case <-ctx.Done():
			return

		case s := <-updates:
			// Intermediate Toggling snapshots would show the old status
			if s.Phase != panel.PhaseToggling {
				render(os.Stdout, s)
			}

		case line, ok := <-commands:
			if !ok {
				return
			}
			if quit := run(controller, line); quit {
				return
			}
		}
	}
}

func readCommands(r io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		out <- strings.TrimSpace(scanner.Text())
	}
}

// run executes one command line and reports whether the user asked to quit.
func run(c *panel.Controller, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "list", "ls":
		render(os.Stdout, c.State())
	case "status":
		s := c.State()
		fmt.Printf("%s (%s)\n", s.StatusMessage, s.Phase)
	case "refresh":
		c.Refresh()
	case "toggle", "t":
		if len(fields) != 2 {
			fmt.Println("usage: toggle <id>")
			return false
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Printf("invalid id %q\n", fields[1])
			return false
		}
		d, ok := c.Find(id)
		if !ok {
			fmt.Printf("no device with id %d\n", id)
			return false
		}
		c.RequestToggle(d)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Println(usage)
	}
	return false
}

func render(w io.Writer, s panel.State) {
	if s.Phase == panel.PhaseLoading {
		fmt.Fprintln(w, "Loading...")
		return
	}

	if s.FetchErr != nil {
		fmt.Fprintf(w, "! %v\n", s.FetchErr)
	}
	if len(s.Devices) == 0 {
		fmt.Fprintln(w, "(no devices)")
	}
	for _, d := range s.Devices {
		fmt.Fprintf(w, "%4d  %-20s %-10s %8.2f  %-3s  %s\n", d.ID, d.Name, d.Type, d.Value, d.StatusLabel(), d.Description)
	}
	fmt.Fprintf(w, "-- %s\n", s.StatusMessage)
}
