package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/stemsi/questionnaire/internal/catalog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/database"
	"github.com/stemsi/questionnaire/internal/fingerprint"
	"github.com/stemsi/questionnaire/internal/logger"
	"github.com/stemsi/questionnaire/internal/render"
	"github.com/stemsi/questionnaire/internal/service"
	"github.com/stemsi/questionnaire/internal/terminal"
)

const clientName = "questionnaire-cli/1.0"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	var host string
	flag.StringVar(&host, "host", cfg.SurveyHost, "Host the survey is considered served from (selects the API)")
	flag.StringVar(&cfg.StateFile, "state", cfg.StateFile, "Path to the local submission state file")
	flag.Usage = printUsage
	flag.Parse()

	// Prompts own stdout.
	log := logger.SetupWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	// Without a browser there is no cookie jar; keep state on disk.
	if cfg.GuardStore == config.StoreCookie {
		cfg.GuardStore = config.StoreFile
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return 1
	}

	// Ctrl-C keeps its default behaviour: prompts block on stdin.
	ctx := context.Background()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load question catalog")
		return 1
	}

	store, closeStore, err := database.OpenStateStore(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open guard store")
		return 1
	}
	defer closeStore()

	guard := service.NewSubmissionGuard(cfg, store, log)
	client := service.NewSubmissionClient(cfg, log)
	survey := service.NewSurveyService(cfg, cat, guard, client, log)

	prompter := terminal.NewPrompter(cat, os.Stdin, os.Stdout)
	prompter.FitTerminal(int(os.Stdout.Fd()))
	session := terminal.NewSession(survey, prompter, fingerprint.NewTerminalProbe(clientName), host, log)

	command := "run"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	switch command {
	case "run":
		err = session.Run(ctx, render.DefaultTitle)
	case "reset":
		if err = session.Reset(ctx); err == nil {
			fmt.Println("Submission status reset for this terminal")
		}
	default:
		printUsage()
		return 2
	}

	switch {
	case errors.Is(err, terminal.ErrAborted):
		fmt.Println()
		return 1
	case err != nil:
		log.Error().Err(err).Msg("Survey failed")
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Println("Usage: survey [flags] [command]")
	fmt.Println("Commands: run (default), reset")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
