package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/taskflow/internal/config"
)

var version = "dev"

var CLI struct {
	Config   string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose  bool   `short:"v" help:"Enable verbose logging"`
	Database string `short:"d" help:"Override the database path"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Serve struct{} `cmd:"" help:"Run the HTTP server with periodic reconciliation"`

	Add struct {
		Description []string `arg:"" help:"Description of the new item"`
	} `cmd:"" help:"Add a to-do item"`

	List struct {
		Filter string `short:"f" default:"all" enum:"all,active,completed" help:"Projection to print"`
	} `cmd:"" help:"Print the to-do list"`

	Toggle struct {
		Number int `arg:"" help:"Item number as printed by list"`
	} `cmd:"" help:"Toggle an item between active and completed"`

	Edit struct {
		Number      int      `arg:"" help:"Item number as printed by list"`
		Description []string `arg:"" help:"New description"`
	} `cmd:"" help:"Replace an item's description"`

	Rm struct {
		Numbers []int `arg:"" help:"Item numbers as printed by list"`
	} `cmd:"" help:"Remove items"`

	Move struct {
		From int `arg:"" help:"Item number as printed by list"`
		To   int `arg:"" help:"Destination position (1-based)"`
	} `cmd:"" help:"Move an item to a new position"`

	Clear struct{} `cmd:"" help:"Remove all completed items"`

	Version struct{} `cmd:"" help:"Print the version"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelInfo)
	if CLI.Verbose {
		logLevel.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	switch ctx.Command() {
	case "init":
		err = runInit(CLI.Config, CLI.Init.Force)
	case "serve":
		err = runServe(CLI.Config, logLevel)
	case "add <description>":
		err = runAdd(loadConfig(), CLI.Add.Description)
	case "list":
		err = runList(loadConfig(), CLI.List.Filter)
	case "toggle <number>":
		err = runToggle(loadConfig(), CLI.Toggle.Number)
	case "edit <number> <description>":
		err = runEdit(loadConfig(), CLI.Edit.Number, CLI.Edit.Description)
	case "rm <numbers>":
		err = runRemove(loadConfig(), CLI.Rm.Numbers)
	case "move <from> <to>":
		err = runMove(loadConfig(), CLI.Move.From, CLI.Move.To)
	case "clear":
		err = runClear(loadConfig())
	case "version":
		fmt.Println("taskflow", version)
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the configured file when present, otherwise falls back to
// defaults. One-shot commands should work without an init step.
func loadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		cfg = config.Default()
	}
	if CLI.Database != "" {
		cfg.Database.Path = CLI.Database
	}
	return cfg
}
