// ====================================
// File: cmd/mintpop-tui/main.go
// ====================================
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/xofe/mintpop/internal/app"
	"github.com/xofe/mintpop/internal/config"
	"github.com/xofe/mintpop/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (optional)")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Development = *debug || cfg.DebugLogging
	// The terminal belongs to the UI; logs go to the file only.
	log, err := logger.NewFileOnly(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	runner, err := app.NewRunner(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize", zap.Error(err))
	}
	defer runner.Close()

	program := tea.NewProgram(runner.NewPopupModel(), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Error("ui error", zap.Error(err))
		os.Exit(1)
	}
}
