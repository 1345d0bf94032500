// Package main provides the entry point for the Image Stacker editor.
package main

import (
	"fmt"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"image-stacker/internal/app"
	"image-stacker/internal/config"
	"image-stacker/internal/version"
	"image-stacker/ui/mainwindow"
)

const (
	appID    = "io.github.image-stacker"
	appTitle = "Image Stacker"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := cfg.Logging.Prepare()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting", zap.String("app", appTitle), zap.String("version", version.Version),
		zap.String("config", config.Path()))

	state, err := app.NewState(cfg, log)
	if err != nil {
		log.Error("Failed to create editor state", zap.Error(err))
		return
	}

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(&app.StackerTheme{})

	win := mainwindow.New(a, state, log)

	// Files named on the command line are stacked in argument order.
	if len(os.Args) > 1 {
		win.AddFiles(os.Args[1:]...)
	}

	win.ShowAndRun()
	log.Info("Exiting")
}
