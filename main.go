package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/agelife/driver"
	"github.com/sheikhrachel/agelife/model"
)

func main() {
	flags := parseFlags()

	config, err := loadConfig(flags)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Initialize simulation
	e, err := initializeEngine(config)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	renderer := model.NewTerminalRenderer(os.Stdout, config.Color)
	displayGameInfo(config, e)

	d := driver.New(e, driver.Options{
		MaxGenerations:      config.MaxGenerations,
		AutoRestart:         config.AutoRestart,
		StagnationThreshold: config.StagnationThreshold,
		OnFrame:             frameRenderer(e, renderer),
	})

	// Handle Ctrl+C gracefully
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(sigCtx)
	eg.Go(func() error {
		return d.Run(ctx)
	})
	if err = eg.Wait(); err != nil {
		log.Printf("driver stopped: %v", err)
	}

	if sigCtx.Err() != nil {
		fmt.Println("\n🛑 Shutting down gracefully...")
	} else {
		fmt.Printf("\n🏁 Reached maximum generations limit (%d)\n", config.MaxGenerations)
	}
	displayFinalStats(d.Stats(), d.Steps())

	if config.ChartPath != "" {
		if err = writeChart(d.Stats(), config.ChartPath); err != nil {
			log.Printf("chart: %v", err)
			os.Exit(1)
		}
		fmt.Printf("Population chart written to %s\n", config.ChartPath)
	}
}
