package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bookcart/cmd"
	"bookcart/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := cmd.NewBuilder(cfg).Build()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
	case <-sigCh:
		if err := app.Shutdown(); err != nil {
			os.Exit(1)
		}
	}
}
