package main

import (
	"fmt"
	"os"
	"time"

	"github.com/yangwenmai/leetreview/internal/config"
	"github.com/yangwenmai/leetreview/internal/fetch"
	"github.com/yangwenmai/leetreview/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if _, err := logging.Init(os.Stderr, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}

	a := &app{
		cfg:     cfg,
		in:      os.Stdin,
		out:     os.Stdout,
		now:     time.Now,
		fetcher: fetch.NewHTTPFetcher(cfg.FetchTimeout),
	}
	if err := a.execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
