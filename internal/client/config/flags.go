package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/flagx"
)

var knownFlags = []string{"-a", "-db", "-i", "-t", "-rps", "-log"}

// parseFlags overlays cfg with command-line flags. Arguments it does not
// know are filtered out first so other parsers can share os.Args.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("bakerykit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BackendURL, "a", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "local session database path")
	pollInterval := fs.Int("i", int(cfg.CartPollInterval.Seconds()), "cart count poll interval (in seconds)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.Float64Var(&cfg.RequestsPerSecond, "rps", cfg.RequestsPerSecond, "outbound requests per second, 0 = unlimited")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// Second-granular flags only apply when given, so sub-second values from
	// a file survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.CartPollInterval = time.Duration(*pollInterval) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
