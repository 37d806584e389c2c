// Command bite-forecast prints, browses or serves fishing bite forecasts.
//
// Usage:
//
//	bite-forecast forecast --lat 41.68 --lon -69.96 [--start 2025-10-20] [--days 7] [--format json|text]
//	bite-forecast forecast --location "Chatham, MA"
//	bite-forecast tui [--location 02633]
//	bite-forecast serve
//	bite-forecast stations provision | stations near --lat 41.68 --lon -69.96
//	bite-forecast zipcodes provision
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata" // NWS points report IANA zones; containers often lack zoneinfo

	"github.com/ngmaloney/bite-forecast/internal/config"
	"github.com/ngmaloney/bite-forecast/internal/observability"
)

const usage = `Usage: bite-forecast <command> [flags]

Commands:
  forecast            print a forecast as JSON or a table
  tui                 interactive terminal browser
  serve               run the HTTP API
  stations provision  mirror the CO-OPS station catalog into sqlite
  stations near       list catalog stations near a point
  zipcodes provision  load the US zipcode table into sqlite
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string) error {
	// The TUI owns the terminal, so its logs go to a file instead of stderr
	logOut := os.Stderr
	if args[0] == "tui" {
		f, err := os.OpenFile("bite-forecast.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, logOut)
	metrics := observability.NewMetrics()

	a, err := newApp(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer a.close()

	switch args[0] {
	case "forecast":
		return a.runForecast(ctx, args[1:], os.Stdout)
	case "tui":
		return a.runTUI(ctx, args[1:])
	case "serve":
		return a.runServe(ctx)
	case "stations":
		return a.runStations(ctx, args[1:], os.Stdout)
	case "zipcodes":
		return a.runZipcodes(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	}
	return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
}
