// Command fetchdata downloads the upstream country datasets into the
// dashboard's data directory.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/WorldInfo/internal/dataset"
	"github.com/JonMunkholm/WorldInfo/internal/fetch"
	"github.com/JonMunkholm/WorldInfo/internal/logging"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type options struct {
	outDir    string
	strict    bool
	timeout   time.Duration
	perSecond float64
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "fetchdata",
		Short: "Download country, GDP, indicator and language data",
		Long: `Fetches RestCountries metadata, World Bank GDP per capita and indicator
series, and Wikidata official languages, then writes countries.json,
gdp.json, territories.json, wikidata.json and indicators.json.

If any source fails nothing is written and existing files are kept.
The failure is reported, and only fails the command with --strict.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(opts.logLevel, opts.logFormat)

			w, err := dataset.NewWriter(opts.outDir)
			if err != nil {
				return err
			}
			f := fetch.New(fetch.NewClient(opts.timeout, opts.perSecond), fetch.DefaultSources())
			return fetch.Run(cmd.Context(), f, w, opts.strict)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.outDir, "out", "o", envOr("DATA_DIR", "public"), "directory to write documents to")
	flags.BoolVar(&opts.strict, "strict", false, "exit non-zero when any source fails")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout per upstream request")
	flags.Float64Var(&opts.perSecond, "rps", 4, "maximum upstream requests per second (0 = unlimited)")
	flags.StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", envOr("LOG_FORMAT", "text"), "log format: text or json")

	return cmd
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
