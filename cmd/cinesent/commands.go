package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/cinesent/config"
	"github.com/aluiziolira/cinesent/filter"
	"github.com/aluiziolira/cinesent/metrics"
	"github.com/aluiziolira/cinesent/omdb"
	"github.com/aluiziolira/cinesent/pipeline"
	"github.com/aluiziolira/cinesent/retry"
	"github.com/aluiziolira/cinesent/scraper"
	"github.com/aluiziolira/cinesent/sentiment"
)

// app holds what the persistent pre-run builds for the subcommands.
type app struct {
	cfg           *config.Config
	metrics       *metrics.Metrics
	metricsServer *http.Server

	configPath  string
	apiKey      string
	verbose     bool
	metricsAddr string
}

func (a *app) shutdown() {
	stopMetricsServer(a.metricsServer)
	a.metricsServer = nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cinesent",
		Short: "Movie sentiment analysis and recommendation from user reviews",
		Long: `cinesent looks a movie up on OMDb, scrapes its IMDb user reviews,
scores each review with a lexicon-based sentiment analyzer and turns the
scores and ratings into a recommendation.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initialize,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./cinesent.yaml or ~/.cinesent/cinesent.yaml)")
	root.PersistentFlags().StringVar(&a.apiKey, "api-key", "", "OMDb API key (or CINESENT_API_KEY)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")

	root.AddCommand(newAnalyzeCmd(a), newMovieCmd(a), newReviewsCmd(a), newSchemaCmd())
	return root
}

// initialize loads the config, applies global flags and sets up logging and metrics.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = a.apiKey
	}
	if cfg.APIKey == "" {
		if key, ok := config.EnvString("OMDB_API_KEY"); ok {
			cfg.APIKey = key
		}
	}
	if flags.Changed("verbose") {
		cfg.Verbose = a.verbose
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = a.metricsAddr
	}

	logger, level := newLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	a.cfg = cfg
	a.metrics = metrics.New()
	if cfg.MetricsAddr != "" {
		a.metricsServer = startMetricsServer(cfg.MetricsAddr, a.metrics)
	}
	return nil
}

func (a *app) omdbClient() (*omdb.Client, error) {
	if err := a.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return omdb.NewClient(a.cfg.OMDbURL, a.cfg.APIKey,
		omdb.WithTimeout(a.cfg.Timeout),
		omdb.WithRetryPolicy(retry.Policy{MaxAttempts: a.cfg.MaxAttempts, Backoff: a.cfg.RetryBackoff}),
		omdb.WithMetrics(a.metrics),
	)
}

func (a *app) scorer() (*sentiment.Scorer, error) {
	analyzer, err := sentiment.New(a.cfg.Analyzer)
	if err != nil {
		return nil, err
	}
	return sentiment.NewScorer(analyzer, sentiment.Thresholds{
		Positive: a.cfg.PositiveThreshold,
		Negative: a.cfg.NegativeThreshold,
	})
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		maxReviews int
		year       string
		output     string
		format     string
		filterExpr string
		analyzer   string
	)

	cmd := &cobra.Command{
		Use:   "analyze <title>",
		Short: "Fetch, score and summarise the reviews of a movie",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("max-reviews") {
				a.cfg.MaxReviews = maxReviews
			}
			if flags.Changed("output") {
				a.cfg.OutputFile = output
			}
			if flags.Changed("format") {
				a.cfg.OutputFormat = strings.ToLower(format)
			}
			if flags.Changed("filter") {
				a.cfg.Filter = filterExpr
			}
			if flags.Changed("analyzer") {
				a.cfg.Analyzer = strings.ToLower(analyzer)
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			var f *filter.Filter
			if a.cfg.Filter != "" {
				compiled, err := filter.Compile(a.cfg.Filter)
				if err != nil {
					return err
				}
				f = compiled
			}

			client, err := a.omdbClient()
			if err != nil {
				return err
			}
			s, err := scraper.NewScraper(a.cfg, a.metrics)
			if err != nil {
				return err
			}
			scorer, err := a.scorer()
			if err != nil {
				return err
			}

			p := pipeline.NewPipeline(a.cfg, client, s, scorer, a.metrics)
			title := strings.Join(args, " ")
			report, err := p.Run(cmd.Context(), title, pipeline.RunOptions{Year: year, MaxReviews: a.cfg.MaxReviews})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printReport(out, report, f, reviewWidth())

			if a.cfg.OutputFile != "" {
				if err := pipeline.Export(report, a.cfg.OutputFormat, a.cfg.OutputFile); err != nil {
					return fmt.Errorf("export: %w", err)
				}
				fmt.Fprintf(out, "\nExported to %s (%s)\n", a.cfg.OutputFile, a.cfg.OutputFormat)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxReviews, "max-reviews", config.DefaultConfig().MaxReviews,
		fmt.Sprintf("maximum number of reviews to analyse (%d-%d)", config.MinMaxReviews, config.MaxMaxReviews))
	cmd.Flags().StringVar(&year, "year", "", "release year to disambiguate the title")
	cmd.Flags().StringVarP(&output, "output", "o", "", "export file path")
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv, json, or dual")
	cmd.Flags().StringVar(&filterExpr, "filter", "", `only list reviews matching an expression, e.g. 'Label == "Negative" && Rating <= 4'`)
	cmd.Flags().StringVar(&analyzer, "analyzer", sentiment.AnalyzerVADER, "sentiment analyzer: vader or bayes")
	return cmd
}

func newMovieCmd(a *app) *cobra.Command {
	var (
		year string
		id   bool
	)
	cmd := &cobra.Command{
		Use:   "movie <title|imdb-id>",
		Short: "Show OMDb details for a movie",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.omdbClient()
			if err != nil {
				return err
			}
			q := omdb.Query{Title: strings.Join(args, " "), Year: year}
			if id {
				q = omdb.Query{ID: args[0]}
			}
			movie, err := client.Lookup(cmd.Context(), q)
			if err != nil {
				return err
			}
			printMovie(cmd.OutOrStdout(), movie)
			return nil
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "release year to disambiguate the title")
	cmd.Flags().BoolVar(&id, "id", false, "treat the argument as an IMDb id")
	return cmd
}

func newReviewsCmd(a *app) *cobra.Command {
	var maxReviews int
	cmd := &cobra.Command{
		Use:   "reviews <imdb-id>",
		Short: "Scrape and score the reviews of an IMDb title without the metadata lookup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-reviews") {
				a.cfg.MaxReviews = maxReviews
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			s, err := scraper.NewScraper(a.cfg, a.metrics)
			if err != nil {
				return err
			}
			scorer, err := a.scorer()
			if err != nil {
				return err
			}
			reviews, err := s.Scrape(cmd.Context(), args[0], a.cfg.MaxReviews)
			if err != nil {
				return err
			}
			printReviews(cmd.OutOrStdout(), scorer.ScoreAll(reviews), len(reviews), reviewWidth(), "")
			return nil
		},
	}
	cmd.Flags().IntVar(&maxReviews, "max-reviews", config.DefaultConfig().MaxReviews,
		fmt.Sprintf("maximum number of reviews (%d-%d)", config.MinMaxReviews, config.MaxMaxReviews))
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the JSON export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := pipeline.ReportSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// reviewWidth is how many characters of each review to print; COLUMNS widens it.
func reviewWidth() int {
	if n, ok, err := config.EnvInt("COLUMNS"); err == nil && ok && n > 40 {
		return n * 3
	}
	return 300
}
