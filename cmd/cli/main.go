package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dvloznov/finance-synth/internal/config"
	"github.com/dvloznov/finance-synth/internal/gcsuploader"
	infraBQ "github.com/dvloznov/finance-synth/internal/infra/bigquery"
	"github.com/dvloznov/finance-synth/internal/logger"
	"github.com/dvloznov/finance-synth/internal/macro"
	"github.com/dvloznov/finance-synth/internal/pipeline"
	"github.com/dvloznov/finance-synth/internal/tables"
	"github.com/dvloznov/finance-synth/internal/transactions"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "customers":
		runCustomers(os.Args[2:])
	case "transactions":
		runTransactions(os.Args[2:])
	case "macro":
		runMacro(os.Args[2:])
	case "all":
		runAll(os.Args[2:])
	case "upload":
		runUpload(os.Args[2:])
	case "load":
		runLoad(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Synth CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  customers      Generate the customer table (d_customer.csv)")
	fmt.Println("  transactions   Generate the transaction table from an existing customer table")
	fmt.Println("  macro          Collect macroeconomic indicators (d_macro_economic.csv)")
	fmt.Println("  all            Run the full sequence, optionally publishing and loading the warehouse")
	fmt.Println("  upload         Upload generated tables to GCS")
	fmt.Println("  load           Load generated tables into BigQuery")
	fmt.Println("  help           Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// commonFlags are shared by every subcommand. Flags override the config file
// only when given explicitly.
type commonFlags struct {
	fs         *flag.FlagSet
	configPath *string
	seed       *uint64
	outputDir  *string
	logLevel   *string
}

func newCommonFlags(name string) *commonFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &commonFlags{
		fs:         fs,
		configPath: fs.String("config", "", "Path to a YAML scenario file"),
		seed:       fs.Uint64("seed", 0, "Random seed (0 picks one and logs it)"),
		outputDir:  fs.String("out", config.DefaultOutputDir, "Output directory for the tables"),
		logLevel:   fs.String("log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)"),
	}
}

func (c *commonFlags) isSet(name string) bool {
	set := false
	c.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// load parses args, loads the config and applies explicit flags through
// apply. It exits on invalid configuration.
func (c *commonFlags) load(args []string, apply func(cfg *config.Config)) (*config.Config, zerolog.Logger, context.Context) {
	c.fs.Parse(args)

	boot := logger.New()
	cfg, err := config.Load(*c.configPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("Failed to load config")
	}
	if c.isSet("seed") {
		cfg.Seed = *c.seed
	}
	if c.isSet("out") {
		cfg.OutputDir = *c.outputDir
	}
	if c.isSet("log-level") {
		cfg.LogLevel = *c.logLevel
	}
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		boot.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	return cfg, log, logger.WithContext(context.Background(), log)
}

func newState(log zerolog.Logger, seed uint64) *pipeline.PipelineState {
	state := pipeline.NewPipelineState(seed)
	log.Info().Uint64("seed", state.Seed).Msg("Random source seeded")
	return state
}

func newCollector(cfg *config.Config) *macro.Collector {
	client := macro.NewSGSClient(cfg.Macro.Timeout)
	client.BaseURL = cfg.Macro.BaseURL
	return macro.NewCollector(client)
}

func execute(ctx context.Context, log zerolog.Logger, p *pipeline.Pipeline, state *pipeline.PipelineState) {
	if err := p.Execute(ctx, state); err != nil {
		if errors.Is(err, tables.ErrMissingInput) {
			log.Fatal().Err(err).Msg("Input table missing; run the customers step first")
		}
		log.Fatal().Err(err).Msg("Run failed")
	}
}

func runCustomers(args []string) {
	c := newCommonFlags("customers")
	n := c.fs.Int("n", config.DefaultCustomers, "Number of customers to generate")
	cfg, log, ctx := c.load(args, func(cfg *config.Config) {
		if c.isSet("n") {
			cfg.Customers = *n
		}
	})

	p := pipeline.NewPipeline(
		&pipeline.GenerateCustomersStep{Count: cfg.Customers, Start: cfg.Start.Date, End: cfg.End.Date, AsOf: cfg.AsOf.Date},
		&pipeline.WriteCustomersStep{Path: cfg.CustomersPath()},
	)
	state := newState(log, cfg.Seed)
	execute(ctx, log, p, state)

	fmt.Printf("Wrote %d customers to %s\n", len(state.Customers), cfg.CustomersPath())
}

func runTransactions(args []string) {
	c := newCommonFlags("transactions")
	input := c.fs.String("customers", "", "Customer table to read (local path or gs:// URI; defaults to the output directory)")
	volume := c.fs.String("volume-policy", string(transactions.VolumeByIncome), "Volume multiplier policy (income, credit_score)")
	cfg, log, ctx := c.load(args, func(cfg *config.Config) {
		if c.isSet("volume-policy") {
			cfg.VolumePolicy = *volume
		}
	})

	policy, err := transactions.ParseVolumePolicy(cfg.VolumePolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid volume policy")
	}
	customersPath := *input
	if customersPath == "" {
		customersPath = cfg.CustomersPath()
	}

	p := pipeline.NewPipeline(
		&pipeline.ReadCustomersStep{Path: customersPath, Storage: gcsuploader.NewGCSStorageService()},
		&pipeline.GenerateTransactionsStep{Path: cfg.TransactionsPath(), Launch: cfg.Launch.Date, End: cfg.End.Date, Volume: policy},
	)
	state := newState(log, cfg.Seed)
	execute(ctx, log, p, state)

	fmt.Printf("Wrote %d transactions for %d customers (%d skipped) to %s\n",
		state.TransactionStats.Transactions, state.TransactionStats.Customers, state.TransactionStats.Skipped, cfg.TransactionsPath())
}

func runMacro(args []string) {
	c := newCommonFlags("macro")
	missing := c.fs.String("missing-columns", string(macro.MissingNull), "Failed indicator columns: null or omit")
	trim := c.fs.Bool("trim-leading", true, "Drop leading months where every indicator is empty (-trim-leading=false keeps the full spine)")
	baseURL := c.fs.String("base-url", macro.DefaultSGSBaseURL, "Series provider base URL")
	cfg, log, ctx := c.load(args, func(cfg *config.Config) {
		if c.isSet("missing-columns") {
			cfg.Macro.MissingColumns = *missing
		}
		if c.isSet("trim-leading") {
			cfg.Macro.TrimLeading = *trim
		}
		if c.isSet("base-url") {
			cfg.Macro.BaseURL = *baseURL
		}
	})

	policy, err := macro.ParseMissingPolicy(cfg.Macro.MissingColumns)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid missing-columns policy")
	}

	p := pipeline.NewPipeline(
		&pipeline.CollectMacroStep{
			Collector:   newCollector(cfg),
			Indicators:  cfg.Macro.Indicators,
			Start:       cfg.Start.Date,
			End:         cfg.End.Date,
			Missing:     policy,
			TrimLeading: cfg.Macro.TrimLeading,
		},
		&pipeline.WriteMacroStep{Path: cfg.MacroPath()},
	)
	state := newState(log, cfg.Seed)
	execute(ctx, log, p, state)

	fmt.Printf("Wrote %d months x %d indicators to %s\n", state.Macro.Len(), len(state.Macro.Columns), cfg.MacroPath())
	if len(state.FailedIndicators) > 0 {
		fmt.Printf("Failed indicators: %s\n", strings.Join(state.FailedIndicators, ", "))
	}
}

func runAll(args []string) {
	c := newCommonFlags("all")
	bucket := c.fs.String("bucket", "", "GCS bucket to publish the tables to (optional)")
	prefix := c.fs.String("prefix", "", "Object name prefix inside the bucket")
	project := c.fs.String("project", "", "GCP project of the warehouse dataset (optional)")
	dataset := c.fs.String("dataset", "", "BigQuery dataset ID")
	cfg, log, ctx := c.load(args, func(cfg *config.Config) {
		applyPublishFlags(c, cfg, bucket, prefix)
		applyWarehouseFlags(c, cfg, project, dataset)
	})

	deps := pipeline.Deps{
		Macro:   newCollector(cfg),
		Storage: gcsuploader.NewGCSStorageService(),
	}
	if cfg.Warehouse.ProjectID != "" {
		repo := openRepository(ctx, log, cfg)
		defer repo.Close()
		deps.Repo = repo
	}

	p, err := pipeline.NewDatasetPipeline(cfg, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}
	state := newState(log, cfg.Seed)
	execute(ctx, log, p, state)

	fmt.Printf("Seed %d: %d customers, %d transactions, %d macro months\n",
		state.Seed, len(state.Customers), state.TransactionStats.Transactions, state.Macro.Len())
	for _, uri := range state.Published {
		fmt.Printf("Published %s\n", uri)
	}
	if state.RunID != "" {
		fmt.Printf("Warehouse run %s\n", state.RunID)
	}
}

func runUpload(args []string) {
	c := newCommonFlags("upload")
	bucket := c.fs.String("bucket", "", "GCS bucket name")
	prefix := c.fs.String("prefix", "", "Object name prefix inside the bucket")
	cfg, log, ctx := c.load(args, func(cfg *config.Config) {
		applyPublishFlags(c, cfg, bucket, prefix)
	})

	if cfg.Publish.Bucket == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME [-prefix PREFIX] [-out DIR] [files...]")
	}

	state := newState(log, cfg.Seed)
	files := c.fs.Args()
	if len(files) == 0 {
		files = []string{cfg.CustomersPath(), cfg.TransactionsPath(), cfg.MacroPath()}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			log.Fatal().Err(err).Str("file", f).Msg("Table not found")
		}
	}
	state.Outputs = files

	p := pipeline.NewPipeline(&pipeline.PublishStep{
		Storage: gcsuploader.NewGCSStorageService(),
		Bucket:  cfg.Publish.Bucket,
		Prefix:  cfg.Publish.Prefix,
	})
	execute(ctx, log, p, state)

	for _, uri := range state.Published {
		fmt.Printf("Uploaded %s\n", uri)
	}
}

func runLoad(args []string) {
	c := newCommonFlags("load")
	project := c.fs.String("project", "", "GCP project of the warehouse dataset")
	dataset := c.fs.String("dataset", "", "BigQuery dataset ID")
	cfg, log, ctx := c.load(args, func(cfg *config.Config) {
		applyWarehouseFlags(c, cfg, project, dataset)
	})

	if cfg.Warehouse.ProjectID == "" {
		log.Fatal().Msg("Usage: cli load -project ID [-dataset ID] [-out DIR]")
	}

	repo := openRepository(ctx, log, cfg)
	defer repo.Close()

	p := pipeline.NewPipeline(
		&pipeline.ReadCustomersStep{Path: cfg.CustomersPath()},
		&pipeline.ReadMacroStep{Path: cfg.MacroPath()},
		&pipeline.LoadWarehouseStep{Repo: repo, TransactionsPath: cfg.TransactionsPath()},
	)
	// The seed only labels the run here; nothing is sampled.
	state := pipeline.NewPipelineState(cfg.Seed)
	state.Seed = cfg.Seed
	execute(ctx, log, p, state)

	fmt.Printf("Loaded run %s into %s.%s\n", state.RunID, cfg.Warehouse.ProjectID, cfg.Warehouse.DatasetID)
}

func applyPublishFlags(c *commonFlags, cfg *config.Config, bucket, prefix *string) {
	if c.isSet("bucket") {
		cfg.Publish.Bucket = *bucket
	}
	if c.isSet("prefix") {
		cfg.Publish.Prefix = *prefix
	}
}

func applyWarehouseFlags(c *commonFlags, cfg *config.Config, project, dataset *string) {
	if c.isSet("project") {
		cfg.Warehouse.ProjectID = *project
	}
	if c.isSet("dataset") {
		cfg.Warehouse.DatasetID = *dataset
	}
}

func openRepository(ctx context.Context, log zerolog.Logger, cfg *config.Config) *infraBQ.BigQueryDatasetRepository {
	repo, err := infraBQ.NewBigQueryDatasetRepository(ctx, infraBQ.Dataset{
		ProjectID: cfg.Warehouse.ProjectID,
		DatasetID: cfg.Warehouse.DatasetID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	return repo
}
