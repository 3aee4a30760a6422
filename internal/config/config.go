// Package config holds the scenario configuration: defaults matching the
// reference dataset, an optional YAML file overlay and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-synth/internal/macro"
	"github.com/dvloznov/finance-synth/internal/tables"
	"github.com/dvloznov/finance-synth/internal/transactions"
	"gopkg.in/yaml.v3"
)

// Default values of the reference scenario.
const (
	DefaultCustomers   = 15000
	DefaultOutputDir   = "data"
	DefaultLogLevel    = "info"
	DefaultHTTPTimeout = 30 * time.Second
)

var (
	// DefaultStart is the first day customers can open accounts.
	DefaultStart = civil.Date{Year: 2000, Month: time.January, Day: 1}
	// DefaultEnd is the scenario's "current" date.
	DefaultEnd = civil.Date{Year: 2025, Month: time.October, Day: 15}
	// DefaultLaunch is the instant-payment (PIX) launch date.
	DefaultLaunch = civil.Date{Year: 2020, Month: time.November, Day: 16}
)

// Date is a civil.Date that reads from a YAML "YYYY-MM-DD" scalar.
type Date struct {
	civil.Date
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(n *yaml.Node) error {
	parsed, err := civil.ParseDate(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	d.Date = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Config is the full scenario.
type Config struct {
	// Seed drives every random draw. Zero picks a random seed per run.
	Seed      uint64 `yaml:"seed"`
	Customers int    `yaml:"customers"`
	Start     Date   `yaml:"start"`
	End       Date   `yaml:"end"`
	// AsOf stands in for today's date when deriving customer ages.
	// Defaults to End.
	AsOf   Date `yaml:"as_of"`
	Launch Date `yaml:"launch"`

	VolumePolicy string `yaml:"volume_policy"`
	OutputDir    string `yaml:"output_dir"`
	LogLevel     string `yaml:"log_level"`

	Macro     MacroConfig     `yaml:"macro"`
	Publish   PublishConfig   `yaml:"publish"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
}

// MacroConfig configures the indicator collection.
type MacroConfig struct {
	MissingColumns string            `yaml:"missing_columns"`
	TrimLeading    bool              `yaml:"trim_leading"`
	BaseURL        string            `yaml:"base_url"`
	Timeout        time.Duration     `yaml:"timeout"`
	Indicators     []macro.Indicator `yaml:"indicators"`
}

// PublishConfig names the bucket the tables are uploaded to. An empty bucket
// disables publishing.
type PublishConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// WarehouseConfig names the BigQuery dataset the tables are loaded into. An
// empty project disables loading.
type WarehouseConfig struct {
	ProjectID string `yaml:"project_id"`
	DatasetID string `yaml:"dataset_id"`
}

// Default returns the reference scenario.
func Default() *Config {
	return &Config{
		Customers:    DefaultCustomers,
		Start:        Date{DefaultStart},
		End:          Date{DefaultEnd},
		AsOf:         Date{DefaultEnd},
		Launch:       Date{DefaultLaunch},
		VolumePolicy: string(transactions.VolumeByIncome),
		OutputDir:    DefaultOutputDir,
		LogLevel:     DefaultLogLevel,
		Macro: MacroConfig{
			MissingColumns: string(macro.MissingNull),
			TrimLeading:    true,
			BaseURL:        macro.DefaultSGSBaseURL,
			Timeout:        DefaultHTTPTimeout,
			Indicators:     macro.DefaultIndicators(),
		},
		Warehouse: WarehouseConfig{DatasetID: "finance_synth"},
	}
}

// Load returns the defaults overlaid with the YAML file at path. Keys absent
// from the file keep their default; an empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Load: reading %q: %w", path, err)
	}
	cfg.AsOf = Date{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("Load: parsing %q: %w", path, err)
	}
	if cfg.AsOf.Date == (civil.Date{}) {
		cfg.AsOf = cfg.End
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Customers < 0 {
		errs = append(errs, fmt.Errorf("customers must not be negative, got %d", c.Customers))
	}
	if !c.Start.IsValid() || !c.End.IsValid() {
		errs = append(errs, errors.New("start and end must be valid dates"))
	} else if c.End.Before(c.Start.Date) {
		errs = append(errs, fmt.Errorf("end %s is before start %s", c.End, c.Start))
	}
	if !c.AsOf.IsValid() {
		errs = append(errs, errors.New("as_of must be a valid date"))
	}
	if !c.Launch.IsValid() {
		errs = append(errs, errors.New("launch must be a valid date"))
	}
	if _, err := transactions.ParseVolumePolicy(c.VolumePolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := macro.ParseMissingPolicy(c.Macro.MissingColumns); err != nil {
		errs = append(errs, err)
	}
	if c.Macro.Timeout < 0 {
		errs = append(errs, errors.New("macro timeout must not be negative"))
	}
	for _, ind := range c.Macro.Indicators {
		if err := ind.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if strings.HasPrefix(c.OutputDir, "gs://") {
		errs = append(errs, errors.New("output_dir must be a local directory; use publish.bucket to upload"))
	}
	if c.Warehouse.ProjectID != "" && c.Warehouse.DatasetID == "" {
		errs = append(errs, errors.New("warehouse dataset_id is required when project_id is set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// CustomersPath is the customer table inside OutputDir.
func (c *Config) CustomersPath() string {
	return joinOutput(c.OutputDir, tables.CustomersFile)
}

// TransactionsPath is the transaction table inside OutputDir.
func (c *Config) TransactionsPath() string {
	return joinOutput(c.OutputDir, tables.TransactionsFile)
}

// MacroPath is the macro table inside OutputDir.
func (c *Config) MacroPath() string {
	return joinOutput(c.OutputDir, tables.MacroFile)
}

func joinOutput(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
