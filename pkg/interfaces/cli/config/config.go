package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// Catalog sources
const (
	SourceCSV  = "csv"
	SourceFile = "file"
	SourceDB   = "db"
)

// Config holds configuration for the prodplan command
type Config struct {
	Source    SourceConfig    `mapstructure:"source"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Output    OutputConfig    `mapstructure:"output"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
	SeedOnly  bool            `mapstructure:"seed_only"`
	Help      bool            `mapstructure:"help"`
}

type SourceConfig struct {
	Kind             string `mapstructure:"kind"`
	Dir              string `mapstructure:"dir"`
	RawMaterialsFile string `mapstructure:"raw_materials"`
	ProductsFile     string `mapstructure:"products"`
	CompositionsFile string `mapstructure:"compositions"`
	CatalogFile      string `mapstructure:"catalog"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

type OptimizerConfig struct {
	Bound       bool     `mapstructure:"bound"`
	DemandCaps  []string `mapstructure:"caps"`
	Reservation []string `mapstructure:"reserve"`
	SavePlan    bool     `mapstructure:"save_plan"`
}

type OutputConfig struct {
	Format  string `mapstructure:"format"`
	Dir     string `mapstructure:"dir"`
	Verbose bool   `mapstructure:"verbose"`
}

type MetricsConfig struct {
	File string `mapstructure:"file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"source":        "source.kind",
	"dir":           "source.dir",
	"raw-materials": "source.raw_materials",
	"products":      "source.products",
	"compositions":  "source.compositions",
	"catalog":       "source.catalog",
	"db-driver":     "database.driver",
	"db-dsn":        "database.dsn",
	"db-debug":      "database.debug",
	"bound":         "optimizer.bound",
	"cap":           "optimizer.caps",
	"reserve":       "optimizer.reserve",
	"save-plan":     "optimizer.save_plan",
	"format":        "output.format",
	"output":        "output.dir",
	"verbose":       "output.verbose",
	"metrics-file":  "metrics.file",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"seed-only":     "seed_only",
	"help":          "help",
}

// NewFlagSet declares the command line flags
func NewFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("prodplan", pflag.ContinueOnError)
	fs.String("config", "", "Path to a YAML config file (default ./prodplan.yaml when present)")
	fs.String("source", SourceCSV, "Catalog source: csv, file, db")
	fs.String("dir", "", "Directory holding raw_materials.csv, products.csv and compositions.csv")
	fs.String("raw-materials", "", "Path to raw materials CSV file")
	fs.String("products", "", "Path to products CSV file")
	fs.String("compositions", "", "Path to compositions CSV file")
	fs.String("catalog", "", "Path to a YAML or JSON catalog document")
	fs.String("db-driver", "sqlite", "Database driver: sqlite, postgres")
	fs.String("db-dsn", "prodplan.db", "Database connection string")
	fs.Bool("db-debug", false, "Log SQL statements")
	fs.Bool("bound", false, "Compute the LP relaxation bound and report the optimality gap")
	fs.StringSlice("cap", nil, "Demand cap as productID=units (repeatable)")
	fs.StringSlice("reserve", nil, "Reserved stock as rawMaterialID=quantity (repeatable)")
	fs.Bool("save-plan", false, "Store the plan in the database")
	fs.String("format", "text", "Output format: text, json, csv, xlsx")
	fs.String("output", "", "Output directory for results (required for csv and xlsx)")
	fs.Bool("verbose", false, "Enable verbose output")
	fs.String("metrics-file", "", "Write Prometheus metrics to this file after the run")
	fs.String("log-level", "warn", "Log level: debug, info, warn, error")
	fs.String("log-format", "console", "Log format: console, json")
	fs.Bool("seed-only", false, "Seed the database with the demo catalog and exit")
	fs.BoolP("help", "h", false, "Show help message")
	return fs
}

// Load resolves the configuration from flags, PRODPLAN_* environment
// variables, the config file and defaults, in that order of precedence
func Load(args []string) (*Config, error) {
	fs := NewFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	v.SetEnvPrefix("PRODPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile, _ := fs.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("prodplan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Help {
		return &cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected source and output are usable
func (c *Config) Validate() error {
	if c.SeedOnly {
		return c.validateDatabase()
	}

	switch c.Source.Kind {
	case SourceCSV:
		if c.Source.Dir == "" && (c.Source.RawMaterialsFile == "" || c.Source.ProductsFile == "") {
			return fmt.Errorf("csv source needs --dir or both --raw-materials and --products")
		}
	case SourceFile:
		if c.Source.CatalogFile == "" {
			return fmt.Errorf("file source needs --catalog")
		}
	case SourceDB:
		if err := c.validateDatabase(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported source %q (use csv, file or db)", c.Source.Kind)
	}

	if c.Optimizer.SavePlan {
		if err := c.validateDatabase(); err != nil {
			return err
		}
	}

	switch c.Output.Format {
	case "text", "json":
	case "csv", "xlsx":
		if c.Output.Dir == "" {
			return fmt.Errorf("output directory required for %s format", c.Output.Format)
		}
	default:
		return fmt.Errorf("unsupported output format: %s", c.Output.Format)
	}

	if _, err := c.DemandCaps(); err != nil {
		return err
	}
	if _, err := c.Reservation(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q (use sqlite or postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	return nil
}

// DemandCaps parses the productID=units pairs
func (c *Config) DemandCaps() (map[entities.ProductID]entities.Quantity, error) {
	if len(c.Optimizer.DemandCaps) == 0 {
		return nil, nil
	}
	caps := make(map[entities.ProductID]entities.Quantity, len(c.Optimizer.DemandCaps))
	for _, pair := range c.Optimizer.DemandCaps {
		id, value, err := splitPair(pair)
		if err != nil {
			return nil, fmt.Errorf("invalid demand cap: %w", err)
		}
		units, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid demand cap %q: units must be an integer", pair)
		}
		caps[entities.ProductID(id)] = entities.Quantity(units)
	}
	return caps, nil
}

// Reservation parses the rawMaterialID=quantity pairs; repeated materials add up
func (c *Config) Reservation() (map[entities.RawMaterialID]decimal.Decimal, error) {
	if len(c.Optimizer.Reservation) == 0 {
		return nil, nil
	}
	reservation := make(map[entities.RawMaterialID]decimal.Decimal, len(c.Optimizer.Reservation))
	for _, pair := range c.Optimizer.Reservation {
		id, value, err := splitPair(pair)
		if err != nil {
			return nil, fmt.Errorf("invalid reservation: %w", err)
		}
		qty, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid reservation %q: quantity must be a number", pair)
		}
		materialID := entities.RawMaterialID(id)
		reservation[materialID] = reservation[materialID].Add(qty)
	}
	return reservation, nil
}

func splitPair(pair string) (int64, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	if !ok {
		return 0, "", fmt.Errorf("%q is not in id=value form", pair)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%q: id must be an integer", pair)
	}
	return id, strings.TrimSpace(value), nil
}
