// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Database() DatabaseConfig
	Assessment() AssessmentConfig
	Dread() DreadConfig
	Report() ReportConfig

	// Assessment Setters
	SetAssessmentSystemConfig(path string)
	SetAssessmentOutputDir(dir string)
	SetAssessmentFormats(formats []string)
	SetAssessmentPriceSeed(seed int64)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	DatabaseCfg   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	AssessmentCfg AssessmentConfig `mapstructure:"assessment" yaml:"assessment"`
	DreadCfg      DreadConfig      `mapstructure:"dread" yaml:"dread"`
	ReportCfg     ReportConfig     `mapstructure:"report" yaml:"report"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig         { return c.LoggerCfg }
func (c *Config) Database() DatabaseConfig     { return c.DatabaseCfg }
func (c *Config) Assessment() AssessmentConfig { return c.AssessmentCfg }
func (c *Config) Dread() DreadConfig           { return c.DreadCfg }
func (c *Config) Report() ReportConfig         { return c.ReportCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetAssessmentSystemConfig(path string) { c.AssessmentCfg.SystemConfig = path }
func (c *Config) SetAssessmentOutputDir(dir string)     { c.AssessmentCfg.OutputDir = dir }
func (c *Config) SetAssessmentFormats(formats []string) { c.AssessmentCfg.Formats = formats }
func (c *Config) SetAssessmentPriceSeed(seed int64)     { c.AssessmentCfg.PriceSeed = seed }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DatabaseConfig holds the snapshot archive connection details. An empty URL
// disables archiving.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// AssessmentConfig controls a pipeline run.
type AssessmentConfig struct {
	// SystemConfig is the path of the system configuration document. Empty
	// means the built-in default system.
	SystemConfig     string   `mapstructure:"system_config" yaml:"system_config"`
	OutputDir        string   `mapstructure:"output_dir" yaml:"output_dir"`
	Formats          []string `mapstructure:"formats" yaml:"formats"`
	MaxParallelRuns  int      `mapstructure:"max_parallel_runs" yaml:"max_parallel_runs"`
	// PriceSeed seeds synthetic spot-price generation. Zero seeds from the clock.
	PriceSeed        int64    `mapstructure:"price_seed" yaml:"price_seed"`
	HistoricalPrices string   `mapstructure:"historical_prices" yaml:"historical_prices"`
	Frameworks       []string `mapstructure:"frameworks" yaml:"frameworks"`
}

// DreadConfig configures prioritization.
type DreadConfig struct {
	Weights WeightsConfig `mapstructure:"weights" yaml:"weights"`
	// TopN limits the prioritized list in reports.
	TopN int `mapstructure:"top_n" yaml:"top_n"`
}

// WeightsConfig is the per-sub-score weight map used for weighted ranking.
type WeightsConfig struct {
	Damage          float64 `mapstructure:"damage" yaml:"damage"`
	Reproducibility float64 `mapstructure:"reproducibility" yaml:"reproducibility"`
	Exploitability  float64 `mapstructure:"exploitability" yaml:"exploitability"`
	AffectedUsers   float64 `mapstructure:"affected_users" yaml:"affected_users"`
	Discoverability float64 `mapstructure:"discoverability" yaml:"discoverability"`
}

// ReportConfig holds the report metadata and section toggles.
type ReportConfig struct {
	Title                   string `mapstructure:"title" yaml:"title"`
	Organization            string `mapstructure:"organization" yaml:"organization"`
	Author                  string `mapstructure:"author" yaml:"author"`
	Classification          string `mapstructure:"classification" yaml:"classification"`
	IncludeExecutiveSummary bool   `mapstructure:"include_executive_summary" yaml:"include_executive_summary"`
	IncludeTechnicalDetails bool   `mapstructure:"include_technical_details" yaml:"include_technical_details"`
	IncludeVisualizations   bool   `mapstructure:"include_visualizations" yaml:"include_visualizations"`
	IncludeRecommendations  bool   `mapstructure:"include_recommendations" yaml:"include_recommendations"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "solarsec")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Assessment --
	v.SetDefault("assessment.system_config", "")
	v.SetDefault("assessment.output_dir", "reports")
	v.SetDefault("assessment.formats", []string{"json", "html", "csv"})
	v.SetDefault("assessment.max_parallel_runs", 4)
	v.SetDefault("assessment.price_seed", 0)
	v.SetDefault("assessment.historical_prices", "")
	v.SetDefault("assessment.frameworks", []string{"AEMO_VPP", "AS4777"})

	// -- DREAD --
	v.SetDefault("dread.weights.damage", 0.30)
	v.SetDefault("dread.weights.reproducibility", 0.15)
	v.SetDefault("dread.weights.exploitability", 0.25)
	v.SetDefault("dread.weights.affected_users", 0.20)
	v.SetDefault("dread.weights.discoverability", 0.10)
	v.SetDefault("dread.top_n", 20)

	// -- Report --
	v.SetDefault("report.title", "Solar Inverter Cybersecurity Assessment")
	v.SetDefault("report.organization", "South Australian Solar Security Research")
	v.SetDefault("report.author", "Security Research Team")
	v.SetDefault("report.classification", "CONFIDENTIAL")
	v.SetDefault("report.include_executive_summary", true)
	v.SetDefault("report.include_technical_details", true)
	v.SetDefault("report.include_visualizations", true)
	v.SetDefault("report.include_recommendations", true)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	v.SetEnvPrefix("SOLARSEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Bind environment variables for sensitive data
	_ = v.BindEnv("database.url", "SOLARSEC_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.AssessmentCfg.Validate(); err != nil {
		return err
	}
	if err := c.DreadCfg.Validate(); err != nil {
		return fmt.Errorf("dread configuration invalid: %w", err)
	}
	if c.ReportCfg.Classification == "" {
		return fmt.Errorf("report.classification must not be empty")
	}
	return nil
}

var supportedFormats = map[string]bool{"json": true, "html": true, "csv": true}

// Validate checks the assessment settings.
func (a *AssessmentConfig) Validate() error {
	if a.MaxParallelRuns <= 0 {
		return fmt.Errorf("assessment.max_parallel_runs must be a positive integer")
	}
	for _, f := range a.Formats {
		if !supportedFormats[strings.ToLower(f)] {
			return fmt.Errorf("assessment.formats: unsupported format %q", f)
		}
	}
	return nil
}

// Validate checks the DREAD weight map.
func (d *DreadConfig) Validate() error {
	w := d.Weights
	for name, val := range map[string]float64{
		"damage":          w.Damage,
		"reproducibility": w.Reproducibility,
		"exploitability":  w.Exploitability,
		"affected_users":  w.AffectedUsers,
		"discoverability": w.Discoverability,
	} {
		if val < 0 {
			return fmt.Errorf("weights.%s must not be negative", name)
		}
	}
	if w.Damage+w.Reproducibility+w.Exploitability+w.AffectedUsers+w.Discoverability == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	if d.TopN < 0 {
		return fmt.Errorf("top_n must not be negative")
	}
	return nil
}
