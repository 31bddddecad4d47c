package config

import (
	"time"
)

type Config struct {
	Processing     ProcessingConfig     `mapstructure:"processing"`
	HL7            HL7Config            `mapstructure:"hl7"`
	Bootstrap      BootstrapConfig      `mapstructure:"bootstrap"`
	Server         ServerConfig         `mapstructure:"server"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
}

// ProcessingConfig is loaded once at startup and read-only afterwards.
type ProcessingConfig struct {
	InputFolder            string        `mapstructure:"input_folder"`
	OutputFolder           string        `mapstructure:"output_folder"`
	PollingIntervalMinutes int           `mapstructure:"polling_interval_minutes"`
	ContinueOnError        bool          `mapstructure:"continue_on_error"`
	FileTimeout            time.Duration `mapstructure:"file_timeout"`
}

func (c ProcessingConfig) PollingInterval() time.Duration {
	return time.Duration(c.PollingIntervalMinutes) * time.Minute
}

type HL7Config struct {
	SendingApplication   string `mapstructure:"sending_application"`
	ReceivingApplication string `mapstructure:"receiving_application"`
	AssigningAuthority   string `mapstructure:"assigning_authority"`
	FileExtension        string `mapstructure:"file_extension"`
}

type BootstrapConfig struct {
	SeedSample     bool   `mapstructure:"seed_sample"`
	SampleFileName string `mapstructure:"sample_file_name"`
}

type ServerConfig struct {
	Enabled   bool            `mapstructure:"enabled"`
	Port      int             `mapstructure:"port"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	RPS             float64       `mapstructure:"rps"`
	Burst           int           `mapstructure:"burst"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	MaxAge          time.Duration `mapstructure:"max_age"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
