package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"hl7fileprocessor/internal/constants"
)

const envPrefix = "HL7"

func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigFile(configFile)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("processing.continue_on_error", false)
	v.SetDefault("processing.file_timeout", 0)

	v.SetDefault("hl7.sending_application", constants.DefaultSendingApplication)
	v.SetDefault("hl7.receiving_application", constants.DefaultReceivingApplication)
	v.SetDefault("hl7.assigning_authority", constants.DefaultAssigningAuthority)
	v.SetDefault("hl7.file_extension", constants.DefaultMessageExtension)

	v.SetDefault("bootstrap.seed_sample", true)
	v.SetDefault("bootstrap.sample_file_name", constants.DefaultSampleFile)

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", constants.DefaultServerPort)
	v.SetDefault("server.rate_limit.rps", 10.0)
	v.SetDefault("server.rate_limit.burst", 20)
	v.SetDefault("server.rate_limit.cleanup_interval", "5m")
	v.SetDefault("server.rate_limit.max_age", "10m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("circuit_breaker.max_requests", 1)
	v.SetDefault("circuit_breaker.interval", "60s")
	v.SetDefault("circuit_breaker.timeout", "30s")
	v.SetDefault("circuit_breaker.failure_ratio", 0.5)
	v.SetDefault("circuit_breaker.min_requests", 5)

	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.sampler.type", "always_on")
}

// AutomaticEnv only resolves keys viper already knows about; the
// required processing keys have no default, so they are bound explicitly.
func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("processing.input_folder")
	v.BindEnv("processing.output_folder")
	v.BindEnv("processing.polling_interval_minutes")

	v.BindEnv("tracing.enabled")
	v.BindEnv("tracing.otlp.endpoint")
	v.BindEnv("tracing.otlp.insecure")
}
