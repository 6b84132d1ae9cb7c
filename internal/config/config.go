// Package config loads the euserv-reboot configuration from file and
// environment with Viper and validates it before anything touches the network.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/HerbHall/euserv-reboot/internal/euserv"
	"github.com/HerbHall/euserv-reboot/internal/probe"
	"github.com/HerbHall/euserv-reboot/internal/webhook"
	"github.com/spf13/viper"
)

// Config is the validated configuration of one run.
type Config struct {
	Account           euserv.Credentials `mapstructure:"account"`
	Target            TargetConfig       `mapstructure:"target"`
	Probe             probe.Config       `mapstructure:"probe"`
	API               euserv.Config      `mapstructure:"api"`
	Notify            NotifyConfig       `mapstructure:"notify"`
	Metrics           MetricsConfig      `mapstructure:"metrics"`
	DryRun            bool               `mapstructure:"dry_run"`            // probe and report only
	AllowPlaceholders bool               `mapstructure:"allow_placeholders"` // accept unfilled example credentials
}

// TargetConfig identifies the host to probe and recover.
type TargetConfig struct {
	Address string `mapstructure:"address"`
	Strict  bool   `mapstructure:"strict"` // require a parseable IPv6 literal
}

// NotifyConfig holds outbound notification settings.
type NotifyConfig struct {
	Webhook webhook.Config `mapstructure:"webhook"`
}

// MetricsConfig holds the Prometheus textfile export settings.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // node_exporter textfile collector path ("" = disabled)
}

// Error reports an invalid or missing configuration value.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// IsConfigError reports whether err contains a configuration error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// placeholders are the example values shipped in documentation.
var placeholders = map[string]bool{
	"your@email.com":    true,
	"your_password":     true,
	"your_order_number": true,
}

// Load reads configuration from file and environment variables.
// Config file not found is fine; defaults and environment still apply.
func Load(configPath string) (*viper.Viper, error) {
	v := viper.New()

	probeDefaults := probe.DefaultConfig()
	apiDefaults := euserv.DefaultConfig()

	v.SetDefault("account.email", "")
	v.SetDefault("account.password", "")
	v.SetDefault("account.order_number", "")
	v.SetDefault("target.address", "")
	v.SetDefault("target.strict", true)
	v.SetDefault("probe.method", probeDefaults.Method)
	v.SetDefault("probe.count", probeDefaults.Count)
	v.SetDefault("probe.timeout", probeDefaults.Timeout.String())
	v.SetDefault("probe.privileged", false)
	v.SetDefault("api.base_url", apiDefaults.BaseURL)
	v.SetDefault("api.timeout", apiDefaults.Timeout.String())
	v.SetDefault("api.user_agent", apiDefaults.UserAgent)
	v.SetDefault("api.min_call_interval", "0s")
	v.SetDefault("notify.webhook.url", "")
	v.SetDefault("notify.webhook.secret", "")
	v.SetDefault("notify.webhook.timeout", webhook.DefaultTimeout.String())
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("dry_run", false)
	v.SetDefault("allow_placeholders", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("euserv-reboot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/euserv-reboot")
	}

	// Environment variable support: EUSERV_PROBE_COUNT=2
	v.SetEnvPrefix("EUSERV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short names used by existing cron and container setups.
	for key, env := range map[string]string{
		"account.email":        "EUSERV_EMAIL",
		"account.password":     "EUSERV_PASSWORD",
		"account.order_number": "EUSERV_ORD_NO",
		"target.address":       "EUSERV_IPV6",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return v, nil
}

// Parse unmarshals v into a Config and validates it.
func Parse(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Target.Address = strings.TrimSpace(cfg.Target.Address)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error

	if err := ValidateTarget(c.Target.Address, c.Target.Strict); err != nil {
		errs = append(errs, err)
	}

	if !c.AllowPlaceholders {
		for field, value := range map[string]string{
			"account.email":        c.Account.Email,
			"account.password":     c.Account.Password,
			"account.order_number": c.Account.OrderNumber,
		} {
			switch {
			case strings.TrimSpace(value) == "":
				errs = append(errs, &Error{Field: field, Message: "must be set"})
			case placeholders[value]:
				errs = append(errs, &Error{Field: field, Message: fmt.Sprintf("placeholder value %q", value)})
			}
		}
	}

	if c.Probe.Method != probe.MethodExec && c.Probe.Method != probe.MethodICMP {
		errs = append(errs, &Error{Field: "probe.method", Message: fmt.Sprintf("must be %q or %q, got %q", probe.MethodExec, probe.MethodICMP, c.Probe.Method)})
	}
	if c.Probe.Count <= 0 || c.Probe.Count > probe.MaxCount {
		errs = append(errs, &Error{Field: "probe.count", Message: fmt.Sprintf("must be between 1 and %d", probe.MaxCount)})
	}
	if c.Probe.Timeout <= 0 || c.Probe.Timeout > probe.MaxTimeout {
		errs = append(errs, &Error{Field: "probe.timeout", Message: fmt.Sprintf("must be positive and at most %s", probe.MaxTimeout)})
	}

	if err := validateURL("api.base_url", c.API.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, &Error{Field: "api.timeout", Message: "must be positive"})
	}
	if c.API.MinCallInterval < 0 {
		errs = append(errs, &Error{Field: "api.min_call_interval", Message: "must not be negative"})
	}

	if c.Notify.Webhook.URL != "" {
		if err := validateURL("notify.webhook.url", c.Notify.Webhook.URL); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &Error{Field: field, Message: err.Error()}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &Error{Field: field, Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", raw)}
	}
	return nil
}
