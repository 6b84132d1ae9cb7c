package euserv

import "time"

const (
	// DefaultBaseURL is the EUserv customer control panel endpoint.
	DefaultBaseURL = "https://support.euserv.com/"

	// DefaultUserAgent is sent unless api.user_agent overrides it.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultTimeout bounds every control panel request.
	DefaultTimeout = 30 * time.Second
)

// Config holds the control panel API settings.
type Config struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`           // HTTP client timeout (default: 30s)
	UserAgent       string        `mapstructure:"user_agent"`        // User-Agent header sent on every call
	MinCallInterval time.Duration `mapstructure:"min_call_interval"` // minimum spacing between calls (0 = unlimited)
}

// Credentials identify the customer account and the server contract to reset.
type Credentials struct {
	Email       string `mapstructure:"email"`
	Password    string `mapstructure:"password"`
	OrderNumber string `mapstructure:"order_number"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}
