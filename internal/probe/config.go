package probe

import "time"

// Probe methods.
const (
	MethodExec = "exec" // platform ping binary
	MethodICMP = "icmp" // native ICMPv6 via pro-bing
)

// Upper bounds for a probe; they keep Deadline far from overflowing.
const (
	MaxCount   = 100
	MaxTimeout = 60 * time.Second
)

// deadlineBuffer is added to count*timeout to form the hard ceiling of a probe.
const deadlineBuffer = 2 * time.Second

// Config holds the connectivity probe settings.
type Config struct {
	Method     string        `mapstructure:"method"`
	Count      int           `mapstructure:"count"`
	Timeout    time.Duration `mapstructure:"timeout"`    // per echo request
	Privileged bool          `mapstructure:"privileged"` // raw sockets for the icmp method
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Method:  MethodExec,
		Count:   4,
		Timeout: 5 * time.Second,
	}
}

// Deadline returns the wall-clock ceiling for one probe run.
func (c Config) Deadline() time.Duration {
	return time.Duration(c.Count)*c.Timeout + deadlineBuffer
}
