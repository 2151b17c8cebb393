package config

import "time"

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	ClientURL   string `yaml:"client_url"`
}

// IsProduction reports whether the service runs in production mode. Outside
// production the Initiate response carries the OTP value for test clients.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == "production"
}

// PolicyConfig controls elicitation type selection and TTL windows.
type PolicyConfig struct {
	// OTPThreshold is the amount at or above which an OTP is required
	// instead of a simple confirmation. Decimal string, e.g. "1000".
	OTPThreshold string `yaml:"otp_threshold"`

	// SessionTTLSeconds is the lifetime of the OTP entry, the payment
	// session and the pending transaction window.
	SessionTTLSeconds int `yaml:"session_ttl_seconds"`

	// ElicitationTimeoutSeconds is the default client response timeout.
	ElicitationTimeoutSeconds int `yaml:"elicitation_timeout_seconds"`

	// SweepIntervalSeconds is how often the expiry sweeper settles
	// overdue pending transactions.
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
}

func (c *PolicyConfig) ApplyDefaults() {
	if c.OTPThreshold == "" {
		c.OTPThreshold = "1000"
	}
	if c.SessionTTLSeconds <= 0 {
		c.SessionTTLSeconds = 300
	}
	if c.ElicitationTimeoutSeconds <= 0 {
		c.ElicitationTimeoutSeconds = 300
	}
	if c.SweepIntervalSeconds <= 0 {
		c.SweepIntervalSeconds = 30
	}
}

// SessionTTL returns the session/OTP lifetime as a duration.
func (c *PolicyConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// ElicitationTimeout returns the default elicitation timeout as a duration.
func (c *PolicyConfig) ElicitationTimeout() time.Duration {
	return time.Duration(c.ElicitationTimeoutSeconds) * time.Second
}

// SweepInterval returns the sweeper interval as a duration.
func (c *PolicyConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
