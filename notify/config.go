package notify

import "time"

// Config holds SMTP settings. With viper's env binding the keys map to
// SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM_EMAIL and
// SMTP_FROM_NAME.
type Config struct {
	Host      string        `yaml:"host" mapstructure:"host"`
	Port      int           `yaml:"port" mapstructure:"port"`
	User      string        `yaml:"user" mapstructure:"user"`
	Pass      string        `yaml:"pass" mapstructure:"pass"`
	FromEmail string        `yaml:"from_email" mapstructure:"from_email"`
	FromName  string        `yaml:"from_name" mapstructure:"from_name"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults sets default values for unset config fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 587
	}
	if c.FromEmail == "" {
		c.FromEmail = c.User
	}
	if c.FromName == "" {
		c.FromName = "AI Legal Assistant"
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
}

// Complete reports whether every setting needed to send is present.
func (c *Config) Complete() bool {
	return c.Host != "" && c.User != "" && c.Pass != "" && c.FromEmail != ""
}
