// internal/workers/checkout/send-confirmation/config.go
package sendconfirmation

import "time"

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      15 * time.Second,
		EmailEnabled: true,
		SMSEnabled:   false,
		FromEmail:    "bestellung@grundbuch-express.de",
	}
}
