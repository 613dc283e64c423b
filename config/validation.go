package config

import (
	"fmt"
	"time"

	"github.com/grovetools/sheetsync/errors"
)

// Validate checks semantic rules the schema cannot express.
func (c *Config) Validate() error {
	if c.Backend != nil {
		if err := validateBackend(c.Backend); err != nil {
			return err
		}
	}

	if c.Keybindings != nil {
		for action, keys := range c.Keybindings.Editor {
			for _, k := range keys {
				if k == "" {
					return errors.New(errors.ErrCodeConfigValidation,
						fmt.Sprintf("keybindings.editor.%s contains an empty key", action)).
						WithDetail("action", action)
				}
			}
		}
	}

	return nil
}

func validateBackend(b *BackendConfig) error {
	switch b.Transport {
	case "", TransportUnix:
	case TransportHTTP, TransportWebSocket:
		if b.URL == "" {
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("backend.url is required for the %s transport", b.Transport)).
				WithDetail("transport", b.Transport)
		}
	default:
		return errors.New(errors.ErrCodeConfigValidation,
			fmt.Sprintf("unknown backend transport '%s'", b.Transport)).
			WithDetail("transport", b.Transport)
	}

	if b.DialTimeout != "" {
		d, err := time.ParseDuration(b.DialTimeout)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, "backend.dial_timeout is not a duration").
				WithDetail("value", b.DialTimeout)
		}
		if d <= 0 {
			return errors.New(errors.ErrCodeConfigValidation, "backend.dial_timeout must be positive").
				WithDetail("value", b.DialTimeout)
		}
	}
	return nil
}
