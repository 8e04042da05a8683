package config

import (
	"fmt"

	"github.com/rileyhilliard/wraith/internal/errors"
	"github.com/rileyhilliard/wraith/internal/server"
)

// Validate checks the inventory for entries the engine cannot use.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Servers))
	for i, e := range c.Servers {
		where := fmt.Sprintf("servers[%d]", i)
		if e.Name != "" {
			where = fmt.Sprintf("server %q", e.Name)
		}
		if e.Name == "" {
			return errors.New(errors.ErrConfig,
				where+" has no name",
				"Every server entry needs a name")
		}
		if e.Host == "" {
			return errors.New(errors.ErrConfig,
				where+" has no host",
				"Set host to a hostname or IP address")
		}
		if e.Port < 0 || e.Port > 65535 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("%s has invalid port %d", where, e.Port),
				"Ports must be between 1 and 65535")
		}
		if e.ID != "" {
			if seen[e.ID] {
				return errors.New(errors.ErrConfig,
					where+" has a duplicate id",
					"Server ids must be unique; remove or regenerate the duplicate")
			}
			seen[e.ID] = true
		}
		if server.ParseAuthMethod(e.Auth) == server.AuthKeyFile && e.KeyPath == "" {
			return errors.New(errors.ErrConfig,
				where+" uses key-file auth without key_path",
				"Set key_path to the private key file")
		}
	}
	return nil
}
