package config

import "fmt"

// AuthConfig lists the user IDs allowed through the admin gate.
type AuthConfig struct {
	AdminIDs []string `koanf:"adminIds"`
}

func (c *AuthConfig) Validate() error {
	if len(c.AdminIDs) == 0 {
		return fmt.Errorf("no admin user IDs configured")
	}
	return nil
}
