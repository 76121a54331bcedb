// internal/common/config/validate.go
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateConfig runs the struct tag rules and then the rules spanning
// sections.
func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	switch cfg.Ledger.Backend {
	case LedgerRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis ledger")
		}
	case LedgerPostgres:
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" || cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres host, database and user are required for the postgres ledger")
		}
	}

	enabled := 0
	for name, p := range cfg.Providers {
		if !p.Enabled {
			continue
		}
		enabled++
		switch p.Kind {
		case ProviderKindREST:
			if p.BaseURL == "" {
				return fmt.Errorf("providers.%s.base_url is required", name)
			}
		case ProviderKindSearchIndex:
			if cfg.Database.Elasticsearch.GetURL() == "" {
				return fmt.Errorf("providers.%s needs database.elasticsearch.addresses or url", name)
			}
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one provider must be enabled")
	}

	return nil
}

// EnabledProviders returns the names of enabled providers, sorted.
func (c *Config) EnabledProviders() []string {
	var out []string
	for name, p := range c.Providers {
		if p.Enabled {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
