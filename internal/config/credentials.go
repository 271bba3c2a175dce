package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/betstats/internal/platform/keypool"
)

// ProviderConfig holds the credentials of one metered REST provider.
type ProviderConfig struct {
	BaseURL     string
	Credentials []keypool.Credential
}

func (e *env) provider(prefix, name, baseURL string, limit int) ProviderConfig {
	limit = e.atLeast(prefix+"_DAILY_LIMIT", limit, 0)
	credentials, err := parseCredentials(name, e.str(prefix+"_KEYS", ""), limit)
	if err != nil {
		e.fail("parse %s_KEYS: %w", prefix, err)
	}
	return ProviderConfig{
		BaseURL:     e.str(prefix+"_BASE_URL", baseURL),
		Credentials: credentials,
	}
}

// parseCredentials reads a comma separated key list. An item may be
// "label=key" to give the credential a stable id; otherwise ids are
// numbered in order. A "@limit" suffix overrides the daily limit.
func parseCredentials(provider, raw string, defaultLimit int) ([]keypool.Credential, error) {
	var out []keypool.Credential
	seen := make(map[string]bool)
	position := 0
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		position++

		label, key := strconv.Itoa(position), item
		if l, k, ok := strings.Cut(item, "="); ok {
			label, key = strings.TrimSpace(l), strings.TrimSpace(k)
		}
		limit := defaultLimit
		if k, l, ok := strings.Cut(key, "@"); ok {
			parsed, err := strconv.Atoi(strings.TrimSpace(l))
			if err != nil {
				return nil, fmt.Errorf("invalid limit in credential %s: %w", label, err)
			}
			if parsed < 0 {
				return nil, fmt.Errorf("limit must be >= 0 in credential %s", label)
			}
			key, limit = strings.TrimSpace(k), parsed
		}
		if label == "" || key == "" {
			return nil, fmt.Errorf("empty label or key in credential #%d", position)
		}

		id := provider + "#" + label
		if seen[id] {
			return nil, fmt.Errorf("duplicate credential %s", id)
		}
		seen[id] = true
		out = append(out, keypool.Credential{ID: id, Key: key, DailyLimit: limit})
	}
	return out, nil
}
