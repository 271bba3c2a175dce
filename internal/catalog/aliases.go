package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/riskibarqy/betstats/internal/platform/textnorm"
)

// Aliases maps provider team spellings to canonical names, globally and per
// league. Keys are folded so "Man Utd", "man utd." and "MAN UTD" collide.
type Aliases struct {
	global    map[string]string
	perLeague map[string]map[string]string
}

type aliasDocument struct {
	Global  map[string]string `yaml:"global"`
	Leagues []struct {
		Name    string            `yaml:"name"`
		Country string            `yaml:"country"`
		Aliases map[string]string `yaml:"aliases"`
	} `yaml:"leagues"`
}

func LoadAliases(path string) (*Aliases, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias table %s: %w", path, err)
	}
	return ParseAliases(raw)
}

func ParseAliases(raw []byte) (*Aliases, error) {
	var doc aliasDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode alias table: %w", err)
	}

	out := NewAliases()
	for from, to := range doc.Global {
		if err := out.add("", from, to); err != nil {
			return nil, err
		}
	}
	for _, item := range doc.Leagues {
		if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Country) == "" {
			return nil, fmt.Errorf("alias table league entry needs name and country")
		}
		key := foldKey(item.Name, item.Country)
		for from, to := range item.Aliases {
			if err := out.add(key, from, to); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func NewAliases() *Aliases {
	return &Aliases{
		global:    make(map[string]string),
		perLeague: make(map[string]map[string]string),
	}
}

// Add registers one spelling. An empty league name registers it globally.
func (a *Aliases) Add(leagueName, country, from, to string) error {
	key := ""
	if strings.TrimSpace(leagueName) != "" {
		key = foldKey(leagueName, country)
	}
	return a.add(key, from, to)
}

func (a *Aliases) add(leagueKey, from, to string) error {
	folded := textnorm.Fold(from)
	to = strings.TrimSpace(to)
	if folded == "" || to == "" {
		return fmt.Errorf("alias %q => %q: both sides are required", from, to)
	}

	target := a.global
	if leagueKey != "" {
		target = a.perLeague[leagueKey]
		if target == nil {
			target = make(map[string]string)
			a.perLeague[leagueKey] = target
		}
	}
	if existing, ok := target[folded]; ok && !textnorm.Equal(existing, to) {
		return fmt.Errorf("alias %q maps to both %q and %q", from, existing, to)
	}
	target[folded] = to
	return nil
}

// Lookup returns the canonical name for raw in the league, falling back to
// the global map.
func (a *Aliases) Lookup(l League, raw string) (string, bool) {
	if a == nil {
		return "", false
	}
	folded := textnorm.Fold(raw)
	if folded == "" {
		return "", false
	}
	if leagueMap, ok := a.perLeague[foldKey(l.Name, l.Country)]; ok {
		if to, ok := leagueMap[folded]; ok {
			return to, true
		}
	}
	to, ok := a.global[folded]
	return to, ok
}

func (a *Aliases) Len() int {
	if a == nil {
		return 0
	}
	n := len(a.global)
	for _, m := range a.perLeague {
		n += len(m)
	}
	return n
}
