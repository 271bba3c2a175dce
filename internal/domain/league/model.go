package league

import (
	"fmt"
	"strings"
)

// League is reference data, unique on (name, country).
type League struct {
	ID      int64
	Name    string
	Country string
}

func (l League) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	if strings.TrimSpace(l.Country) == "" {
		return fmt.Errorf("league country is required")
	}
	return nil
}

func (l League) String() string {
	return l.Name + " (" + l.Country + ")"
}
