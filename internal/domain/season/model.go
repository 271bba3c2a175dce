package season

import "fmt"

// Season is identified by its ending year: 2026 denotes 2025/26.
type Season struct {
	ID   int64
	Year int
}

func (s Season) Validate() error {
	if s.Year < 1870 || s.Year > 2200 {
		return fmt.Errorf("season year %d out of range", s.Year)
	}
	return nil
}

// Label renders the season the way league tables print it, e.g. "2025/26".
func (s Season) Label() string {
	return fmt.Sprintf("%d/%02d", s.Year-1, s.Year%100)
}
