package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// env reads variables and collects every problem, so a bad deployment sees
// all of them in one run instead of one per restart.
type env struct {
	problems []error
}

func (e *env) fail(format string, args ...any) {
	e.problems = append(e.problems, fmt.Errorf(format, args...))
}

func (e *env) check(ok bool, format string, args ...any) {
	if !ok {
		e.fail(format, args...)
	}
}

func (e *env) err() error {
	return errors.Join(e.problems...)
}

// str returns the trimmed value, or def when unset or blank.
func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *env) oneOf(key, def string, allowed ...string) string {
	v := strings.ToLower(e.str(key, def))
	for _, candidate := range allowed {
		if v == candidate {
			return v
		}
	}
	e.fail("invalid %s %q: valid values are %s", key, v, strings.Join(allowed, ", "))
	return def
}

func (e *env) flag(key string, def bool) bool {
	raw := e.str(key, strconv.FormatBool(def))
	v, err := strconv.ParseBool(raw)
	if err != nil {
		e.fail("parse %s: %w", key, err)
		return def
	}
	return v
}

// atLeast parses an integer no smaller than floor.
func (e *env) atLeast(key string, def, floor int) int {
	raw := e.str(key, strconv.Itoa(def))
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.fail("parse %s: %w", key, err)
		return def
	}
	e.check(v >= floor, "%s must be >= %d", key, floor)
	return v
}

// duration parses a Go duration. Positive durations reject zero.
func (e *env) duration(key string, def time.Duration, positive bool) time.Duration {
	v, err := time.ParseDuration(e.str(key, def.String()))
	if err != nil {
		e.fail("parse %s: %w", key, err)
		return def
	}
	if positive {
		e.check(v > 0, "%s must be > 0", key)
	} else {
		e.check(v >= 0, "%s must be >= 0", key)
	}
	return v
}

func (e *env) location(key, def string) *time.Location {
	loc, err := time.LoadLocation(e.str(key, def))
	if err != nil {
		e.fail("parse %s: %w", key, err)
		return time.UTC
	}
	return loc
}

// otlpHeaderValue picks one entry from a "k=v,k2=v2" OTLP header list.
func otlpHeaderValue(raw, name string) string {
	for _, item := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(item, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), name) {
			return strings.Trim(strings.TrimSpace(v), `"'`)
		}
	}
	return ""
}
