package helpers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const queryDateLayout = "2006-01-02"

// QueryTime parses an optional RFC3339 query parameter.
func QueryTime(r *http.Request, key string) (*time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC3339 timestamp", key)
	}
	return &t, nil
}

// QueryDate parses an optional YYYY-MM-DD parameter as midnight in loc, falling back to def.
func QueryDate(r *http.Request, key string, loc *time.Location, def time.Time) (time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	t, err := time.ParseInLocation(queryDateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", key)
	}
	return t, nil
}

// QueryNonNegativeInt parses an optional integer parameter that must be >= 0; missing means 0.
func QueryNonNegativeInt(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

// QueryList splits a comma-separated parameter. A missing parameter returns nil,
// a present but empty one returns an empty non-nil slice.
func QueryList(r *http.Request, key string) []string {
	values, ok := r.URL.Query()[key]
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
