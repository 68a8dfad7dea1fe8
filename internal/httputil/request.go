package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models/dataroom"
)

// maxJSONBody limits JSON request bodies; uploads use their own ceiling.
const maxJSONBody = 1 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size and reports decode failures as validation errors.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid JSON body", domain.ErrValidation)
	}

	return nil
}

// QueryPage reads the page and limit query parameters.
// Missing values are left zero so the service applies its defaults.
func QueryPage(r *http.Request) (dataroom.PageRequest, error) {
	page, err := QueryInt(r, "page")
	if err != nil {
		return dataroom.PageRequest{}, err
	}
	limit, err := QueryInt(r, "limit")
	if err != nil {
		return dataroom.PageRequest{}, err
	}
	return dataroom.PageRequest{Page: page, Limit: limit}, nil
}

// QueryInt parses an optional integer query parameter; absent means 0
func QueryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, key)
	}
	return n, nil
}

// QueryInt64 parses an optional int64 query parameter; absent means nil
func QueryInt64(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, key)
	}
	return &n, nil
}

// QueryTime parses an optional RFC 3339 timestamp or YYYY-MM-DD date.
// A bare date is interpreted as midnight UTC.
func QueryTime(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp or YYYY-MM-DD date", domain.ErrValidation, key)
}
