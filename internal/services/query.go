package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-nightsky/internal/domain"

	"cloudeng.io/errors"
)

// Query is a validated sky request.
type Query struct {
	Observer domain.Observer
	Instant  time.Time
}

// ValidationError lists every problem found in a request.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseInstant accepts ISO-8601 date-times with or without an offset.
// Instants without an offset are taken as UTC. The result is in UTC,
// truncated to the second.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("time %q is not an ISO-8601 date-time", s)
}

func parseCoordinate(name, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", name, s)
	}
	return v, nil
}

// ParseQuery validates the raw request parameters. All problems are
// reported together.
func ParseQuery(lat, lon, instant string) (Query, error) {
	errs := errors.M{}

	latV, err := parseCoordinate("lat", lat)
	errs.Append(err)
	lonV, err := parseCoordinate("lon", lon)
	errs.Append(err)

	var t time.Time
	if strings.TrimSpace(instant) == "" {
		errs.Append(fmt.Errorf("time is required"))
	} else {
		t, err = ParseInstant(instant)
		errs.Append(err)
	}

	var obs domain.Observer
	if errs.Err() == nil {
		obs, err = domain.NewObserver(latV, lonV)
		errs.Append(err)
	}
	if err := errs.Err(); err != nil {
		return Query{}, &ValidationError{Err: err}
	}
	return Query{Observer: obs, Instant: t}, nil
}

// ParseObserver validates raw lat and lon parameters.
func ParseObserver(lat, lon string) (domain.Observer, error) {
	errs := errors.M{}
	latV, err := parseCoordinate("lat", lat)
	errs.Append(err)
	lonV, err := parseCoordinate("lon", lon)
	errs.Append(err)

	var obs domain.Observer
	if errs.Err() == nil {
		obs, err = domain.NewObserver(latV, lonV)
		errs.Append(err)
	}
	if err := errs.Err(); err != nil {
		return domain.Observer{}, &ValidationError{Err: err}
	}
	return obs, nil
}
