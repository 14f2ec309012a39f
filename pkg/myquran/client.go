package myquran

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/mt-inside/muslimkit/pkg/fetch"
)

const errorBodySnippet = 120

// Fetcher is satisfied by *fetch.Client.
type Fetcher interface {
	Fetch(ctx context.Context, host, path string) (*fetch.Response, error)
}

type Client struct {
	Fetcher Fetcher
	// Host defaults to api.myquran.com
	Host string
	Log  logr.Logger
}

// StatusError is a response that arrived intact but wasn't a success.
type StatusError struct {
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.Path, e.Status, e.Message)
}

func (c *Client) host() string {
	if c.Host == "" {
		return Host
	}
	return c.Host
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.Fetcher.Fetch(ctx, c.host(), path)
	if err != nil {
		return nil, err
	}
	c.Log.V(1).Info("Fetched", "path", path, "status", resp.Status, "bytes", len(resp.Body))

	if resp.Status < 200 || resp.Status > 299 {
		snippet := string(resp.Body)
		if len(snippet) > errorBodySnippet {
			snippet = snippet[:errorBodySnippet] + "..."
		}
		return nil, &StatusError{Path: path, Status: resp.Status, Message: snippet}
	}

	return resp.Body, nil
}

func (c *Client) Cities(ctx context.Context) (*Cities, error) {
	body, err := c.get(ctx, CitiesPath())
	if err != nil {
		return nil, err
	}
	cs, err := DecodeCities(body)
	if err != nil {
		return nil, err
	}
	if !cs.Status {
		return nil, &StatusError{Path: CitiesPath(), Status: 200, Message: cs.Message}
	}
	return cs, nil
}

func (c *Client) Schedule(ctx context.Context, cityID string, t time.Time) (*Schedule, error) {
	path := SchedulePathFor(cityID, t)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	s, err := DecodeSchedule(body)
	if err != nil {
		return nil, err
	}
	if !s.Status {
		return nil, &StatusError{Path: path, Status: 200, Message: s.Message}
	}
	return s, nil
}

// FilterCities keeps the cities whose location contains query, ignoring case. An empty query keeps everything.
func FilterCities(cities []City, query string) []City {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return cities
	}

	var out []City
	for _, c := range cities {
		if strings.Contains(strings.ToLower(c.Location), q) {
			out = append(out, c)
		}
	}
	return out
}
