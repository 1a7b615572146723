// Package pokeapi is an HTTP client for the PokeAPI creature catalog.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cory-johannsen/pokegen/internal/config"
)

// ErrNotFound is returned when the provider has no record for the requested id.
var ErrNotFound = errors.New("pokemon not found")

// maxBodyBytes bounds a single response body.
const maxBodyBytes = 4 << 20

// Client fetches pokemon records over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client for the configured base URL.
//
// Precondition: cfg.BaseURL must be non-empty.
// Postcondition: If client is nil, an http.Client with cfg.Timeout is used.
func NewClient(cfg config.ProviderConfig, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
	}
}

// FetchPokemon requests the record for the given catalog id.
//
// Precondition: id >= 1.
// Postcondition: Returns the decoded record, ErrNotFound on 404, or a non-nil error on any
// transport, status, or decode failure.
func (c *Client) FetchPokemon(ctx context.Context, id int) (Pokemon, error) {
	if id < 1 {
		return Pokemon{}, fmt.Errorf("invalid pokemon id %d", id)
	}
	url := fmt.Sprintf("%s/pokemon/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Pokemon{}, fmt.Errorf("building pokemon request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Pokemon{}, fmt.Errorf("requesting pokemon %d: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Pokemon{}, fmt.Errorf("pokemon %d: %w", id, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Pokemon{}, fmt.Errorf("pokemon %d: provider returned %s", id, resp.Status)
	}

	var p Pokemon
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&p); err != nil {
		return Pokemon{}, fmt.Errorf("decoding pokemon %d: %w", id, err)
	}
	return p, nil
}

// Fetcher is satisfied by Client and Cache.
type Fetcher interface {
	FetchPokemon(ctx context.Context, id int) (Pokemon, error)
}
