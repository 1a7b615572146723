package pokeapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/pokegen/internal/config"
	"github.com/cory-johannsen/pokegen/internal/pokeapi"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *pokeapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return pokeapi.NewClient(config.ProviderConfig{BaseURL: srv.URL + "/api/v2/", Timeout: 2 * time.Second}, nil)
}

func TestClient_FetchPokemon(t *testing.T) {
	body, err := os.ReadFile("testdata/pikachu.json")
	require.NoError(t, err)

	var gotPath string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	p, err := client.FetchPokemon(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, "/api/v2/pokemon/25", gotPath)
	assert.Equal(t, "pikachu", p.Name)
	require.NotNil(t, p.BaseExperience)
	assert.Equal(t, 112, *p.BaseExperience)
	assert.Equal(t, []string{"electric"}, p.TypeNames())

	hp, ok := p.BaseStat("hp")
	assert.True(t, ok)
	assert.Equal(t, 35, hp)
	_, ok = p.BaseStat("luck")
	assert.False(t, ok)

	assert.Contains(t, p.StandardImage(), "official-artwork/25.png")
	assert.Contains(t, p.ShinyImage(), "official-artwork/shiny/25.png")
}

func TestClient_NotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := client.FetchPokemon(context.Background(), 9999)
	require.Error(t, err)
	assert.ErrorIs(t, err, pokeapi.ErrNotFound)
}

func TestClient_ServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.FetchPokemon(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_MalformedBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": 12`))
	})
	_, err := client.FetchPokemon(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")
}

func TestClient_InvalidID(t *testing.T) {
	client := pokeapi.NewClient(config.ProviderConfig{BaseURL: "http://unused", Timeout: time.Second}, nil)
	_, err := client.FetchPokemon(context.Background(), 0)
	assert.Error(t, err)
}

func TestImages_FallBackToSprites(t *testing.T) {
	front := "front.png"
	p := pokeapi.Pokemon{}
	p.Sprites.FrontDefault = &front
	assert.Equal(t, "front.png", p.StandardImage())
	assert.Equal(t, "front.png", p.ShinyImage(), "no shiny asset falls back to the standard image")
	assert.Equal(t, "", pokeapi.Pokemon{}.StandardImage())
}

func TestCache_FetchesOnce(t *testing.T) {
	body, err := os.ReadFile("testdata/pikachu.json")
	require.NoError(t, err)

	var hits atomic.Int32
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(body)
	})
	cache := pokeapi.NewCache(client)

	for i := 0; i < 3; i++ {
		p, err := cache.FetchPokemon(context.Background(), 25)
		require.NoError(t, err)
		assert.Equal(t, "pikachu", p.Name)
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestCache_DoesNotCacheFailures(t *testing.T) {
	var hits atomic.Int32
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	cache := pokeapi.NewCache(client)

	_, err := cache.FetchPokemon(context.Background(), 1)
	assert.Error(t, err)
	_, err = cache.FetchPokemon(context.Background(), 1)
	assert.Error(t, err)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 0, cache.Len())
}
