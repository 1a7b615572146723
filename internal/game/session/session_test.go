package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/pokegen/internal/config"
	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/game/dice"
	"github.com/cory-johannsen/pokegen/internal/game/inventory"
	"github.com/cory-johannsen/pokegen/internal/game/session"
	"github.com/cory-johannsen/pokegen/internal/pokeapi"
	"github.com/cory-johannsen/pokegen/internal/storage"
	"github.com/cory-johannsen/pokegen/internal/storage/memory"
	"github.com/cory-johannsen/pokegen/internal/textgen"
)

type provider struct{}

// FetchPokemon serves a strong dragon for every id so fusions hit on the first draw.
func (provider) FetchPokemon(_ context.Context, id int) (pokeapi.Pokemon, error) {
	exp := 300
	return pokeapi.Pokemon{
		ID:             id,
		Name:           "dragonite",
		BaseExperience: &exp,
		Types:          []pokeapi.TypeEntry{{Slot: 1, Type: pokeapi.NamedResource{Name: "dragon"}}},
		Stats: []pokeapi.StatEntry{
			{BaseStat: 91, Stat: pokeapi.NamedResource{Name: "hp"}},
			{BaseStat: 134, Stat: pokeapi.NamedResource{Name: "attack"}},
			{BaseStat: 95, Stat: pokeapi.NamedResource{Name: "defense"}},
			{BaseStat: 80, Stat: pokeapi.NamedResource{Name: "speed"}},
		},
	}, nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Gacha.MinPullDuration = 0
	cfg.Gacha.MinFusionDuration = 0
	return cfg
}

func open(t *testing.T, slots storage.Slots, gen textgen.Generator) *session.Session {
	t.Helper()
	s, err := session.Open(context.Background(), testConfig(), session.Deps{
		Slots:     slots,
		Provider:  provider{},
		Generator: gen,
		Source:    dice.NewSeededSource(7),
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return s
}

func TestSession_PullReleasePersist(t *testing.T) {
	slots := memory.New()
	s := open(t, slots, nil)
	ctx := context.Background()

	assert.Equal(t, 2000, s.Store.Credits())
	_, err := s.Gacha.Pull(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1900, s.Store.Credits())
	_, err = s.Gacha.Pull(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 900, s.Store.Credits())
	assert.Equal(t, 11, s.Store.Len())

	// 400 stats + 360 exp + 40 dragon = 800, which is Epic (not strictly above 800)
	first := s.Store.Collection()[0]
	assert.Equal(t, creature.Epic, first.Rarity)
	v, err := s.Store.Release(first.ID)
	require.NoError(t, err)

	credits, err := s.ClaimBonus()
	require.NoError(t, err)
	assert.Equal(t, 900+v+500, credits)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	reopened := open(t, slots, nil)
	t.Cleanup(func() { _ = reopened.Close() })
	assert.Equal(t, credits, reopened.Store.Credits())
	assert.Equal(t, 10, reopened.Store.Len())
}

func TestSession_BackgroundSave(t *testing.T) {
	slots := memory.New()
	s := open(t, slots, nil)
	t.Cleanup(func() { _ = s.Close() })

	_, err := s.ClaimBonus()
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return slots.Dump()[storage.CreditsSlot] == "2500"
	}, time.Second, time.Millisecond)
}

func TestSession_FuseCommons(t *testing.T) {
	slots := memory.New()
	commons := []creature.Creature{
		{ID: "c1", SpeciesID: 10, Name: "caterpie", Types: []string{"bug"}, Rarity: creature.Common},
		{ID: "c2", SpeciesID: 10, Name: "caterpie", Types: []string{"bug"}, Rarity: creature.Common},
		{ID: "c3", SpeciesID: 13, Name: "weedle", Types: []string{"bug", "poison"}, Rarity: creature.Common},
	}
	ctx := context.Background()
	require.NoError(t, storage.Write(ctx, slots, inventory.Snapshot{Credits: 50, Collection: commons}))

	s := open(t, slots, nil)
	t.Cleanup(func() { _ = s.Close() })
	assert.Len(t, inventory.Siblings(s.Store.Collection(), 10), 2)

	out, err := s.Gacha.Pull(ctx, 1)
	assert.Nil(t, out)
	assert.Error(t, err, "50 credits cannot cover a pull")

	res, err := s.Fusion.Fuse(ctx, []string{"c1", "c2", "c3"})
	require.NoError(t, err)
	assert.True(t, res.Creature.Rarity.AtLeast(creature.Rare))
	assert.Equal(t, 1, s.Store.Len())
	assert.Equal(t, "Rookie", s.Standing().Rank.Name)
}

func TestSession_PersonalityDegradesWithoutGenerator(t *testing.T) {
	slots := memory.New()
	s := open(t, slots, nil)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Gacha.Pull(context.Background(), 1)
	require.NoError(t, err)
	text, err := s.Personality.Ensure(context.Background(), got[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "A standard dragonite. The scanner malfunctioned.", text)
}

func TestSession_View(t *testing.T) {
	s := open(t, memory.New(), nil)
	t.Cleanup(func() { _ = s.Close() })
	_, err := s.Gacha.Pull(context.Background(), 3)
	require.NoError(t, err)

	assert.Len(t, s.View(inventory.FilterAll, inventory.SortNewest), 3)
	assert.Len(t, s.View(string(creature.Epic), inventory.SortOldest), 3)
	assert.Empty(t, s.View(string(creature.Common), inventory.SortNewest))
}

func TestOpen_StorageFailure(t *testing.T) {
	slots := memory.New()
	boom := errors.New("unreachable")
	slots.Fail(boom)
	_, err := session.Open(context.Background(), testConfig(), session.Deps{
		Slots:    slots,
		Provider: provider{},
		Logger:   zaptest.NewLogger(t),
	})
	assert.ErrorIs(t, err, boom)
}
