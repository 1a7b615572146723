package sim_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/sim"
)

type puller struct {
	sizes []int
	fail  error
}

func (p *puller) Pull(_ context.Context, count int) ([]creature.Creature, error) {
	if p.fail != nil {
		return nil, p.fail
	}
	p.sizes = append(p.sizes, count)
	out := make([]creature.Creature, count)
	for i := range out {
		out[i] = creature.Creature{ID: "x", SpeciesID: 1, Name: "x", Types: []string{"normal"}, Rarity: creature.Common}
	}
	return out, nil
}

func TestRun_Batches(t *testing.T) {
	p := &puller{}
	got, err := sim.Run(context.Background(), p, 25, 10)
	require.NoError(t, err)
	assert.Len(t, got, 25)
	assert.Equal(t, []int{10, 10, 5}, p.sizes)
}

func TestRun_StopsOnError(t *testing.T) {
	boom := errors.New("broke")
	_, err := sim.Run(context.Background(), &puller{fail: boom}, 5, 1)
	assert.ErrorIs(t, err, boom)
}

func draws() []creature.Creature {
	return []creature.Creature{
		{ID: "a", SpeciesID: 25, Name: "pikachu", Types: []string{"electric"}, Rarity: creature.Rare, Stats: creature.Stats{HP: 35, Attack: 55, Defense: 40, Speed: 90}},
		{ID: "b", SpeciesID: 7, Name: "squirtle", Types: []string{"water"}, Rarity: creature.Common, Shiny: true, Stats: creature.Stats{HP: 44, Attack: 48, Defense: 65, Speed: 43}},
		{ID: "c", SpeciesID: 149, Name: "dragonite", Types: []string{"dragon", "flying"}, Rarity: creature.Legendary, Stats: creature.Stats{HP: 91, Attack: 134, Defense: 95, Speed: 80}},
		{ID: "d", SpeciesID: 10, Name: "caterpie", Types: []string{"bug"}, Rarity: creature.Common, Stats: creature.Stats{HP: 45, Attack: 30, Defense: 35, Speed: 45}},
	}
}

func TestSummarize(t *testing.T) {
	r := sim.Summarize(draws(), 25)
	assert.Equal(t, 4, r.Count)
	assert.Equal(t, 2, r.ByRarity[creature.Common])
	assert.Equal(t, 1, r.Fallbacks)
	assert.Equal(t, 1, r.Shiny)
	assert.InDelta(t, 0.25, r.ShinyRate(), 1e-9)
	assert.InDelta(t, 0.5, r.Share(creature.Common), 1e-9)
	// values 50, 20, 1000, 10
	assert.Equal(t, 1080, r.TotalValue)
	assert.InDelta(t, 270.0, r.MeanValue, 1e-9)
	assert.Equal(t, 20.0, r.MedianValue)
	assert.Equal(t, 1000.0, r.P90Value)
	assert.InDelta(t, (220+200+400+155)/4.0, r.MeanStats, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	assert.Contains(t, buf.String(), "Legendary:")
	assert.Contains(t, buf.String(), "25.00%")
}

func TestSummarize_Empty(t *testing.T) {
	r := sim.Summarize(nil, 25)
	assert.Zero(t, r.Count)
	assert.Zero(t, r.ShinyRate())
	assert.Zero(t, r.Share(creature.Rare))
}

func TestSummarize_SingleDrawHasZeroSpread(t *testing.T) {
	r := sim.Summarize(draws()[:1], 0)
	assert.Zero(t, r.StdDevValue)
	assert.Equal(t, 50.0, r.MeanValue)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sim.WriteCSV(&buf, draws()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "draw,id,pokedex_id,name,types,rarity,shiny,stat_total,resell_value", lines[0])
	assert.Equal(t, "3,c,149,dragonite,dragon/flying,LEGENDARY,false,400,1000", lines[3])

	var rows []*sim.Row
	require.NoError(t, gocsv.UnmarshalString(buf.String(), &rows))
	require.Len(t, rows, 4)
	assert.True(t, rows[1].Shiny)
	assert.Equal(t, 20, rows[1].Value)
}
