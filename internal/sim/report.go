// Package sim runs batches of pulls and summarises the resulting drop distribution.
package sim

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/game/gacha"
)

// Puller is the gacha operation driven by Run.
type Puller interface {
	Pull(ctx context.Context, count int) ([]creature.Creature, error)
}

// Run performs pulls of batch creatures until total creatures are drawn.
//
// Precondition: total >= 0; batch >= 1; the puller's store can afford every pull.
// Postcondition: returns every drawn creature in draw order, or the first pull error.
func Run(ctx context.Context, p Puller, total, batch int) ([]creature.Creature, error) {
	out := make([]creature.Creature, 0, total)
	for len(out) < total {
		n := min(batch, total-len(out))
		got, err := p.Pull(ctx, n)
		if err != nil {
			return out, fmt.Errorf("pull %d after %d creatures: %w", n, len(out), err)
		}
		out = append(out, got...)
	}
	return out, nil
}

var _ Puller = (*gacha.Engine)(nil)

// Report summarises a set of draws.
type Report struct {
	Count       int
	ByRarity    map[creature.Rarity]int
	Shiny       int
	TotalValue  int
	MeanValue   float64
	StdDevValue float64
	MedianValue float64
	P90Value    float64
	MeanStats   float64
	Fallbacks   int
}

// ShinyRate returns the observed shiny fraction.
func (r Report) ShinyRate() float64 {
	if r.Count == 0 {
		return 0
	}
	return float64(r.Shiny) / float64(r.Count)
}

// Share returns the observed fraction of draws at rarity.
func (r Report) Share(rarity creature.Rarity) float64 {
	if r.Count == 0 {
		return 0
	}
	return float64(r.ByRarity[rarity]) / float64(r.Count)
}

// Summarize builds a Report. fallbackSpecies identifies draws served by the fallback creature.
func Summarize(list []creature.Creature, fallbackSpecies int) Report {
	r := Report{Count: len(list), ByRarity: make(map[creature.Rarity]int)}
	if len(list) == 0 {
		return r
	}
	values := make([]float64, len(list))
	totals := make([]float64, len(list))
	for i, c := range list {
		r.ByRarity[c.Rarity]++
		if c.Shiny {
			r.Shiny++
		}
		if c.SpeciesID == fallbackSpecies {
			r.Fallbacks++
		}
		v := creature.ResellValue(c)
		r.TotalValue += v
		values[i] = float64(v)
		totals[i] = float64(c.Stats.Total())
	}
	r.MeanValue, r.StdDevValue = stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		r.StdDevValue = 0
	}
	r.MeanStats = stat.Mean(totals, nil)
	slices.Sort(values)
	r.MedianValue = stat.Quantile(0.5, stat.Empirical, values, nil)
	r.P90Value = stat.Quantile(0.9, stat.Empirical, values, nil)
	return r
}

// WriteText renders r as a human-readable table.
func (r Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "draws:        %d\n", r.Count)
	for _, rarity := range creature.AllRarities() {
		fmt.Fprintf(&b, "%-13s %6d  %6.2f%%\n", rarity.DisplayName()+":", r.ByRarity[rarity], 100*r.Share(rarity))
	}
	fmt.Fprintf(&b, "shiny:        %6d  %6.2f%%\n", r.Shiny, 100*r.ShinyRate())
	fmt.Fprintf(&b, "fallbacks:    %6d\n", r.Fallbacks)
	fmt.Fprintf(&b, "value total:  %d\n", r.TotalValue)
	fmt.Fprintf(&b, "value mean:   %.2f (sd %.2f)\n", r.MeanValue, r.StdDevValue)
	fmt.Fprintf(&b, "value median: %.0f, p90 %.0f\n", r.MedianValue, r.P90Value)
	fmt.Fprintf(&b, "stat total:   %.1f mean\n", r.MeanStats)
	_, err := io.WriteString(w, b.String())
	return err
}

// Row is one CSV line of the per-creature report.
type Row struct {
	Draw      int    `csv:"draw"`
	ID        string `csv:"id"`
	SpeciesID int    `csv:"pokedex_id"`
	Name      string `csv:"name"`
	Types     string `csv:"types"`
	Rarity    string `csv:"rarity"`
	Shiny     bool   `csv:"shiny"`
	StatTotal int    `csv:"stat_total"`
	Value     int    `csv:"resell_value"`
}

// Rows converts draws into CSV rows, numbered from 1.
func Rows(list []creature.Creature) []*Row {
	rows := make([]*Row, len(list))
	for i, c := range list {
		rows[i] = &Row{
			Draw:      i + 1,
			ID:        c.ID,
			SpeciesID: c.SpeciesID,
			Name:      c.Name,
			Types:     strings.Join(c.Types, "/"),
			Rarity:    string(c.Rarity),
			Shiny:     c.Shiny,
			StatTotal: c.Stats.Total(),
			Value:     creature.ResellValue(c),
		}
	}
	return rows
}

// WriteCSV writes one header line and one row per draw.
func WriteCSV(w io.Writer, list []creature.Creature) error {
	if err := gocsv.Marshal(Rows(list), w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
