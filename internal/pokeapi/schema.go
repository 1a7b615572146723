package pokeapi

// NamedResource is a PokeAPI reference to another resource.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// StatEntry is one element of the pokemon "stats" list.
type StatEntry struct {
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
	Stat     NamedResource `json:"stat"`
}

// TypeEntry is one element of the pokemon "types" list.
type TypeEntry struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// Artwork holds one family of image references. Nil fields are absent in the payload.
type Artwork struct {
	FrontDefault *string `json:"front_default"`
	FrontShiny   *string `json:"front_shiny"`
}

// Sprites holds the sprite sheet and the nested artwork variants.
type Sprites struct {
	FrontDefault *string `json:"front_default"`
	FrontShiny   *string `json:"front_shiny"`
	Other        struct {
		OfficialArtwork Artwork `json:"official-artwork"`
	} `json:"other"`
}

// Pokemon is the subset of the /pokemon/{id} response the engine consumes.
//
// Required: Name, Types, Stats. Optional: BaseExperience and every sprite.
type Pokemon struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	BaseExperience *int        `json:"base_experience"`
	Stats          []StatEntry `json:"stats"`
	Types          []TypeEntry `json:"types"`
	Sprites        Sprites     `json:"sprites"`
}

// BaseStat returns the base value of the named stat and whether it was present.
func (p Pokemon) BaseStat(name string) (int, bool) {
	for _, s := range p.Stats {
		if s.Stat.Name == name {
			return s.BaseStat, true
		}
	}
	return 0, false
}

// TypeNames returns the type names in payload order.
func (p Pokemon) TypeNames() []string {
	out := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		out = append(out, t.Type.Name)
	}
	return out
}

// StandardImage returns the official artwork, falling back to the default sprite.
// Returns "" when neither is present.
func (p Pokemon) StandardImage() string {
	if u := deref(p.Sprites.Other.OfficialArtwork.FrontDefault); u != "" {
		return u
	}
	return deref(p.Sprites.FrontDefault)
}

// ShinyImage returns the shiny official artwork, then the shiny sprite, then StandardImage.
func (p Pokemon) ShinyImage() string {
	if u := deref(p.Sprites.Other.OfficialArtwork.FrontShiny); u != "" {
		return u
	}
	if u := deref(p.Sprites.FrontShiny); u != "" {
		return u
	}
	return p.StandardImage()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
