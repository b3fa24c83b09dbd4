package terrain

import (
	"sync"

	"earthlod/internal/world"
)

// CanopyProfile holds the vegetation parameters derived from a biome. A
// profile is computed once per biome and never mutated afterwards.
type CanopyProfile struct {
	Biome world.BiomeID

	Mangrove          bool
	DarkForest        bool
	BambooJungle      bool
	SparseJungle      bool
	WindsweptForest   bool
	WoodedBadlands    bool
	WindsweptSavanna  bool
	SavannaPlateau    bool
	CherryGrove       bool
	Swamp             bool
	Jungle            bool
	Forest            bool
	Taiga             bool
	Savanna           bool
	Ocean             bool
	River             bool
	WarmOcean         bool
	LukewarmOcean     bool
	DeepLukewarmOcean bool
	Badlands          bool

	// Percentages and block counts.
	BaseChance            int
	BaseRadius            int
	BaseHeight            int
	MaxHeight             int
	WaterVegetationChance int
}

// TallCanopy reports biomes whose crowns sit higher above the trunk.
func (p *CanopyProfile) TallCanopy() bool {
	return p.Mangrove || p.DarkForest || p.Jungle
}

// NewCanopyProfile classifies a biome and derives its parameters.
func NewCanopyProfile(id world.BiomeID) CanopyProfile {
	biome, _ := world.LookupBiome(id)
	p := CanopyProfile{
		Biome:             id,
		Mangrove:          id == world.BiomeMangroveSwamp,
		DarkForest:        id == world.BiomeDarkForest,
		BambooJungle:      id == world.BiomeBambooJungle,
		SparseJungle:      id == world.BiomeSparseJungle,
		WindsweptForest:   id == world.BiomeWindsweptForest,
		WoodedBadlands:    id == world.BiomeWoodedBadlands,
		WindsweptSavanna:  id == world.BiomeWindsweptSavanna,
		SavannaPlateau:    id == world.BiomeSavannaPlateau,
		CherryGrove:       id == world.BiomeCherryGrove,
		Swamp:             id == world.BiomeSwamp,
		Jungle:            biome.Has(world.TagJungle),
		Forest:            biome.Has(world.TagForest),
		Taiga:             biome.Has(world.TagTaiga),
		Savanna:           biome.Has(world.TagSavanna),
		Ocean:             biome.Has(world.TagOcean),
		River:             biome.Has(world.TagRiver),
		WarmOcean:         id == world.BiomeWarmOcean,
		LukewarmOcean:     id == world.BiomeLukewarmOcean,
		DeepLukewarmOcean: id == world.BiomeDeepLukewarmOcean,
		Badlands:          biome.Has(world.TagBadlands),
	}
	p.BaseChance = p.canopyChance()
	p.BaseRadius = p.canopyRadius()
	p.BaseHeight = p.canopyBaseHeight()
	p.MaxHeight = p.canopyMaxHeight()
	p.WaterVegetationChance = p.waterVegetationChance()
	return p
}

func (p *CanopyProfile) canopyChance() int {
	switch {
	case p.Mangrove:
		return 85
	case p.DarkForest:
		return 80
	case p.BambooJungle:
		return 75
	case p.SparseJungle:
		return 50
	case p.WindsweptForest:
		return 45
	case p.WoodedBadlands:
		return 40
	case p.WindsweptSavanna:
		return 35
	case p.SavannaPlateau:
		return 45
	case p.Jungle:
		return 75
	case p.Forest:
		return 70
	case p.Taiga:
		return 65
	case p.CherryGrove:
		return 60
	case p.Swamp:
		return 55
	case p.Savanna:
		return 50
	default:
		return 0
	}
}

func (p *CanopyProfile) canopyRadius() int {
	switch {
	case p.Mangrove:
		return 5
	case p.SparseJungle:
		return 3
	case p.BambooJungle:
		return 4
	case p.Jungle:
		return 5
	case p.DarkForest:
		return 4
	case p.WindsweptForest, p.WoodedBadlands:
		return 2
	case p.WindsweptSavanna, p.SavannaPlateau:
		return 2
	case p.Forest, p.Taiga, p.CherryGrove, p.Swamp:
		return 3
	case p.Savanna:
		return 2
	default:
		return 0
	}
}

func (p *CanopyProfile) canopyBaseHeight() int {
	switch {
	case p.Mangrove, p.Jungle:
		return 4
	case p.TallCanopy(), p.Taiga:
		return 3
	default:
		return 2
	}
}

func (p *CanopyProfile) canopyMaxHeight() int {
	switch {
	case p.Mangrove, p.Jungle:
		return 5
	case p.TallCanopy(), p.Taiga:
		return 4
	default:
		return 3
	}
}

func (p *CanopyProfile) waterVegetationChance() int {
	switch {
	case p.WarmOcean, p.LukewarmOcean:
		return 19
	case p.DeepLukewarmOcean:
		return 18
	case p.Mangrove:
		return 17
	case p.Swamp:
		return 14
	case p.Ocean:
		return 15
	case p.River:
		return 12
	default:
		return 10
	}
}

// ProfileTable memoizes canopy profiles by biome. Concurrent first lookups
// of the same biome may compute the profile more than once; the first
// stored value wins.
type ProfileTable struct {
	profiles sync.Map
}

// Profiles is the process-wide profile table.
var Profiles = &ProfileTable{}

// Lookup returns the cached profile for id, computing it on first use.
func (t *ProfileTable) Lookup(id world.BiomeID) *CanopyProfile {
	if cached, ok := t.profiles.Load(id); ok {
		return cached.(*CanopyProfile)
	}
	profile := NewCanopyProfile(id)
	actual, _ := t.profiles.LoadOrStore(id, &profile)
	return actual.(*CanopyProfile)
}

// Len returns the number of cached profiles.
func (t *ProfileTable) Len() int {
	n := 0
	t.profiles.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
