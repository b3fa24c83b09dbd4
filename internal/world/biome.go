package world

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// BiomeID names a biome, e.g. "plains" or "mangrove_swamp".
type BiomeID string

// BiomeTag is a bit set of classification tags.
type BiomeTag uint16

const (
	TagOcean BiomeTag = 1 << iota
	TagDeepOcean
	TagRiver
	TagBeach
	TagBadlands
	TagJungle
	TagForest
	TagTaiga
	TagSavanna
	TagSnowy
)

const (
	BiomePlains                 BiomeID = "plains"
	BiomeSunflowerPlains        BiomeID = "sunflower_plains"
	BiomeMeadow                 BiomeID = "meadow"
	BiomeDesert                 BiomeID = "desert"
	BiomeSwamp                  BiomeID = "swamp"
	BiomeMangroveSwamp          BiomeID = "mangrove_swamp"
	BiomeForest                 BiomeID = "forest"
	BiomeFlowerForest           BiomeID = "flower_forest"
	BiomeBirchForest            BiomeID = "birch_forest"
	BiomeDarkForest             BiomeID = "dark_forest"
	BiomeWindsweptForest        BiomeID = "windswept_forest"
	BiomeCherryGrove            BiomeID = "cherry_grove"
	BiomeTaiga                  BiomeID = "taiga"
	BiomeSnowyTaiga             BiomeID = "snowy_taiga"
	BiomeOldGrowthPineTaiga     BiomeID = "old_growth_pine_taiga"
	BiomeJungle                 BiomeID = "jungle"
	BiomeSparseJungle           BiomeID = "sparse_jungle"
	BiomeBambooJungle           BiomeID = "bamboo_jungle"
	BiomeSavanna                BiomeID = "savanna"
	BiomeSavannaPlateau         BiomeID = "savanna_plateau"
	BiomeWindsweptSavanna       BiomeID = "windswept_savanna"
	BiomeBadlands               BiomeID = "badlands"
	BiomeWoodedBadlands         BiomeID = "wooded_badlands"
	BiomeErodedBadlands         BiomeID = "eroded_badlands"
	BiomeSnowyPlains            BiomeID = "snowy_plains"
	BiomeIceSpikes              BiomeID = "ice_spikes"
	BiomeGrove                  BiomeID = "grove"
	BiomeSnowySlopes            BiomeID = "snowy_slopes"
	BiomeFrozenPeaks            BiomeID = "frozen_peaks"
	BiomeJaggedPeaks            BiomeID = "jagged_peaks"
	BiomeStonyPeaks             BiomeID = "stony_peaks"
	BiomeWindsweptGravellyHills BiomeID = "windswept_gravelly_hills"
	BiomeWindsweptHills         BiomeID = "windswept_hills"
	BiomeBeach                  BiomeID = "beach"
	BiomeSnowyBeach             BiomeID = "snowy_beach"
	BiomeStonyShore             BiomeID = "stony_shore"
	BiomeRiver                  BiomeID = "river"
	BiomeFrozenRiver            BiomeID = "frozen_river"
	BiomeOcean                  BiomeID = "ocean"
	BiomeDeepOcean              BiomeID = "deep_ocean"
	BiomeWarmOcean              BiomeID = "warm_ocean"
	BiomeLukewarmOcean          BiomeID = "lukewarm_ocean"
	BiomeDeepLukewarmOcean      BiomeID = "deep_lukewarm_ocean"
	BiomeColdOcean              BiomeID = "cold_ocean"
	BiomeDeepColdOcean          BiomeID = "deep_cold_ocean"
	BiomeFrozenOcean            BiomeID = "frozen_ocean"
	BiomeDeepFrozenOcean        BiomeID = "deep_frozen_ocean"
)

// Biome couples an identity with its classification tags.
type Biome struct {
	ID   BiomeID
	Tags BiomeTag
}

// Has reports whether every bit of tag is set.
func (b Biome) Has(tag BiomeTag) bool {
	return b.Tags&tag == tag
}

var biomeTable = map[BiomeID]BiomeTag{
	BiomePlains:                 0,
	BiomeSunflowerPlains:        0,
	BiomeMeadow:                 0,
	BiomeDesert:                 0,
	BiomeSwamp:                  0,
	BiomeMangroveSwamp:          0,
	BiomeForest:                 TagForest,
	BiomeFlowerForest:           TagForest,
	BiomeBirchForest:            TagForest,
	BiomeDarkForest:             TagForest,
	BiomeWindsweptForest:        TagForest,
	BiomeCherryGrove:            0,
	BiomeTaiga:                  TagTaiga,
	BiomeSnowyTaiga:             TagTaiga | TagSnowy,
	BiomeOldGrowthPineTaiga:     TagTaiga,
	BiomeJungle:                 TagJungle,
	BiomeSparseJungle:           TagJungle,
	BiomeBambooJungle:           TagJungle,
	BiomeSavanna:                TagSavanna,
	BiomeSavannaPlateau:         TagSavanna,
	BiomeWindsweptSavanna:       TagSavanna,
	BiomeBadlands:               TagBadlands,
	BiomeWoodedBadlands:         TagBadlands,
	BiomeErodedBadlands:         TagBadlands,
	BiomeSnowyPlains:            TagSnowy,
	BiomeIceSpikes:              TagSnowy,
	BiomeGrove:                  TagSnowy | TagForest,
	BiomeSnowySlopes:            TagSnowy,
	BiomeFrozenPeaks:            TagSnowy,
	BiomeJaggedPeaks:            TagSnowy,
	BiomeStonyPeaks:             0,
	BiomeWindsweptGravellyHills: 0,
	BiomeWindsweptHills:         0,
	BiomeBeach:                  TagBeach,
	BiomeSnowyBeach:             TagBeach | TagSnowy,
	BiomeStonyShore:             0,
	BiomeRiver:                  TagRiver,
	BiomeFrozenRiver:            TagRiver | TagSnowy,
	BiomeOcean:                  TagOcean,
	BiomeDeepOcean:              TagOcean | TagDeepOcean,
	BiomeWarmOcean:              TagOcean,
	BiomeLukewarmOcean:          TagOcean,
	BiomeDeepLukewarmOcean:      TagOcean | TagDeepOcean,
	BiomeColdOcean:              TagOcean,
	BiomeDeepColdOcean:          TagOcean | TagDeepOcean,
	BiomeFrozenOcean:            TagOcean | TagSnowy,
	BiomeDeepFrozenOcean:        TagOcean | TagDeepOcean | TagSnowy,
}

// LookupBiome returns the registered biome. Unknown identities come back
// untagged with ok == false.
func LookupBiome(id BiomeID) (Biome, bool) {
	tags, ok := biomeTable[id]
	return Biome{ID: id, Tags: tags}, ok
}

// KnownBiomes lists every registered biome identity in lexical order.
func KnownBiomes() []BiomeID {
	ids := make([]BiomeID, 0, len(biomeTable))
	for id := range biomeTable {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ResolveBiome maps a free-form name to a registered biome. Exact matches win;
// otherwise the closest identity within a small edit distance is returned
// with exact == false.
func ResolveBiome(name string) (id BiomeID, exact bool, err error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.TrimPrefix(normalized, "minecraft:")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if normalized == "" {
		return "", false, fmt.Errorf("empty biome name")
	}
	if _, ok := biomeTable[BiomeID(normalized)]; ok {
		return BiomeID(normalized), true, nil
	}

	best := BiomeID("")
	bestDist := -1
	for _, candidate := range KnownBiomes() {
		dist := levenshtein.ComputeDistance(normalized, string(candidate))
		if dist > nameDistanceLimit(len(candidate)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	if bestDist < 0 {
		return "", false, fmt.Errorf("unknown biome %q", name)
	}
	return best, false, nil
}

func nameDistanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
