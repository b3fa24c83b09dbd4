package biomes

import (
	"earthlod/internal/config"
	"earthlod/internal/geo"
	"earthlod/internal/world"
)

// Sampler is the subset of the geo layer a biome source reads.
type Sampler interface {
	SampleElevation(x, z int, worldScale float64) float64
	SampleCoverClass(x, z int, worldScale float64) geo.CoverClass
	SampleClimateClass(x, z int, worldScale float64) geo.ClimateClass
}

// Source assigns a biome to every block column from land cover, climate
// and elevation.
type Source struct {
	src        Sampler
	worldScale float64
}

func NewSource(src Sampler, cfg config.WorldConfig) *Source {
	return &Source{src: src, worldScale: cfg.WorldScale}
}

// BiomeAt samples the rasters and selects a biome.
func (s *Source) BiomeAt(x, z int) world.BiomeID {
	cover := s.src.SampleCoverClass(x, z, s.worldScale)
	return s.BiomeWithCover(x, z, cover)
}

// BiomeWithCover selects a biome for a column whose cover class is already
// known.
func (s *Source) BiomeWithCover(x, z int, cover geo.CoverClass) world.BiomeID {
	climate := s.src.SampleClimateClass(x, z, s.worldScale)
	elevation := s.src.SampleElevation(x, z, s.worldScale)
	return Select(cover, climate, elevation)
}

const (
	deepOceanMeters  = -1000.0
	beachMaxMeters   = 3.0
	plateauMeters    = 700.0
	highlandMeters   = 1200.0
	meadowMeters     = 1400.0
	alpineMeters     = 2500.0
	jaggedPeakMeters = 3200.0
)

// Select maps cover class, climate class and elevation (meters) to a biome.
func Select(cover geo.CoverClass, climate geo.ClimateClass, elevation float64) world.BiomeID {
	switch cover {
	case geo.CoverWater, geo.CoverNoData:
		if elevation <= 0 {
			return ocean(climate, elevation < deepOceanMeters)
		}
		if cover == geo.CoverWater {
			if climate.Polar() {
				return world.BiomeFrozenRiver
			}
			return world.BiomeRiver
		}
	case geo.CoverMangrove:
		return world.BiomeMangroveSwamp
	case geo.CoverWetland:
		if climate.Tropical() {
			return world.BiomeMangroveSwamp
		}
		return world.BiomeSwamp
	}

	if elevation >= jaggedPeakMeters {
		if climate.Polar() || climate.Continental() {
			return world.BiomeJaggedPeaks
		}
		return world.BiomeStonyPeaks
	}
	if elevation > 0 && elevation <= beachMaxMeters && cover != geo.CoverTree {
		switch {
		case climate.Polar():
			return world.BiomeSnowyBeach
		case cover == geo.CoverBare:
			return world.BiomeStonyShore
		default:
			return world.BiomeBeach
		}
	}

	switch cover {
	case geo.CoverSnowIce:
		if elevation >= alpineMeters {
			return world.BiomeFrozenPeaks
		}
		if climate == geo.ClimateEF {
			return world.BiomeIceSpikes
		}
		return world.BiomeSnowyPlains
	case geo.CoverMossLichen:
		if elevation >= meadowMeters {
			return world.BiomeSnowySlopes
		}
		return world.BiomeSnowyPlains
	case geo.CoverBare:
		switch {
		case elevation >= alpineMeters:
			return world.BiomeStonyPeaks
		case climate.Arid() && elevation >= plateauMeters:
			return world.BiomeBadlands
		case climate == geo.ClimateBWk:
			return world.BiomeErodedBadlands
		case climate.Arid():
			return world.BiomeDesert
		case elevation >= highlandMeters:
			return world.BiomeWindsweptGravellyHills
		default:
			return world.BiomeStonyShore
		}
	case geo.CoverTree:
		return forest(climate, elevation)
	case geo.CoverShrubland:
		switch {
		case climate.Arid() && elevation >= plateauMeters:
			return world.BiomeSavannaPlateau
		case climate.Arid() || climate == geo.ClimateAw:
			return world.BiomeSavanna
		case elevation >= highlandMeters:
			return world.BiomeWindsweptSavanna
		case climate.Polar():
			return world.BiomeSnowyPlains
		default:
			return world.BiomePlains
		}
	}

	// Grassland, cropland, built-up and anything unclassified.
	switch {
	case climate.Polar():
		return world.BiomeSnowyPlains
	case elevation >= alpineMeters:
		return world.BiomeGrove
	case elevation >= meadowMeters:
		return world.BiomeMeadow
	case climate.Desert():
		return world.BiomeDesert
	case climate == geo.ClimateAw || climate == geo.ClimateBSh:
		return world.BiomeSavanna
	case cover == geo.CoverCropland:
		return world.BiomeSunflowerPlains
	default:
		return world.BiomePlains
	}
}

func ocean(climate geo.ClimateClass, deep bool) world.BiomeID {
	switch {
	case climate.Tropical():
		if deep {
			return world.BiomeDeepLukewarmOcean
		}
		return world.BiomeWarmOcean
	case climate.Arid():
		if deep {
			return world.BiomeDeepLukewarmOcean
		}
		return world.BiomeLukewarmOcean
	case climate.Continental():
		if deep {
			return world.BiomeDeepColdOcean
		}
		return world.BiomeColdOcean
	case climate.Polar():
		if deep {
			return world.BiomeDeepFrozenOcean
		}
		return world.BiomeFrozenOcean
	default:
		if deep {
			return world.BiomeDeepOcean
		}
		return world.BiomeOcean
	}
}

func forest(climate geo.ClimateClass, elevation float64) world.BiomeID {
	switch climate {
	case geo.ClimateAf:
		if elevation >= plateauMeters {
			return world.BiomeBambooJungle
		}
		return world.BiomeJungle
	case geo.ClimateAm:
		return world.BiomeSparseJungle
	case geo.ClimateAw:
		return world.BiomeSavanna
	case geo.ClimateBWh, geo.ClimateBWk, geo.ClimateBSh, geo.ClimateBSk:
		return world.BiomeWoodedBadlands
	case geo.ClimateCs:
		if elevation >= plateauMeters {
			return world.BiomeCherryGrove
		}
		return world.BiomeFlowerForest
	case geo.ClimateCw:
		return world.BiomeDarkForest
	case geo.ClimateCf:
		if elevation >= plateauMeters {
			return world.BiomeBirchForest
		}
		return world.BiomeForest
	case geo.ClimateDs, geo.ClimateDw:
		return world.BiomeTaiga
	case geo.ClimateDf:
		if elevation >= highlandMeters {
			return world.BiomeWindsweptForest
		}
		return world.BiomeOldGrowthPineTaiga
	case geo.ClimateET, geo.ClimateEF:
		return world.BiomeSnowyTaiga
	default:
		return world.BiomeForest
	}
}
