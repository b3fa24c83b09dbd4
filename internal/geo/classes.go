package geo

import "fmt"

// CoverClass is an ESA WorldCover land-cover code.
type CoverClass uint8

const (
	CoverNoData     CoverClass = 0
	CoverTree       CoverClass = 10
	CoverShrubland  CoverClass = 20
	CoverGrassland  CoverClass = 30
	CoverCropland   CoverClass = 40
	CoverBuiltUp    CoverClass = 50
	CoverBare       CoverClass = 60
	CoverSnowIce    CoverClass = 70
	CoverWater      CoverClass = 80
	CoverWetland    CoverClass = 90
	CoverMangrove   CoverClass = 95
	CoverMossLichen CoverClass = 100
)

// MayHoldWater reports whether the class can carry surface water. No-data is
// included because ocean pixels are often left unclassified.
func (c CoverClass) MayHoldWater() bool {
	return c == CoverWater || c == CoverNoData || c == CoverMangrove
}

func (c CoverClass) String() string {
	switch c {
	case CoverNoData:
		return "no-data"
	case CoverTree:
		return "tree"
	case CoverShrubland:
		return "shrubland"
	case CoverGrassland:
		return "grassland"
	case CoverCropland:
		return "cropland"
	case CoverBuiltUp:
		return "built-up"
	case CoverBare:
		return "bare"
	case CoverSnowIce:
		return "snow-ice"
	case CoverWater:
		return "water"
	case CoverWetland:
		return "wetland"
	case CoverMangrove:
		return "mangrove"
	case CoverMossLichen:
		return "moss-lichen"
	default:
		return fmt.Sprintf("cover(%d)", uint8(c))
	}
}

// ClimateClass is a Köppen-Geiger group.
type ClimateClass uint8

const (
	ClimateUnknown ClimateClass = iota
	ClimateAf                   // tropical rainforest
	ClimateAm                   // tropical monsoon
	ClimateAw                   // tropical savanna
	ClimateBWh                  // hot desert
	ClimateBWk                  // cold desert
	ClimateBSh                  // hot steppe
	ClimateBSk                  // cold steppe
	ClimateCs                   // mediterranean
	ClimateCw                   // dry-winter temperate
	ClimateCf                   // humid temperate
	ClimateDs
	ClimateDw
	ClimateDf // humid continental / subarctic
	ClimateET // tundra
	ClimateEF // ice cap
)

var climateNames = [...]string{
	"unknown", "Af", "Am", "Aw", "BWh", "BWk", "BSh", "BSk",
	"Cs", "Cw", "Cf", "Ds", "Dw", "Df", "ET", "EF",
}

func (c ClimateClass) String() string {
	if int(c) < len(climateNames) {
		return climateNames[c]
	}
	return fmt.Sprintf("climate(%d)", uint8(c))
}

func (c ClimateClass) Tropical() bool { return c >= ClimateAf && c <= ClimateAw }
func (c ClimateClass) Arid() bool     { return c >= ClimateBWh && c <= ClimateBSk }
func (c ClimateClass) Desert() bool   { return c == ClimateBWh || c == ClimateBWk }
func (c ClimateClass) Temperate() bool {
	return c >= ClimateCs && c <= ClimateCf
}
func (c ClimateClass) Continental() bool { return c >= ClimateDs && c <= ClimateDf }
func (c ClimateClass) Polar() bool       { return c == ClimateET || c == ClimateEF }

// Classify derives a Köppen group from annual mean temperature (°C) and a
// normalised humidity in [0, 1].
func Classify(tempC, humidity float64) ClimateClass {
	switch {
	case tempC < -12:
		return ClimateEF
	case tempC < -2:
		return ClimateET
	}
	if humidity < 0.2 {
		if tempC >= 18 {
			return ClimateBWh
		}
		return ClimateBWk
	}
	if humidity < 0.35 {
		if tempC >= 18 {
			return ClimateBSh
		}
		return ClimateBSk
	}
	switch {
	case tempC >= 22:
		if humidity >= 0.7 {
			return ClimateAf
		}
		if humidity >= 0.55 {
			return ClimateAm
		}
		return ClimateAw
	case tempC >= 8:
		if humidity < 0.45 {
			return ClimateCs
		}
		if humidity < 0.55 {
			return ClimateCw
		}
		return ClimateCf
	default:
		if humidity < 0.45 {
			return ClimateDs
		}
		if humidity < 0.55 {
			return ClimateDw
		}
		return ClimateDf
	}
}
