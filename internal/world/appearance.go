package world

// Material names a block state the synthesizer can emit.
type Material string

// BlockAppearance captures visual styling for a block material.
type BlockAppearance struct {
	Material Material
	Color    string
	Texture  string
}

const (
	MaterialAir        Material = "air"
	MaterialWater      Material = "water"
	MaterialStone      Material = "stone"
	MaterialGrass      Material = "grass_block"
	MaterialDirt       Material = "dirt"
	MaterialMud        Material = "mud"
	MaterialSand       Material = "sand"
	MaterialRedSand    Material = "red_sand"
	MaterialSandstone  Material = "sandstone"
	MaterialGravel     Material = "gravel"
	MaterialClay       Material = "clay"
	MaterialSnowBlock  Material = "snow_block"
	MaterialTerracotta Material = "terracotta"

	MaterialOrangeTerracotta    Material = "orange_terracotta"
	MaterialYellowTerracotta    Material = "yellow_terracotta"
	MaterialBrownTerracotta     Material = "brown_terracotta"
	MaterialRedTerracotta       Material = "red_terracotta"
	MaterialWhiteTerracotta     Material = "white_terracotta"
	MaterialLightGrayTerracotta Material = "light_gray_terracotta"

	MaterialOakLeaves      Material = "oak_leaves"
	MaterialBirchLeaves    Material = "birch_leaves"
	MaterialSpruceLeaves   Material = "spruce_leaves"
	MaterialJungleLeaves   Material = "jungle_leaves"
	MaterialAcaciaLeaves   Material = "acacia_leaves"
	MaterialDarkOakLeaves  Material = "dark_oak_leaves"
	MaterialMangroveLeaves Material = "mangrove_leaves"
	MaterialCherryLeaves   Material = "cherry_leaves"

	MaterialOakLog      Material = "oak_log"
	MaterialBirchLog    Material = "birch_log"
	MaterialSpruceLog   Material = "spruce_log"
	MaterialJungleLog   Material = "jungle_log"
	MaterialAcaciaLog   Material = "acacia_log"
	MaterialDarkOakLog  Material = "dark_oak_log"
	MaterialMangroveLog Material = "mangrove_log"
	MaterialCherryLog   Material = "cherry_log"

	MaterialKelp     Material = "kelp_plant"
	MaterialSeagrass Material = "seagrass"
)

// DefaultAppearances enumerates the built-in block visuals.
var DefaultAppearances = map[Material]BlockAppearance{
	MaterialAir:        {Color: "#00000000"},
	MaterialWater:      {Color: "#3f76e4", Texture: "assets/textures/water.png"},
	MaterialStone:      {Color: "#7d7d7d", Texture: "assets/textures/stone.png"},
	MaterialGrass:      {Color: "#5d9b3d", Texture: "assets/textures/grass.png"},
	MaterialDirt:       {Color: "#8b5a2b", Texture: "assets/textures/dirt.png"},
	MaterialMud:        {Color: "#3c3837", Texture: "assets/textures/mud.png"},
	MaterialSand:       {Color: "#dbd3a0", Texture: "assets/textures/sand.png"},
	MaterialRedSand:    {Color: "#be6621", Texture: "assets/textures/red_sand.png"},
	MaterialSandstone:  {Color: "#d8cb9b", Texture: "assets/textures/sandstone.png"},
	MaterialGravel:     {Color: "#837f7e", Texture: "assets/textures/gravel.png"},
	MaterialClay:       {Color: "#a0a6b3", Texture: "assets/textures/clay.png"},
	MaterialSnowBlock:  {Color: "#f9fefe", Texture: "assets/textures/snow.png"},
	MaterialTerracotta: {Color: "#985e43", Texture: "assets/textures/terracotta.png"},

	MaterialOrangeTerracotta:    {Color: "#a15325"},
	MaterialYellowTerracotta:    {Color: "#ba8523"},
	MaterialBrownTerracotta:     {Color: "#4d3323"},
	MaterialRedTerracotta:       {Color: "#8f3d2e"},
	MaterialWhiteTerracotta:     {Color: "#d1b2a1"},
	MaterialLightGrayTerracotta: {Color: "#876a61"},

	MaterialOakLeaves:      {Color: "#48b518"},
	MaterialBirchLeaves:    {Color: "#80a755"},
	MaterialSpruceLeaves:   {Color: "#619961"},
	MaterialJungleLeaves:   {Color: "#30bb0b"},
	MaterialAcaciaLeaves:   {Color: "#aea42a"},
	MaterialDarkOakLeaves:  {Color: "#3b6b1f"},
	MaterialMangroveLeaves: {Color: "#8db127"},
	MaterialCherryLeaves:   {Color: "#e5a7c4"},

	MaterialOakLog:      {Color: "#6d5533"},
	MaterialBirchLog:    {Color: "#d8d7d2"},
	MaterialSpruceLog:   {Color: "#3a2a1a"},
	MaterialJungleLog:   {Color: "#564419"},
	MaterialAcaciaLog:   {Color: "#676157"},
	MaterialDarkOakLog:  {Color: "#3c2e1a"},
	MaterialMangroveLog: {Color: "#544029"},
	MaterialCherryLog:   {Color: "#36212a"},

	MaterialKelp:     {Color: "#5a8a2e"},
	MaterialSeagrass: {Color: "#3f9b2f"},
}

// LookupAppearance returns the known appearance for the provided material. The
// boolean is false when the material has no registered visuals.
func LookupAppearance(material Material) (BlockAppearance, bool) {
	preset, ok := DefaultAppearances[material]
	if !ok {
		return BlockAppearance{}, false
	}
	preset.Material = material
	return preset, true
}
