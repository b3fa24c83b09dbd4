package weather

// SnowGrid records which cells of a coarse grid carry historical snow. Cells
// are spacing blocks wide and centered on (centerX, centerZ). A SnowGrid is
// never mutated after construction.
type SnowGrid struct {
	centerX int
	centerZ int
	spacing int
	cells   map[[2]int]struct{}
}

// NewSnowGrid builds a grid from cell indices relative to the center cell.
func NewSnowGrid(centerX, centerZ, spacing int, cells [][2]int) *SnowGrid {
	g := &SnowGrid{
		centerX: centerX,
		centerZ: centerZ,
		spacing: spacing,
		cells:   make(map[[2]int]struct{}, len(cells)),
	}
	for _, c := range cells {
		g.cells[c] = struct{}{}
	}
	return g
}

// EmptySnowGrid never reports snow.
func EmptySnowGrid() *SnowGrid {
	return &SnowGrid{}
}

// Cell returns the grid index that contains a block coordinate.
func (g *SnowGrid) Cell(x, z int) [2]int {
	half := g.spacing / 2
	return [2]int{
		floorDiv(x-g.centerX+half, g.spacing),
		floorDiv(z-g.centerZ+half, g.spacing),
	}
}

func (g *SnowGrid) ShouldApplySnow(x, z int) bool {
	if g == nil || g.spacing <= 0 || len(g.cells) == 0 {
		return false
	}
	_, ok := g.cells[g.Cell(x, z)]
	return ok
}

// Len returns the number of snowy cells.
func (g *SnowGrid) Len() int {
	if g == nil {
		return 0
	}
	return len(g.cells)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
