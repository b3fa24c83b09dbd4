package terrain

import (
	"math"
	"sync"
	"testing"

	"earthlod/internal/world"
)

func TestCanopyGridSize(t *testing.T) {
	tests := []struct {
		cellSize int
		want     int
	}{
		{cellSize: 1, want: 7},
		{cellSize: 4, want: 7},
		{cellSize: 16, want: 10},
		{cellSize: 64, want: 16},
		{cellSize: 1024, want: 24},
	}
	for _, tt := range tests {
		if got := canopyGridSize(tt.cellSize); got != tt.want {
			t.Fatalf("canopyGridSize(%d) = %d, want %d", tt.cellSize, got, tt.want)
		}
	}
}

func TestCanopyCenterFrequency(t *testing.T) {
	p := NewCanopyProfile(world.BiomeWoodedBadlands)
	if p.BaseChance != 40 {
		t.Fatalf("wooded badlands chance: got %d want 40", p.BaseChance)
	}
	chance := boostedChance(p.BaseChance)
	if chance != 60 {
		t.Fatalf("boosted chance: got %d want 60", chance)
	}

	hits := 0
	const side = 100
	for gx := 0; gx < side; gx++ {
		for gz := 0; gz < side; gz++ {
			if hitsChance(mixHash(gx, gz, canopySalt), chance) {
				hits++
			}
		}
	}
	got := float64(hits) / (side * side)
	if math.Abs(got-float64(chance)/100) > 0.03 {
		t.Fatalf("center frequency %.4f too far from %d%%", got, chance)
	}
}

func TestResolveCanopyShapes(t *testing.T) {
	p := NewCanopyProfile(world.BiomeForest)
	centers, edges := 0, 0
	for x := -100; x < 100; x++ {
		for z := -100; z < 100; z++ {
			col, ok := ResolveCanopy(x, z, &p, 1)
			if !ok {
				continue
			}
			if col.Leaves != world.MaterialOakLeaves && col.Leaves != world.MaterialBirchLeaves {
				t.Fatalf("unexpected forest leaves %s", col.Leaves)
			}
			if col.LeavesHeight < 1 || col.LeavesHeight > p.MaxHeight {
				t.Fatalf("leaves height %d outside [1,%d]", col.LeavesHeight, p.MaxHeight)
			}
			if col.Trunk != "" {
				centers++
				if col.TrunkHeight < 3 || col.TrunkHeight > 5 || col.LeafLift != 0 {
					t.Fatalf("center column %+v", col)
				}
				continue
			}
			edges++
			if col.TrunkHeight != 0 || col.LeafLift < 1 {
				t.Fatalf("edge column %+v", col)
			}
		}
	}
	if centers == 0 || edges == 0 {
		t.Fatalf("expected both centers and edges, got %d/%d", centers, edges)
	}

	plains := NewCanopyProfile(world.BiomePlains)
	if _, ok := ResolveCanopy(0, 0, &plains, 1); ok {
		t.Fatalf("plains should never grow canopy")
	}
}

func TestTrunkHeightRanges(t *testing.T) {
	mangrove := NewCanopyProfile(world.BiomeMangroveSwamp)
	jungle := NewCanopyProfile(world.BiomeJungle)
	for i := 0; i < 2000; i++ {
		h := mixHash(i, -i, canopySalt)
		if got := trunkHeight(&mangrove, h); got < 6 || got > 9 {
			t.Fatalf("mangrove trunk %d out of range", got)
		}
		got := trunkHeight(&jungle, h)
		if !(got >= 10 && got <= 12) && !(got >= 18 && got <= 20) {
			t.Fatalf("jungle trunk %d out of range", got)
		}
	}
}

func TestProfileTableMemoizes(t *testing.T) {
	table := &ProfileTable{}
	var wg sync.WaitGroup
	results := make([]*CanopyProfile, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = table.Lookup(world.BiomeMangroveSwamp)
		}(i)
	}
	wg.Wait()
	for _, p := range results[1:] {
		if p != results[0] {
			t.Fatalf("lookups returned different profiles")
		}
	}
	if table.Len() != 1 {
		t.Fatalf("expected one cached profile, got %d", table.Len())
	}

	p := results[0]
	if !p.Mangrove || p.BaseChance != 85 || p.BaseRadius != 5 || p.BaseHeight != 4 || p.MaxHeight != 5 || p.WaterVegetationChance != 17 {
		t.Fatalf("unexpected mangrove profile %+v", *p)
	}
	taiga := table.Lookup(world.BiomeTaiga)
	if taiga.BaseChance != 65 || taiga.BaseHeight != 3 || taiga.MaxHeight != 4 {
		t.Fatalf("unexpected taiga profile %+v", *taiga)
	}
}

func TestWaterVegetation(t *testing.T) {
	ocean := NewCanopyProfile(world.BiomeOcean)
	river := NewCanopyProfile(world.BiomeRiver)

	if _, ok := ResolveWaterVegetation(0, 0, 0, &ocean); ok {
		t.Fatalf("no vegetation without depth")
	}

	shallow := 0
	for x := 0; x < 200; x++ {
		veg, ok := ResolveWaterVegetation(x, 0, 1, &ocean)
		if !ok {
			continue
		}
		shallow++
		// One block of water still holds a single-block plant.
		if veg.Height != 1 || veg.Material == world.MaterialKelp {
			t.Fatalf("depth 1 plant at x=%d: %+v", x, veg)
		}
	}
	if shallow == 0 {
		t.Fatalf("expected plants in one-block-deep water")
	}

	kelp, seagrass := 0, 0
	for x := 0; x < 200; x++ {
		for z := 0; z < 50; z++ {
			for _, depth := range []int{2, 10} {
				veg, ok := ResolveWaterVegetation(x, z, depth, &ocean)
				if !ok {
					continue
				}
				if veg.Height < 1 || veg.Height > min(waterVegetationMaxHeight, depth-1) {
					t.Fatalf("height %d invalid for depth %d", veg.Height, depth)
				}
				switch veg.Material {
				case world.MaterialKelp:
					kelp++
					if depth < kelpMinDepth {
						t.Fatalf("kelp in shallow water")
					}
				case world.MaterialSeagrass:
					seagrass++
				}
			}
			if veg, ok := ResolveWaterVegetation(x, z, 10, &river); ok && veg.Material == world.MaterialKelp {
				t.Fatalf("kelp must not grow in rivers")
			}
		}
	}
	if kelp == 0 || seagrass == 0 {
		t.Fatalf("expected both kelp and seagrass, got %d/%d", kelp, seagrass)
	}
}

func TestPaletteFor(t *testing.T) {
	tests := []struct {
		biome world.BiomeID
		want  SurfacePalette
	}{
		{world.BiomePlains, grassPalette},
		{world.BiomeDesert, desertPalette},
		{world.BiomeMangroveSwamp, mangrovePalette},
		{world.BiomeSnowyPlains, snowyPalette},
		{world.BiomeErodedBadlands, badlandsPalette},
	}
	for _, tt := range tests {
		p := NewCanopyProfile(tt.biome)
		if got := PaletteFor(&p, 3, 4); got != tt.want {
			t.Fatalf("%s: got %+v want %+v", tt.biome, got, tt.want)
		}
	}

	ocean := NewCanopyProfile(world.BiomeOcean)
	seen := map[world.Material]bool{}
	for x := 0; x < 500; x++ {
		seen[PaletteFor(&ocean, x, x*7).Top] = true
	}
	for _, m := range []world.Material{world.MaterialSand, world.MaterialGravel, world.MaterialClay} {
		if !seen[m] {
			t.Fatalf("ocean floor never produced %s", m)
		}
	}
}
