package world

import (
	"fmt"
	"sync"
)

// Registry translates materials and biomes into sink representations.
type Registry interface {
	BlockState(material Material) (BlockRef, error)
	Biome(id BiomeID) (BiomeRef, error)
	Air() BlockRef
}

// PaletteRegistry issues dense indices in first-seen order. Only materials with
// a registered appearance and biomes from the biome table are accepted.
type PaletteRegistry struct {
	mu     sync.Mutex
	blocks map[Material]BlockRef
	biomes map[BiomeID]BiomeRef
	air    BlockRef
}

func NewPaletteRegistry() *PaletteRegistry {
	r := &PaletteRegistry{
		blocks: make(map[Material]BlockRef, len(DefaultAppearances)),
		biomes: make(map[BiomeID]BiomeRef, len(biomeTable)),
	}
	r.air, _ = r.BlockState(MaterialAir)
	return r
}

func (r *PaletteRegistry) BlockState(material Material) (BlockRef, error) {
	if _, ok := DefaultAppearances[material]; !ok {
		return 0, fmt.Errorf("unknown block material %q", material)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref, ok := r.blocks[material]; ok {
		return ref, nil
	}
	ref := BlockRef(len(r.blocks))
	r.blocks[material] = ref
	return ref, nil
}

func (r *PaletteRegistry) Biome(id BiomeID) (BiomeRef, error) {
	if _, ok := biomeTable[id]; !ok {
		return 0, fmt.Errorf("unknown biome %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref, ok := r.biomes[id]; ok {
		return ref, nil
	}
	ref := BiomeRef(len(r.biomes))
	r.biomes[id] = ref
	return ref, nil
}

func (r *PaletteRegistry) Air() BlockRef {
	return r.air
}

// Material returns the material behind a block reference.
func (r *PaletteRegistry) Material(ref BlockRef) (Material, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for material, candidate := range r.blocks {
		if candidate == ref {
			return material, true
		}
	}
	return "", false
}
