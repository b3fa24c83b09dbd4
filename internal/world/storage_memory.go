package world

import "sync"

// MemorySink keeps columns in memory, indexed row-major by local z then x.
type MemorySink struct {
	mu      sync.RWMutex
	width   int
	columns map[int][]Point
}

func NewMemorySink(width int) *MemorySink {
	return &MemorySink{
		width:   width,
		columns: make(map[int][]Point, width*width),
	}
}

// MemoryProvider hands out MemorySink instances.
var MemoryProvider = SinkFunc(func(width int) Sink { return NewMemorySink(width) })

func (m *MemorySink) Width() int {
	return m.width
}

func (m *MemorySink) index(localX, localZ int) int {
	return localZ*m.width + localX
}

func (m *MemorySink) SetColumn(localX, localZ int, points []Point) {
	dup := make([]Point, len(points))
	copy(dup, points)
	m.mu.Lock()
	m.columns[m.index(localX, localZ)] = dup
	m.mu.Unlock()
}

// Column returns a copy of the stored stack.
func (m *MemorySink) Column(localX, localZ int) ([]Point, bool) {
	m.mu.RLock()
	points, ok := m.columns[m.index(localX, localZ)]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	dup := make([]Point, len(points))
	copy(dup, points)
	return dup, true
}

// Len reports how many columns have been written.
func (m *MemorySink) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.columns)
}

// ForEach visits stored columns in unspecified order until fn returns false.
func (m *MemorySink) ForEach(fn func(localX, localZ int, points []Point) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for idx, points := range m.columns {
		dup := make([]Point, len(points))
		copy(dup, points)
		if !fn(idx%m.width, idx/m.width, dup) {
			break
		}
	}
}
