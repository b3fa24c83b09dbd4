package world

// Sink receives finished columns for one LOD tile.
type Sink interface {
	// Width returns the number of data columns along each tile edge.
	Width() int
	// SetColumn stores an ordered, gap-free point stack. Implementations must
	// not retain points past the call.
	SetColumn(localX, localZ int, points []Point)
}

// SinkProvider creates sinks for tiles of a given width.
type SinkProvider interface {
	NewSink(width int) Sink
}

// SinkFunc adapts a constructor to SinkProvider.
type SinkFunc func(width int) Sink

func (f SinkFunc) NewSink(width int) Sink {
	return f(width)
}
