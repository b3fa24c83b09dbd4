package geo

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// DirLoader reads tiles laid out as <root>/<kind>/<tx>_<tz>.bin holding
// little-endian float32 pixels. A .bin.zst sibling is used when present.
type DirLoader struct {
	root string
	size int
}

func NewDirLoader(root string, tileSize int) *DirLoader {
	if tileSize <= 0 {
		tileSize = 256
	}
	return &DirLoader{root: root, size: tileSize}
}

// TilePath returns the uncompressed path for a tile.
func TilePath(root string, kind Kind, tx, tz int) string {
	return filepath.Join(root, kind.String(), fmt.Sprintf("%d_%d.bin", tx, tz))
}

func (d *DirLoader) LoadTile(ctx context.Context, kind Kind, tx, tz int) (*Tile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := TilePath(d.root, kind, tx, tz)

	var r io.Reader
	f, err := os.Open(path + ".zst")
	switch {
	case err == nil:
		defer f.Close()
		dec, derr := zstd.NewReader(f)
		if derr != nil {
			return nil, fmt.Errorf("open zstd tile %s: %w", path, derr)
		}
		defer dec.Close()
		r = dec
	case errors.Is(err, os.ErrNotExist):
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open tile: %w", err)
		}
		defer f.Close()
		r = f
	default:
		return nil, fmt.Errorf("open tile: %w", err)
	}

	data := make([]float32, d.size*d.size)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("read tile %s: %w", path, err)
	}
	return &Tile{Kind: kind, X: tx, Z: tz, Size: d.size, Data: data}, nil
}

// WriteTile stores a tile in the layout DirLoader expects, compressing it
// when compress is set.
func WriteTile(root string, t *Tile, compress bool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	path := TilePath(root, t.Kind, t.X, t.Z)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create tile dir: %w", err)
	}
	if compress {
		path += ".zst"
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tile: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if compress {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("create zstd writer: %w", err)
		}
		w = enc
	}
	if err := binary.Write(w, binary.LittleEndian, t.Data); err != nil {
		return fmt.Errorf("write tile %s: %w", path, err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("flush tile %s: %w", path, err)
		}
	}
	return nil
}
