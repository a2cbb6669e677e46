package render

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirAssets writes images into a directory next to the rendered file.
type DirAssets struct {
	// Dir is where files are written.
	Dir string

	// Prefix is prepended to the returned reference, usually the
	// directory name relative to the rendered document.
	Prefix string
}

// WriteAsset writes data to Dir/name and returns Prefix/name.
func (d DirAssets) WriteAsset(name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.Dir, name), data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write asset: %w", err)
	}
	if d.Prefix == "" {
		return name, nil
	}
	return d.Prefix + "/" + name, nil
}

// PendingAssets holds images in memory until Flush, so nothing reaches
// the disk when rendering fails halfway.
type PendingAssets struct {
	dir     DirAssets
	pending []pendingAsset
}

type pendingAsset struct {
	name string
	data []byte
}

// NewPendingAssets returns a writer that defers to dir on Flush.
func NewPendingAssets(dir DirAssets) *PendingAssets {
	return &PendingAssets{dir: dir}
}

// WriteAsset records data and returns the reference dir would return.
func (p *PendingAssets) WriteAsset(name string, data []byte) (string, error) {
	p.pending = append(p.pending, pendingAsset{name: name, data: data})
	if p.dir.Prefix == "" {
		return name, nil
	}
	return p.dir.Prefix + "/" + name, nil
}

// Flush writes every recorded image in order.
func (p *PendingAssets) Flush() error {
	for _, a := range p.pending {
		if _, err := p.dir.WriteAsset(a.name, a.data); err != nil {
			return err
		}
	}
	p.pending = nil
	return nil
}
