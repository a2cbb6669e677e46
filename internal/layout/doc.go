// Package layout defines the renderer-agnostic instruction stream that the
// codebook assembler produces.
//
// A Document is a flat, ordered list of Instructions. It carries every byte
// a renderer needs (including image data), so a renderer replays it from
// start to finish without ever calling back into the engine.
package layout
