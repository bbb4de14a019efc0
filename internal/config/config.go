// Package config holds the knobs a single compile call is parameterized
// by. It is a plain struct-of-options, the same shape as esbuild's
// internal/config.Options, trimmed to the three knobs this compiler's
// contract actually exposes.
package config

// Resolution is the target screen resolution used to resolve CSS units
// (vh/vw/%) during inline style parsing.
type Resolution struct {
	Width  int
	Height int
}

// Options mirrors the "Compile call contract" in the external interfaces
// section: IsEntry selects Scene vs Group base type, Resolution is used
// for CSS unit resolution, and FilePath enables (when non-empty) asset
// reference resolution.
type Options struct {
	IsEntry    bool
	Resolution Resolution
	FilePath   string
}

// DefaultResolution is used when Options.Resolution is the zero value,
// matching the manifest emitter's "fhd" default.
var DefaultResolution = Resolution{Width: 1920, Height: 1080}

func (o Options) ResolutionOrDefault() Resolution {
	if o.Resolution.Width == 0 || o.Resolution.Height == 0 {
		return DefaultResolution
	}
	return o.Resolution
}
