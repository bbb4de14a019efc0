// Package manifest emits the target package's manifest file: a fixed
// sequence of key=value lines, independent of any single component
// compile.
package manifest

import (
	"fmt"
	"strings"
)

// Options configures one manifest; zero-value fields fall back to the
// documented defaults.
type Options struct {
	Title         string
	MajorVersion  string
	MinorVersion  string
	BuildVersion  string
	UIResolutions string
}

// Emit renders the manifest body in the fixed key order the target
// packager requires: title, major_version, minor_version,
// build_version, ui_resolutions.
func Emit(opts Options) string {
	title := opts.Title
	if title == "" {
		title = "Dev Channel"
	}
	major := opts.MajorVersion
	if major == "" {
		major = "1"
	}
	minor := opts.MinorVersion
	if minor == "" {
		minor = "0"
	}
	build := opts.BuildVersion
	if build == "" {
		build = "0"
	}
	res := opts.UIResolutions
	if res == "" {
		res = "fhd"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "title=%s\n", title)
	fmt.Fprintf(&b, "major_version=%s\n", major)
	fmt.Fprintf(&b, "minor_version=%s\n", minor)
	fmt.Fprintf(&b, "build_version=%s\n", build)
	fmt.Fprintf(&b, "ui_resolutions=%s\n", res)
	return b.String()
}
