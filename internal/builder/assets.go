package builder

import (
	"strconv"
	"strings"

	"github.com/aryamurray/roku-svelte/internal/irc"
	"github.com/aryamurray/roku-svelte/internal/logger"
	"github.com/aryamurray/roku-svelte/internal/parseradapter"
)

var fontExtensions = map[string]bool{".ttf": true, ".otf": true}
var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}
var mediaExtensions = map[string]bool{".mp4": true, ".mp3": true, ".m4v": true, ".wav": true}
var fatalFontExtensions = map[string]bool{".woff": true, ".woff2": true}

// applyPosterSrc resolves a poster-kind node's static src attribute per
// §4.3.5, recording an Asset declaration when the reference needs one.
func (c *Context) applyPosterSrc(attr parseradapter.Attribute, el *parseradapter.Element, node *irc.Node) {
	src := attr.StaticValue
	node.Properties = append(node.Properties, irc.Property{Name: "uri", Value: src})

	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "pkg:/") {
		return
	}
	if c.Options.FilePath == "" {
		return
	}

	ext := extensionOf(src)
	switch {
	case ext == ".svg":
		width, height := 512, 512
		sawSize := false
		for _, a := range el.Attributes {
			if a.Name == "width" {
				if n, err := strconv.Atoi(a.StaticValue); err == nil {
					width = n
					sawSize = true
				}
			}
			if a.Name == "height" {
				if n, err := strconv.Atoi(a.StaticValue); err == nil {
					height = n
					sawSize = true
				}
			}
		}
		if !sawSize {
			c.diag(nil, logger.CodeSVGRasterizeNoSize, "svg asset \""+src+"\" has no width/height, defaulting to 512x512")
		}
		c.Component.Assets = append(c.Component.Assets, irc.Asset{
			SourcePath: src, DestPath: rasterizedDestPath(src), PkgPath: "pkg:/images/" + rasterizedBaseName(src),
			Transform: irc.TransformRasterize, RasterizeWidth: width, RasterizeHeight: height,
		})
	case imageExtensions[ext]:
		c.Component.Assets = append(c.Component.Assets, irc.Asset{
			SourcePath: src, DestPath: "images/" + baseName(src), PkgPath: "pkg:/images/" + baseName(src),
			Transform: irc.TransformCopy,
		})
	case fontExtensions[ext]:
		c.Component.Assets = append(c.Component.Assets, irc.Asset{
			SourcePath: src, DestPath: "fonts/" + baseName(src), PkgPath: "pkg:/fonts/" + baseName(src),
			Transform: irc.TransformCopy,
		})
	case fatalFontExtensions[ext]:
		c.diag(nil, logger.CodeUnsupportedAssetFormat, "unsupported font format \""+ext+"\"")
	case mediaExtensions[ext]:
		c.diag(nil, logger.CodeUnsupportedAssetType, "media asset \""+src+"\" is referenced as-is and not packaged")
	}
}

func extensionOf(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(path[i:])
}

func baseName(path string) string {
	i := strings.LastIndexAny(path, "/\\")
	if i < 0 {
		return path
	}
	return path[i+1:]
}

func rasterizedBaseName(path string) string {
	name := baseName(path)
	return strings.TrimSuffix(name, extensionOf(name)) + ".png"
}

func rasterizedDestPath(path string) string {
	return "images/" + rasterizedBaseName(path)
}
