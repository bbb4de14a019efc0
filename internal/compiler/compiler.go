// Package compiler is the single entry point the external CLI (and any
// future build-tool plugin) calls: parseradapter -> validator ->
// builder -> xmlemit/brsemit, short-circuiting after any pass that
// leaves a fatal diagnostic in the log, per the compile call contract.
package compiler

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/aryamurray/roku-svelte/internal/brsemit"
	"github.com/aryamurray/roku-svelte/internal/builder"
	"github.com/aryamurray/roku-svelte/internal/config"
	"github.com/aryamurray/roku-svelte/internal/irc"
	"github.com/aryamurray/roku-svelte/internal/logger"
	"github.com/aryamurray/roku-svelte/internal/parseradapter"
	"github.com/aryamurray/roku-svelte/internal/polyfill"
	"github.com/aryamurray/roku-svelte/internal/validator"
	"github.com/aryamurray/roku-svelte/internal/xmlemit"
)

// AdditionalComponent is one {#each} body's sibling artifact, named and
// emitted alongside the main component.
type AdditionalComponent struct {
	Name         string
	XML          string
	BrightScript string
}

// Result is the compile call's full output.
type Result struct {
	XML                  string
	BrightScript         string
	Warnings             []logger.Msg
	Errors               []logger.Msg
	Assets               []irc.Asset
	AdditionalComponents []AdditionalComponent
	RequiresRuntime      bool
	RequiresStdlib       bool
	RequiredPolyfills    []string
}

// Compile runs the full pipeline for one component source file.
func Compile(sourceText, filename string, opts config.Options) Result {
	source := []byte(sourceText)

	file, parseErr := parseradapter.Parse(source, filename)
	if parseErr != nil {
		return Result{Errors: []logger.Msg{*parseErr}}
	}

	vlog := validator.Validate(file, sourceText, filename)
	if vlog.HasFatal() {
		return finalize(nil, vlog)
	}

	comp, blog := builder.Build(file, filename, sourceText, opts)
	merged := mergeLogs(vlog, blog)
	if merged.HasFatal() {
		return finalize(nil, merged)
	}

	return finalize(comp, merged)
}

func mergeLogs(a, b *logger.Log) *logger.Log {
	out := logger.NewLog()
	for _, m := range a.Msgs() {
		out.Add(m)
	}
	for _, m := range b.Msgs() {
		out.Add(m)
	}
	return out
}

func finalize(comp *irc.Component, log *logger.Log) Result {
	res := Result{
		Warnings: log.Warnings(),
		Errors:   log.Errors(),
	}
	if comp == nil || log.HasFatal() {
		return res
	}

	res.Assets = comp.Assets
	res.RequiresRuntime = comp.RequiresRuntime
	res.RequiresStdlib = comp.RequiresStdlib
	for key := range comp.RequiredPolyfills {
		res.RequiredPolyfills = append(res.RequiredPolyfills, key)
	}
	sort.Strings(res.RequiredPolyfills)

	scripts := scriptRefs(comp)
	res.XML = xmlemit.Emit(comp, scripts)
	res.BrightScript = brsemit.Emit(comp)

	for _, eb := range comp.EachBlocks {
		item := itemComponentByName(comp, eb.ItemComponentName)
		if item == nil {
			continue
		}
		schema := itemSchema(comp, eb.ArrayVar)
		itemScripts := []xmlemit.ScriptRef{{URI: "pkg:/components/" + item.Name + ".brs"}}
		res.AdditionalComponents = append(res.AdditionalComponents, AdditionalComponent{
			Name:         item.Name,
			XML:          xmlemit.EmitItemComponent(item, itemScripts),
			BrightScript: brsemit.EmitItemComponent(item, schema),
		})
	}

	return res
}

func itemComponentByName(comp *irc.Component, name string) *irc.ItemComponent {
	for i := range comp.ItemComponents {
		if comp.ItemComponents[i].Name == name {
			return &comp.ItemComponents[i]
		}
	}
	return nil
}

func itemSchema(comp *irc.Component, arrayVar string) []irc.ArrayItemField {
	if s := comp.StateByName(arrayVar); s != nil {
		return s.ArrayItemFields
	}
	return nil
}

// scriptRefs orders the component's own script first, then the shared
// runtime module (if required), then the stdlib module (if required),
// then each selected polyfill.
func scriptRefs(comp *irc.Component) []xmlemit.ScriptRef {
	base := strings.TrimSuffix(filepath.Base(comp.Name), filepath.Ext(comp.Name))
	refs := []xmlemit.ScriptRef{{URI: "pkg:/components/" + base + ".brs"}}
	if comp.RequiresRuntime {
		refs = append(refs, xmlemit.ScriptRef{URI: polyfill.RuntimePath})
	}
	if comp.RequiresStdlib {
		refs = append(refs, xmlemit.ScriptRef{URI: polyfill.StdlibPath})
	}
	keys := make([]string, 0, len(comp.RequiredPolyfills))
	for k := range comp.RequiredPolyfills {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if p := polyfill.Path(k); p != "" {
			refs = append(refs, xmlemit.ScriptRef{URI: p})
		}
	}
	return refs
}
