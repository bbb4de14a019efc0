// Command roku-svelte is the thin CLI wrapper around the compiler
// core: read one component file, run it through compiler.Compile, and
// either write the generated artifacts to disk (build) or just report
// diagnostics and exit status (check).
//
// Grounded on esbuild's cmd/esbuild main.go: a cobra root with
// subcommands, all real work delegated to the core package, the CLI
// layer responsible only for I/O and diagnostic formatting.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/aryamurray/roku-svelte/internal/cli_helpers"
	"github.com/aryamurray/roku-svelte/internal/compiler"
	"github.com/aryamurray/roku-svelte/internal/config"
	"github.com/aryamurray/roku-svelte/internal/logger"
	"github.com/aryamurray/roku-svelte/internal/manifest"
)

var (
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

func main() {
	root := &cobra.Command{
		Use:   "roku-svelte",
		Short: "Compile reactive single-file components to scene-graph XML + TL",
	}

	root.AddCommand(newBuildCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newManifestCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func newBuildCmd() *cobra.Command {
	var outDir string
	var isEntry bool
	var width, height int

	cmd := &cobra.Command{
		Use:   "build <file.component>",
		Short: "Compile a component and write its XML/TL artifacts to --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			source, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			opts := config.Options{
				IsEntry:    isEntry,
				Resolution: config.Resolution{Width: width, Height: height},
				FilePath:   path,
			}
			res := compiler.Compile(string(source), path, opts)
			printDiagnostics(res.Warnings, res.Errors)

			if cli_helpers.ExitCode(res.Errors) != 0 {
				return fmt.Errorf("compile failed with %d error(s)", len(res.Errors))
			}

			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			if err := writeArtifact(outDir, base+".xml", res.XML); err != nil {
				return err
			}
			if err := writeArtifact(outDir, base+".brs", res.BrightScript); err != nil {
				return err
			}
			for _, ac := range res.AdditionalComponents {
				if err := writeArtifact(outDir, ac.Name+".xml", ac.XML); err != nil {
					return err
				}
				if err := writeArtifact(outDir, ac.Name+".brs", ac.BrightScript); err != nil {
					return err
				}
			}

			fmt.Println(okStyle.Render(fmt.Sprintf("compiled %s -> %s/", path, outDir)))
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "./out", "output directory")
	cmd.Flags().BoolVar(&isEntry, "entry", false, "compile as a Scene (entry point) rather than a Group")
	cmd.Flags().IntVar(&width, "width", 1920, "target resolution width, for CSS unit resolution")
	cmd.Flags().IntVar(&height, "height", 1080, "target resolution height, for CSS unit resolution")
	return cmd
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file.component>",
		Short: "Validate a component and report diagnostics without writing output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			source, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			res := compiler.Compile(string(source), path, config.Options{})
			printDiagnostics(res.Warnings, res.Errors)

			if cli_helpers.ExitCode(res.Errors) != 0 {
				return fmt.Errorf("check failed with %d error(s)", len(res.Errors))
			}
			fmt.Println(okStyle.Render("no errors"))
			return nil
		},
	}
	return cmd
}

func newManifestCmd() *cobra.Command {
	var title, majorVersion, minorVersion, buildVersion, uiResolutions string
	var outPath string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Emit a package manifest file",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := manifest.Emit(manifest.Options{
				Title:         title,
				MajorVersion:  majorVersion,
				MinorVersion:  minorVersion,
				BuildVersion:  buildVersion,
				UIResolutions: uiResolutions,
			})
			if outPath == "" {
				fmt.Print(body)
				return nil
			}
			return os.WriteFile(outPath, []byte(body), 0o644)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "channel title")
	cmd.Flags().StringVar(&majorVersion, "major-version", "", "major version")
	cmd.Flags().StringVar(&minorVersion, "minor-version", "", "minor version")
	cmd.Flags().StringVar(&buildVersion, "build-version", "", "build version")
	cmd.Flags().StringVar(&uiResolutions, "ui-resolutions", "", "ui_resolutions value")
	cmd.Flags().StringVar(&outPath, "out", "", "output path (stdout if empty)")
	return cmd
}

func writeArtifact(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}

func printDiagnostics(warnings, errors []logger.Msg) {
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, warningStyle.Render(logger.Format(w)))
	}
	for _, e := range errors {
		fmt.Fprintln(os.Stderr, errorStyle.Render(logger.Format(e)))
	}
}
