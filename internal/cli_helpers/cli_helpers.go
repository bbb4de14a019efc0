// Package cli_helpers holds small pieces shared between the thin CLI
// wrapper (cmd/roku-svelte) and the core, without pulling cobra or
// lipgloss into the core's import graph. Adapted from esbuild's
// internal/cli_helpers package, which exists for the same reason: code
// the CLI needs that must stay free of the CLI's own dependencies.
package cli_helpers

import "github.com/aryamurray/roku-svelte/internal/logger"

// ExitCode mirrors the user-visible failure policy: the external CLI
// exits non-zero iff any fatal error is present.
func ExitCode(msgs []logger.Msg) int {
	for _, m := range msgs {
		if m.Fatal {
			return 1
		}
	}
	return 0
}
