// Package test holds a small cross-package test helper, adapted from
// esbuild's internal/test package. It compares values through go-cmp so
// a failing assertion prints a structural diff instead of two opaque
// blobs. None of the repository's current test files import it.
package test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// AssertEqualWithDiff fails the test with a unified structural diff when
// got and want differ, so multi-line values (BRS source, XML documents,
// IR snapshots) show where they diverge instead of only "not equal".
func AssertEqualWithDiff(t *testing.T, got, want interface{}) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
