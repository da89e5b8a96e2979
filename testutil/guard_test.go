package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGoFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "clean.go", "package sample\n\nimport \"fmt\"\n\nvar _ = fmt.Sprint\n")
	writeGoFile(t, dir, "dirty.go", "package sample\n\nimport (\n\t\"strings\"\n\t\"example.com/internal/secret\"\n)\n\nvar _ = strings.TrimSpace\nvar _ = secret.X\n")
	writeGoFile(t, dir, "dirty_test.go", "package sample\n\nimport \"example.com/internal/ignored\"\n\nvar _ = ignored.X\n")

	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 {
		t.Fatalf("violations = %v, want exactly one", viols)
	}
	if viols[0] != "example.com/internal/secret (in dirty.go)" {
		t.Fatalf("unexpected violation %q", viols[0])
	}
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) bool
		path string
		want bool
	}{
		{"internal hit", InternalImportForbidden, "refcore/internal/core", true},
		{"internal miss", InternalImportForbidden, "refcore/pkg/domain", false},
		{"infra hit", InfraImportForbidden, "refcore/internal/infra/blob/fs", true},
		{"infra miss", InfraImportForbidden, "refcore/internal/core", false},
		{"third party hit", ThirdPartyImportForbidden, "github.com/google/uuid", true},
		{"stdlib miss", ThirdPartyImportForbidden, "encoding/json", false},
		{"module miss", ThirdPartyImportForbidden, "refcore/pkg/domain", false},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.path); got != tc.want {
			t.Errorf("%s: %s = %v, want %v", tc.name, tc.path, got, tc.want)
		}
	}
}

func TestAssertNoDirectImportsPasses(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "ok.go", "package sample\n\nimport \"sort\"\n\nvar _ = sort.Strings\n")
	AssertNoDirectImports(t, dir, InternalImportForbidden, "sample must stay clean")
}
