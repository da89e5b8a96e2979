package core

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestCoreDoesNotImportInfra ensures the engine stays decoupled from the
// storage backends: the core package depends only on the domain interfaces,
// and backend selection happens in the config layer.
func TestCoreDoesNotImportInfra(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "refcore/internal/core")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		for importPath := range pkg.Imports {
			if strings.HasPrefix(importPath, "refcore/internal/infra") ||
				strings.HasPrefix(importPath, "refcore/internal/config") {
				violations = append(violations, pkg.PkgPath+": "+importPath)
			}
		}
	}
	if len(violations) > 0 {
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden import: %s", v)
		}
		t.Fatalf("found %d forbidden imports in the core package", len(violations))
	}
}
