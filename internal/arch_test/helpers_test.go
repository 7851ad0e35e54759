package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"testing"
)

const modulePath = "github.com/papapumpkin/mnoda"

// sourceRoots are the directories, relative to the repo root, whose packages
// are checked.
var sourceRoots = []string{"internal", "pkg"}

// repoRoot caches the resolved repository root directory.
var (
	repoRootOnce sync.Once
	repoRootPath string
)

// repoRoot returns the absolute path to the repository root by walking up
// from this test file's directory until go.mod is found.
func repoRoot(t *testing.T) string {
	t.Helper()
	repoRootOnce.Do(func() {
		_, thisFile, _, ok := runtime.Caller(0)
		if !ok {
			t.Fatal("runtime.Caller failed")
		}
		dir := filepath.Dir(thisFile)
		for {
			if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
				repoRootPath = dir
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				t.Fatal("could not find go.mod in any parent directory")
			}
			dir = parent
		}
	})
	if repoRootPath == "" {
		t.Fatal("repoRoot not resolved")
	}
	return repoRootPath
}

// packages returns every directory under the source roots holding non-test
// Go files, as slash-separated paths relative to the repo root
// (e.g. "internal/archive", "pkg/mnoda/codec"). arch_test itself is skipped.
func packages(t *testing.T) []string {
	t.Helper()

	root := repoRoot(t)
	var pkgs []string
	for _, src := range sourceRoots {
		err := filepath.WalkDir(filepath.Join(root, src), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if d.Name() == "arch_test" || d.Name() == "testdata" {
				return filepath.SkipDir
			}
			if len(goFilesIn(t, path)) == 0 {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			pkgs = append(pkgs, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			t.Fatalf("walking %s: %v", src, err)
		}
	}
	sort.Strings(pkgs)
	return pkgs
}

// goFilesIn returns all non-test .go files in the given directory.
func goFilesIn(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading directory %s: %v", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files
}

// importsOf returns the deduplicated in-module imports of the non-test files
// of pkg, relative to the module path (e.g. "internal/fsutil").
func importsOf(t *testing.T, pkg string) []string {
	t.Helper()

	seen := make(map[string]bool)
	fset := token.NewFileSet()
	for _, f := range goFilesIn(t, filepath.Join(repoRoot(t), pkg)) {
		node, err := parser.ParseFile(fset, f, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parsing imports in %s: %v", f, err)
		}
		for _, imp := range node.Imports {
			path := strings.Trim(imp.Path.Value, `"`)
			if rel, ok := strings.CutPrefix(path, modulePath+"/"); ok {
				seen[rel] = true
			}
		}
	}

	result := make([]string, 0, len(seen))
	for pkg := range seen {
		result = append(result, pkg)
	}
	sort.Strings(result)
	return result
}

// docText returns the text of the first non-nil doc comment group.
func docText(groups ...*ast.CommentGroup) string {
	for _, g := range groups {
		if g != nil {
			return g.Text()
		}
	}
	return ""
}

func TestPackages(t *testing.T) {
	t.Parallel()

	pkgs := packages(t)
	for _, want := range []string{"internal/archive", "internal/fsutil", "pkg/mnoda", "pkg/mnoda/codec"} {
		found := false
		for _, p := range pkgs {
			if p == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected package %q in %v", want, pkgs)
		}
	}
	for _, p := range pkgs {
		if strings.HasSuffix(p, "arch_test") {
			t.Errorf("packages should exclude arch_test, got %q", p)
		}
	}
}

func TestImportsOf(t *testing.T) {
	t.Parallel()

	imports := importsOf(t, "pkg/mnoda/codec")
	if len(imports) != 1 || imports[0] != "pkg/mnoda" {
		t.Errorf("importsOf(pkg/mnoda/codec) = %v, want [pkg/mnoda]", imports)
	}
}
