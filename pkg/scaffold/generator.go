package scaffold

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind is a scaffold type.
type Kind string

const (
	KindPage     Kind = "page"
	KindAPI      Kind = "api"
	KindModel    Kind = "model"
	KindResource Kind = "resource"
)

// Kinds lists the scaffold types in help order.
func Kinds() []Kind {
	return []Kind{KindPage, KindAPI, KindModel, KindResource}
}

// ParseKind accepts a type name or its one-letter alias.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "page", "p":
		return KindPage, nil
	case "api", "a":
		return KindAPI, nil
	case "model", "m":
		return KindModel, nil
	case "resource", "r":
		return KindResource, nil
	}
	return "", fmt.Errorf("%w: %q (want page, api, model or resource)", ErrInvalidKind, s)
}

// Generator writes scaffolds below Root.
type Generator struct {
	// Root is the project directory; "." when empty.
	Root string
	// RoutesDir is relative to Root; "routes" when empty.
	RoutesDir string
	// Force overwrites existing files.
	Force bool
	// Out receives the created paths and follow-up hints; nil discards them.
	Out io.Writer
}

type file struct {
	path string
	tmpl string
}

// Generate renders the scaffold for kind and name and returns the written
// paths relative to Root. Nothing is written if any target exists and
// Force is not set.
func (g Generator) Generate(kind Kind, name string) ([]string, error) {
	names, err := NewNames(name)
	if err != nil {
		return nil, err
	}
	root := g.Root
	if root == "" {
		root = "."
	}
	routes := g.RoutesDir
	if routes == "" {
		routes = "routes"
	}

	vars := map[string]string{
		"name":    names.Kebab,
		"Name":    names.Pascal,
		"names":   names.Plural,
		"Names":   names.PluralPascal,
		"package": names.Package,
		"route":   "/" + names.Plural,
	}
	pagePath := filepath.Join(routes, names.Plural, "+page.els")
	apiPath := filepath.Join(routes, "api", names.Plural, "+server.go")
	modelPath := filepath.Join("models", names.Kebab+".go")

	var files []file
	switch kind {
	case KindPage:
		files = []file{{pagePath, pageTemplate}}
	case KindAPI:
		files = []file{{apiPath, apiTemplate}}
	case KindModel:
		files = []file{{modelPath, modelTemplate}}
	case KindResource:
		module, err := ModulePath(root)
		if err != nil {
			return nil, err
		}
		vars["module"] = module
		files = []file{
			{modelPath, modelTemplate},
			{apiPath, resourceAPITemplate},
			{pagePath, resourcePageTemplate},
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	rendered := make([]string, len(files))
	for i, f := range files {
		out, err := Render(f.tmpl, vars)
		if err != nil {
			return nil, err
		}
		rendered[i] = out
		if g.Force {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, f.path)); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrExists, filepath.ToSlash(f.path))
		}
	}

	written := make([]string, 0, len(files))
	for i, f := range files {
		full := filepath.Join(root, f.path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return written, fmt.Errorf("scaffold: create directory: %w", err)
		}
		if err := os.WriteFile(full, []byte(rendered[i]), 0o644); err != nil {
			return written, fmt.Errorf("scaffold: write %s: %w", f.path, err)
		}
		written = append(written, filepath.ToSlash(f.path))
		if g.Out != nil {
			fmt.Fprintf(g.Out, "created %s\n", filepath.ToSlash(f.path))
		}
	}

	if kind == KindAPI || kind == KindResource {
		g.hint(kind, names)
	}
	return written, nil
}

func (g Generator) hint(kind Kind, names Names) {
	if g.Out == nil {
		return
	}
	key := "api/" + names.Plural + "/+server.go"
	value := names.Package + ".Module"
	if kind == KindResource {
		value = fmt.Sprintf("%s.Module(models.New%sStore())", names.Package, names.Pascal)
	}
	fmt.Fprintf(g.Out, "\nRegister the module in your manifest:\n\n\tModules: map[string]autorouter.Module{\n\t\t%q: %s,\n\t}\n", key, value)
}

// ModulePath reads the module path from root/go.mod.
func ModulePath(root string) (string, error) {
	f, err := os.Open(filepath.Join(root, "go.mod"))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w in %s", ErrModuleNotFound, root)
	}
	if err != nil {
		return "", fmt.Errorf("scaffold: read go.mod: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if mod, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "module "); ok {
			return strings.Trim(strings.TrimSpace(mod), `"`), nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("scaffold: read go.mod: %w", err)
	}
	return "", fmt.Errorf("%w: no module directive in %s", ErrModuleNotFound, root)
}
