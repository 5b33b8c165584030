package autorouter

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dmitrymomot/elysium/pkg/logger"
)

// Kind tells how a routable file is served.
type Kind int

const (
	// KindPage is a template rendered on GET through its layouts.
	KindPage Kind = iota
	// KindModule is a manifest handler that registers its own routes.
	KindModule
)

func (k Kind) String() string {
	if k == KindModule {
		return "module"
	}
	return "page"
}

// Descriptor is one routable file derived from the routes tree.
// Descriptors are created by Scan and never modified afterwards.
//
// Paths in File, Layouts, ErrorPage, Loading and Loaders are relative to
// the routes root and use forward slashes.
type Descriptor struct {
	// Pattern uses :name for dynamic segments and * for a catch-all.
	Pattern string
	// Methods is GET for pages and empty for modules, which pick their own.
	Methods []string
	Kind    Kind
	File    string
	// Layouts wrap a page, outermost first.
	Layouts []string
	// ErrorPage is the nearest +error template above the page.
	ErrorPage string
	// Loading is the nearest +loading template; it is not routable.
	Loading string
	// Loaders are the +layout.server and +page.server files applying to a
	// page, outermost first.
	Loaders []string
	// Params lists the dynamic segment names in order.
	Params []string
	// CatchAll names the [...name] segment, if any.
	CatchAll string
}

// ChiPattern returns the pattern in chi syntax: :name becomes {name}.
func (d Descriptor) ChiPattern() string {
	return chiPattern(d.Pattern)
}

func chiPattern(pattern string) string {
	parts := strings.Split(pattern, "/")
	for i, p := range parts {
		if name, ok := strings.CutPrefix(p, ":"); ok && name != "" {
			parts[i] = "{" + name + "}"
		}
	}
	return strings.Join(parts, "/")
}

var templateExts = []string{".els", ".html", ".htm"}

func isTemplate(name string) bool {
	return slices.Contains(templateExts, strings.ToLower(filepath.Ext(name)))
}

// stem strips the last extension: "+page.server.go" becomes "+page.server".
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// segment maps a directory name to its URL contribution.
func segment(dir string) (seg, param string, catchAll bool) {
	switch {
	case dir == "routes":
		return "", "", false
	case strings.HasPrefix(dir, "[...") && strings.HasSuffix(dir, "]") && len(dir) > 5:
		return "*", dir[4 : len(dir)-1], true
	case strings.HasPrefix(dir, "[") && strings.HasSuffix(dir, "]") && len(dir) > 2:
		name := dir[1 : len(dir)-1]
		return ":" + name, name, false
	}
	return dir, "", false
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// dirState is what a directory inherits from its ancestors.
type dirState struct {
	rel       string
	segments  []string
	params    []string
	catchAll  string
	layouts   []string
	loaders   []string
	errorPage string
	loading   string
}

func (s dirState) pattern(extra ...string) string {
	segs := slices.Concat(s.segments, extra)
	if len(segs) == 0 {
		return "/"
	}
	return "/" + strings.Join(segs, "/")
}

// Scan walks root and returns the routable files in directory listing
// order. Non-routable special files (+layout, +error, +loading and the
// .server loaders) appear as metadata on the pages below them.
func Scan(root string, opts ...Option) ([]Descriptor, error) {
	cfg := newConfig(opts)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	s := &scanner{root: root, cfg: cfg}
	if err := s.walk(root, dirState{}); err != nil {
		return nil, err
	}
	return s.out, nil
}

type scanner struct {
	root string
	cfg  *config
	out  []Descriptor
}

func (s *scanner) walk(dir string, st dirState) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if dir == s.root {
			return fmt.Errorf("autorouter: read %s: %w", dir, err)
		}
		s.cfg.log.Error("cannot read routes directory",
			logger.Component("autorouter"),
			slog.String("dir", dir),
			logger.Error(err),
		)
		return nil
	}

	var files, dirs []os.DirEntry
	for _, e := range entries {
		if hidden(e.Name()) || s.cfg.ignored(e.Name()) {
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}

	// Special files apply to every route in the directory, whatever their
	// position in the listing.
	var pageLoader string
	for _, f := range files {
		rel := path.Join(st.rel, f.Name())
		switch stem(f.Name()) {
		case "+layout":
			st.layouts = slices.Concat(st.layouts, []string{rel})
		case "+layout.server":
			st.loaders = slices.Concat(st.loaders, []string{rel})
		case "+page.server":
			pageLoader = rel
		case "+error":
			st.errorPage = rel
		case "+loading":
			st.loading = rel
		}
	}

	for _, f := range files {
		name := f.Name()
		rel := path.Join(st.rel, name)
		switch base := stem(name); {
		case base == "+page":
			loaders := st.loaders
			if pageLoader != "" {
				loaders = slices.Concat(loaders, []string{pageLoader})
			}
			s.out = append(s.out, s.page(st, st.pattern(), rel, loaders))
		case base == "+server" || base == "+api":
			s.out = append(s.out, s.module(st, st.pattern(), rel))
		case strings.HasPrefix(name, "+") || base == "index" || base == "":
			continue
		case isTemplate(name):
			s.out = append(s.out, s.page(st, st.pattern(base), rel, st.loaders))
		default:
			s.out = append(s.out, s.module(st, st.pattern(base), rel))
		}
	}

	for _, d := range dirs {
		seg, param, catchAll := segment(d.Name())
		child := st
		child.rel = path.Join(st.rel, d.Name())
		if seg != "" {
			child.segments = slices.Concat(st.segments, []string{seg})
		}
		if param != "" {
			child.params = slices.Concat(st.params, []string{param})
		}
		if catchAll {
			child.catchAll = param
		}
		if err := s.walk(filepath.Join(dir, d.Name()), child); err != nil {
			return err
		}
	}
	return nil
}

func (s *scanner) page(st dirState, pattern, file string, loaders []string) Descriptor {
	return Descriptor{
		Pattern:   pattern,
		Methods:   []string{"GET"},
		Kind:      KindPage,
		File:      file,
		Layouts:   slices.Clone(st.layouts),
		ErrorPage: st.errorPage,
		Loading:   st.loading,
		Loaders:   slices.Clone(loaders),
		Params:    slices.Clone(st.params),
		CatchAll:  st.catchAll,
	}
}

func (s *scanner) module(st dirState, pattern, file string) Descriptor {
	return Descriptor{
		Pattern:  pattern,
		Kind:     KindModule,
		File:     file,
		Params:   slices.Clone(st.params),
		CatchAll: st.catchAll,
	}
}
