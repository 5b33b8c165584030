package autorouter

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/elysium/handler"
	"github.com/dmitrymomot/elysium/pkg/els"
	"github.com/dmitrymomot/elysium/pkg/httperror"
	"github.com/dmitrymomot/elysium/pkg/logger"
)

// templateRef holds the current compiled version of a template file.
// A nil template means the file failed to compile and is skipped.
type templateRef struct {
	file string
	tpl  atomic.Pointer[els.Template]
}

func (t *templateRef) load() *els.Template {
	if t == nil {
		return nil
	}
	return t.tpl.Load()
}

// Table is the result of registering a routes tree.
type Table struct {
	root string
	cfg  *config

	mu          sync.RWMutex
	descriptors []Descriptor
	routes      []Route
	templates   map[string]*templateRef
}

// Register scans root and registers every routable file on r.
//
// A missing root is logged as a warning and leaves r untouched. A file that
// cannot be served (a template that does not compile, a module or loader
// missing from the manifest) is logged and skipped; the rest of the tree is
// still registered.
func Register(r chi.Router, root string, opts ...Option) (*Table, error) {
	if r == nil {
		return nil, ErrNilRouter
	}
	t := &Table{root: root, cfg: newConfig(opts), templates: make(map[string]*templateRef)}
	log := t.cfg.log.With(logger.Component("autorouter"))

	descriptors, err := Scan(root, opts...)
	if errors.Is(err, ErrRootNotFound) {
		log.Warn("routes directory not found, no routes registered", slog.String("root", root))
		return t, nil
	}
	if err != nil {
		return t, err
	}

	for _, d := range descriptors {
		if err := t.register(r, d); err != nil {
			log.Error("route file skipped",
				logger.File(d.File),
				logger.Route(d.Pattern),
				logger.Error(err),
			)
			continue
		}
		t.mu.Lock()
		t.descriptors = append(t.descriptors, d)
		t.mu.Unlock()
		log.Debug("route file registered", logger.File(d.File), logger.Route(d.Pattern), slog.String("kind", d.Kind.String()))
	}
	return t, nil
}

// Root returns the routes directory.
func (t *Table) Root() string {
	return t.root
}

// Descriptors returns the successfully registered route files.
func (t *Table) Descriptors() []Descriptor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Descriptor(nil), t.descriptors...)
}

// Routes returns every method and pattern registered on the router.
func (t *Table) Routes() []Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Route(nil), t.routes...)
}

func (t *Table) record(route Route) {
	t.mu.Lock()
	t.routes = append(t.routes, route)
	t.mu.Unlock()
}

func (t *Table) register(r chi.Router, d Descriptor) error {
	if i := strings.Index(d.Pattern, "*"); i >= 0 && i != len(d.Pattern)-1 {
		return ErrCatchAllLast
	}
	if d.Kind == KindModule {
		return t.registerModule(r, d)
	}
	return t.registerPage(r, d)
}

func (t *Table) registerModule(r chi.Router, d Descriptor) (err error) {
	module, ok := t.cfg.manifest.Modules[d.File]
	if !ok || module == nil {
		return ErrModuleNotFound
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrModulePanic, rec)
		}
	}()
	module(&Router{
		prefix:   d.ChiPattern(),
		mux:      r,
		file:     d.File,
		catchAll: d.CatchAll,
		record:   t.record,
	})
	return nil
}

func (t *Table) registerPage(r chi.Router, d Descriptor) error {
	if !isTemplate(d.File) {
		return ErrNotTemplate
	}
	page, err := t.template(d.File, true)
	if err != nil {
		return err
	}

	loaders := make([]Loader, 0, len(d.Loaders))
	for _, file := range d.Loaders {
		load, ok := t.cfg.manifest.Loaders[file]
		if !ok || load == nil {
			return fmt.Errorf("%w: %s", ErrLoaderNotFound, file)
		}
		loaders = append(loaders, load)
	}

	layouts := make([]*templateRef, 0, len(d.Layouts))
	for _, file := range d.Layouts {
		ref, _ := t.template(file, false)
		layouts = append(layouts, ref)
	}
	var errorPage *templateRef
	if d.ErrorPage != "" {
		errorPage, _ = t.template(d.ErrorPage, false)
	}

	p := &pageHandler{
		table:     t,
		desc:      d,
		page:      page,
		layouts:   layouts,
		errorPage: errorPage,
		loaders:   loaders,
	}
	pattern := d.ChiPattern()
	r.Get(pattern, p.ServeHTTP)
	t.record(Route{Method: http.MethodGet, Pattern: pattern, File: d.File})
	return nil
}

// template returns the shared reference for a template file, compiling it
// on first use. Pages must compile; a layout or error page that fails is
// logged once and left out of rendering.
func (t *Table) template(file string, required bool) (*templateRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ref, ok := t.templates[file]; ok {
		if required && ref.load() == nil {
			return nil, fmt.Errorf("autorouter: template %s did not compile", file)
		}
		return ref, nil
	}

	ref := &templateRef{file: file}
	t.templates[file] = ref
	tpl, err := els.ParseFile(t.path(file), els.WithLogger(t.cfg.log))
	if err != nil {
		if required {
			return nil, err
		}
		t.cfg.log.Error("template skipped",
			logger.Component("autorouter"),
			logger.File(file),
			logger.Error(err),
		)
		return ref, nil
	}
	ref.tpl.Store(tpl)
	return ref, nil
}

func (t *Table) path(file string) string {
	return filepath.Join(t.root, filepath.FromSlash(file))
}

// pageHandler renders a page template through its layouts.
type pageHandler struct {
	table     *Table
	desc      Descriptor
	page      *templateRef
	layouts   []*templateRef
	errorPage *templateRef
	loaders   []Loader
}

func (p *pageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := p.data(r)
	for _, load := range p.loaders {
		extra, err := load(r)
		if err != nil {
			p.fail(w, r, data, err)
			return
		}
		maps.Copy(data, extra)
	}

	page := p.page.load()
	if page == nil {
		p.fail(w, r, data, httperror.NotFound())
		return
	}

	var component templ.Component = page.Component(data, els.Strict())
	// HTMX fragment requests swap the page body only.
	if !handler.IsPartial(r) {
		for i := len(p.layouts) - 1; i >= 0; i-- {
			if layout := p.layouts[i].load(); layout != nil {
				component = layout.Component(data, els.WithSlot(component), els.Strict())
			}
		}
	}

	if err := handler.Templ(component).Render(w, r); err != nil {
		p.fail(w, r, data, err)
	}
}

func (p *pageHandler) data(r *http.Request) map[string]any {
	data := make(map[string]any)
	if p.table.cfg.globals != nil {
		maps.Copy(data, p.table.cfg.globals(r))
	}

	params := make(map[string]any, len(p.desc.Params))
	for _, name := range p.desc.Params {
		if name == p.desc.CatchAll {
			params[name] = chi.URLParam(r, "*")
			continue
		}
		params[name] = chi.URLParam(r, name)
	}

	query := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	data["params"] = params
	data["query"] = query
	data["url"] = r.URL.Path
	data["htmx"] = handler.IsHTMX(r)
	return data
}

// fail renders the nearest +error page with the error's status, or the
// inline error fragment for template failures, or the error envelope.
func (p *pageHandler) fail(w http.ResponseWriter, r *http.Request, data map[string]any, err error) {
	var (
		tplErr  *els.Error
		e       = httperror.From(err)
		message = e.Message
	)
	if errors.As(err, &tplErr) {
		message = tplErr.Error()
	}

	level := slog.LevelWarn
	if e.StatusCode() >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	p.table.cfg.log.LogAttrs(r.Context(), level, "page render failed",
		logger.Component("autorouter"),
		logger.Route(p.desc.Pattern),
		logger.File(p.desc.File),
		logger.Error(err),
	)

	if errorPage := p.errorPage.load(); errorPage != nil {
		data["error"] = map[string]any{
			"status":  e.StatusCode(),
			"kind":    e.Kind.String(),
			"message": message,
		}
		var buf bytes.Buffer
		if renderErr := errorPage.Render(r.Context(), &buf, data); renderErr == nil {
			writeHTML(w, e.StatusCode(), buf.Bytes())
			return
		}
	}

	if tplErr != nil {
		writeHTML(w, e.StatusCode(), []byte(els.ErrorFragment(err)))
		return
	}
	handler.WriteError(w, r, e, logger.Discard())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
