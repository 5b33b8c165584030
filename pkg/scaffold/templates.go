package scaffold

const pageTemplate = `<script>
	export let title = "{{Names}}"
</script>

<section id="{{names}}">
	<h1>{title}</h1>
	<p>Edit routes{{route}}/+page.els to build this page.</p>
</section>
`

const resourcePageTemplate = `<script>
	export let title = "{{Names}}"
</script>

<section id="{{names}}">
	<h1>{title}</h1>
	<div hx-get="/api/{{names}}" hx-trigger="load" hx-swap="innerHTML">Loading {{names}}...</div>
</section>
`

const apiTemplate = `package {{package}}

import (
	"net/http"

	"github.com/dmitrymomot/elysium/handler"
	"github.com/dmitrymomot/elysium/pkg/autorouter"
)

// Module registers the /api/{{names}} endpoints.
func Module(r *autorouter.Router) {
	r.Get("/", list)
	r.Post("/", create)
	r.Get("/{id}", get)
}

func list(w http.ResponseWriter, r *http.Request) {
	_ = handler.OK([]any{}, "{{Names}} loaded").Render(w, r)
}

func create(w http.ResponseWriter, r *http.Request) {
	_ = handler.Created(nil, "{{Name}} created").Render(w, r)
}

func get(w http.ResponseWriter, r *http.Request) {
	_ = handler.OK(map[string]string{"id": autorouter.Param(r, "id")}, "{{Name}} loaded").Render(w, r)
}
`

const modelTemplate = `package models

import (
	"github.com/dmitrymomot/elysium/pkg/store"
)

// {{Name}} is the stored {{name}} document.
type {{Name}} struct {
	Title string ` + "`json:\"title\"`" + `
}

// New{{Name}}Store returns the {{name}} store. Swap store.NewMemory for
// store.NewSQLite or store.NewRedis to persist documents.
func New{{Name}}Store() store.Store[{{Name}}] {
	return store.NewMemory[{{Name}}]()
}
`

const resourceAPITemplate = `package {{package}}

import (
	"errors"

	"github.com/dmitrymomot/elysium/handler"
	"github.com/dmitrymomot/elysium/pkg/autorouter"
	"github.com/dmitrymomot/elysium/pkg/binder"
	"github.com/dmitrymomot/elysium/pkg/httperror"
	"github.com/dmitrymomot/elysium/pkg/store"

	"{{module}}/models"
)

type idRequest struct {
	ID string ` + "`path:\"id\"`" + `
}

type updateRequest struct {
	ID string ` + "`path:\"id\"`" + `
	models.{{Name}}
}

// Module registers the /api/{{names}} endpoints over s.
func Module(s store.Store[models.{{Name}}]) autorouter.Module {
	return func(r *autorouter.Router) {
		r.Get("/", handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
			items, err := s.List(ctx)
			if err != nil {
				return handler.Error(err)
			}
			return handler.OK(items, "{{Names}} loaded")
		}))

		r.Post("/", handler.Wrap(func(ctx handler.Context, req models.{{Name}}) handler.Response {
			item, err := s.Create(ctx, req)
			if err != nil {
				return handler.Error(err)
			}
			return handler.Created(item, "{{Name}} created")
		}, handler.WithBinders[handler.Context, models.{{Name}}](binder.JSON())))

		r.Get("/{id}", handler.Wrap(func(ctx handler.Context, req idRequest) handler.Response {
			item, err := s.Get(ctx, req.ID)
			if err != nil {
				return notFound(err)
			}
			return handler.OK(item, "{{Name}} loaded")
		}, handler.WithBinders[handler.Context, idRequest](binder.Path())))

		r.Put("/{id}", handler.Wrap(func(ctx handler.Context, req updateRequest) handler.Response {
			item, err := s.Update(ctx, req.ID, req.{{Name}})
			if err != nil {
				return notFound(err)
			}
			return handler.OK(item, "{{Name}} updated")
		}, handler.WithBinders[handler.Context, updateRequest](binder.Path(), binder.JSON())))

		r.Delete("/{id}", handler.Wrap(func(ctx handler.Context, req idRequest) handler.Response {
			if err := s.Delete(ctx, req.ID); err != nil {
				return notFound(err)
			}
			return handler.NoContent()
		}, handler.WithBinders[handler.Context, idRequest](binder.Path())))
	}
}

func notFound(err error) handler.Response {
	if errors.Is(err, store.ErrNotFound) {
		return handler.Error(httperror.NotFound("{{Name}} not found"))
	}
	return handler.Error(err)
}
`
