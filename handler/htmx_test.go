package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/elysium/handler"
	"github.com/dmitrymomot/elysium/pkg/httperror"
	"github.com/dmitrymomot/elysium/pkg/logger"
)

func text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func htmxRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(handler.HXRequest, "true")
	return req
}

func TestIsPartial(t *testing.T) {
	t.Parallel()

	assert.False(t, handler.IsPartial(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.True(t, handler.IsPartial(htmxRequest(http.MethodGet, "/")))

	boosted := htmxRequest(http.MethodGet, "/")
	boosted.Header.Set(handler.HXBoosted, "true")
	assert.True(t, handler.IsHTMXBoosted(boosted))
	assert.False(t, handler.IsPartial(boosted))

	restore := htmxRequest(http.MethodGet, "/")
	restore.Header.Set(handler.HXHistoryRestore, "true")
	assert.False(t, handler.IsPartial(restore))
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	t.Run("regular request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, handler.Redirect("/done").Render(rec, httptest.NewRequest(http.MethodPost, "/", nil)))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/done", rec.Header().Get("Location"))
	})

	t.Run("htmx request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, handler.Redirect("/done").Render(rec, htmxRequest(http.MethodPost, "/")))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/done", rec.Header().Get(handler.HXRedirect))
	})
}

func TestWithTrigger(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, handler.WithTrigger("post-created", handler.NoContent()).Render(rec, htmxRequest(http.MethodPost, "/")))
	assert.Equal(t, "post-created", rec.Header().Get(handler.HXTriggerResponse))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTempl(t *testing.T) {
	t.Parallel()

	t.Run("renders html", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, handler.Templ(text("<h1>Hi</h1>")).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "<h1>Hi</h1>", rec.Body.String())
	})

	t.Run("failed render writes nothing", func(t *testing.T) {
		broken := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, _ = io.WriteString(w, "partial")
			return errors.New("boom")
		})
		rec := httptest.NewRecorder()
		err := handler.Templ(broken).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Error(t, err)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("custom status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, handler.TemplWithStatus(text("gone"), http.StatusNotFound).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("partial for htmx", func(t *testing.T) {
		resp := handler.TemplPartial(text("fragment"), text("document"))

		rec := httptest.NewRecorder()
		require.NoError(t, resp.Render(rec, htmxRequest(http.MethodGet, "/")))
		assert.Equal(t, "fragment", rec.Body.String())

		rec = httptest.NewRecorder()
		require.NoError(t, resp.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, "document", rec.Body.String())
	})
}

func TestWriteError_HTMXFragment(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handler.WriteError(rec, htmxRequest(http.MethodGet, "/"), httperror.NotFound("<missing>"), logger.Discard())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `<div class="els-error" role="alert" data-status="404">&lt;missing&gt;</div>`, rec.Body.String())

	jsonReq := htmxRequest(http.MethodGet, "/")
	jsonReq.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	handler.WriteError(rec, jsonReq, httperror.NotFound(), logger.Discard())
	assert.Contains(t, rec.Body.String(), `"statusCode":404`)
}

func TestNotFoundHandlers(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handler.NotFoundHandler(logger.Discard())(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"NotFound","message":"Route GET /nowhere not found","statusCode":404}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.MethodNotAllowedHandler(logger.Discard())(rec, httptest.NewRequest(http.MethodPatch, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewErrorHandler(t *testing.T) {
	t.Parallel()

	eh := handler.NewErrorHandler(logger.Discard())
	rec := httptest.NewRecorder()
	eh(handler.NewContext(rec, httptest.NewRequest(http.MethodGet, "/", nil)), httperror.TooManyRequests())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"TooManyRequests"`)
}
