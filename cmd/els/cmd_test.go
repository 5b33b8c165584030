package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGenerateCommand(t *testing.T) {
	t.Parallel()

	t.Run("page", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		out, err := run(t, context.Background(), "generate", "page", "about", "--root", root)
		require.NoError(t, err)
		assert.Contains(t, out, "created routes/abouts/+page.els")
		assert.FileExists(t, filepath.Join(root, "routes", "abouts", "+page.els"))
	})

	t.Run("alias and short type", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		out, err := run(t, context.Background(), "g", "a", "post", "--root", root)
		require.NoError(t, err)
		assert.Contains(t, out, `"api/posts/+server.go": posts.Module,`)
		assert.FileExists(t, filepath.Join(root, "routes", "api", "posts", "+server.go"))
	})

	t.Run("routes dir from config file", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFile(t, root, "els.yaml", "routes: app/routes\n")
		_, err := run(t, context.Background(), "g", "p", "post", "--root", root)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(root, "app", "routes", "posts", "+page.els"))
	})

	t.Run("existing file needs force", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		_, err := run(t, context.Background(), "g", "m", "post", "--root", root)
		require.NoError(t, err)

		_, err = run(t, context.Background(), "g", "m", "post", "--root", root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--force")

		_, err = run(t, context.Background(), "g", "m", "post", "--root", root, "--force")
		require.NoError(t, err)
	})

	bad := map[string][]string{
		"missing name":  {"generate", "page"},
		"missing all":   {"generate"},
		"too many args": {"generate", "page", "a", "b"},
		"unknown type":  {"generate", "widget", "post"},
		"invalid name":  {"generate", "page", "../post"},
	}
	for name, args := range bad {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			out, err := run(t, context.Background(), append(args, "--root", root)...)
			require.Error(t, err)
			assert.Contains(t, out, "Usage:")

			entries, err := os.ReadDir(root)
			require.NoError(t, err)
			assert.Empty(t, entries, "no file is created")
		})
	}
}

func routesTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "routes/+layout.els", "<slot />")
	writeFile(t, root, "routes/+page.els", "home")
	writeFile(t, root, "routes/blog/[slug]/+page.els", "post")
	writeFile(t, root, "routes/api/posts/+server.go", "package posts")
	return root
}

func TestRoutesCommand(t *testing.T) {
	t.Parallel()

	root := routesTree(t)

	t.Run("table", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, context.Background(), "routes", filepath.Join(root, "routes"))
		require.NoError(t, err)
		assert.Contains(t, out, "METHOD")
		assert.Regexp(t, `GET\s+/blog/:slug\s+page\s+blog/\[slug\]/\+page.els`, out)
		assert.Regexp(t, `\*\s+/api/posts\s+module\s+api/posts/\+server.go`, out)
	})

	t.Run("json from root flag", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, context.Background(), "routes", "--root", root, "-o", "json")
		require.NoError(t, err)
		var rows []routeRow
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		require.Len(t, rows, 3)
		patterns := []string{rows[0].Pattern, rows[1].Pattern, rows[2].Pattern}
		assert.ElementsMatch(t, []string{"/", "/blog/:slug", "/api/posts"}, patterns)
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, context.Background(), "routes", filepath.Join(root, "routes"), "--format", "yaml")
		require.NoError(t, err)
		var rows []routeRow
		require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
		assert.Len(t, rows, 3)
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, context.Background(), "routes", "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, out, "Usage:")
	})

	t.Run("missing dir", func(t *testing.T) {
		t.Parallel()
		_, err := run(t, context.Background(), "routes", filepath.Join(root, "nope"))
		require.Error(t, err)
	})
}

func TestServeCommand(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	root := routesTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := run(t, ctx, "serve", "--root", root, "--addr", "127.0.0.1:0", "--watch=false")
	require.NoError(t, err)

	_, err = run(t, context.Background(), "serve", "extra")
	require.Error(t, err)
}
