package scaffold_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/elysium/pkg/scaffold"
)

func TestNewNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want scaffold.Names
	}{
		{"post", scaffold.Names{Kebab: "post", Pascal: "Post", Plural: "posts", PluralPascal: "Posts", Package: "posts"}},
		{"BlogPost", scaffold.Names{Kebab: "blog-post", Pascal: "BlogPost", Plural: "blog-posts", PluralPascal: "BlogPosts", Package: "blogposts"}},
		{"user_profile", scaffold.Names{Kebab: "user-profile", Pascal: "UserProfile", Plural: "user-profiles", PluralPascal: "UserProfiles", Package: "userprofiles"}},
		{"HTTPServer", scaffold.Names{Kebab: "http-server", Pascal: "HttpServer", Plural: "http-servers", PluralPascal: "HttpServers", Package: "httpservers"}},
		{"category", scaffold.Names{Kebab: "category", Pascal: "Category", Plural: "categories", PluralPascal: "Categories", Package: "categories"}},
		{"day", scaffold.Names{Kebab: "day", Pascal: "Day", Plural: "days", PluralPascal: "Days", Package: "days"}},
		{"box", scaffold.Names{Kebab: "box", Pascal: "Box", Plural: "boxes", PluralPascal: "Boxes", Package: "boxes"}},
		{"person", scaffold.Names{Kebab: "person", Pascal: "Person", Plural: "people", PluralPascal: "People", Package: "people"}},
		{"news", scaffold.Names{Kebab: "news", Pascal: "News", Plural: "news", PluralPascal: "News", Package: "news"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := scaffold.NewNames(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "  ", "1post", "a/b", "../etc", "po.st"} {
		_, err := scaffold.NewNames(bad)
		assert.ErrorIs(t, err, scaffold.ErrInvalidName, bad)
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]scaffold.Kind{
		"page": scaffold.KindPage, "p": scaffold.KindPage,
		"api": scaffold.KindAPI, "A": scaffold.KindAPI,
		"model": scaffold.KindModel, "m": scaffold.KindModel,
		"resource": scaffold.KindResource, "r": scaffold.KindResource,
	} {
		got, err := scaffold.ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := scaffold.ParseKind("controller")
	assert.ErrorIs(t, err, scaffold.ErrInvalidKind)
}

func TestRender(t *testing.T) {
	t.Parallel()

	out, err := scaffold.Render("type {{Name}} struct{} // {{ name }} {single}", map[string]string{"Name": "Post", "name": "post"})
	require.NoError(t, err)
	assert.Equal(t, "type Post struct{} // post {single}", out)

	_, err = scaffold.Render("{{Name}} {{missing}} {{other}}", map[string]string{"Name": "Post"})
	require.ErrorIs(t, err, scaffold.ErrUnknownVar)
	assert.Contains(t, err.Error(), "missing, other")
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, rel))
	require.NoError(t, err)
	return string(b)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("page", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		files, err := scaffold.Generator{Root: root}.Generate(scaffold.KindPage, "post")
		require.NoError(t, err)
		assert.Equal(t, []string{"routes/posts/+page.els"}, files)

		page := readFile(t, root, files[0])
		assert.Contains(t, page, `export let title = "Posts"`)
		assert.Contains(t, page, `<section id="posts">`)
		assert.NotContains(t, page, "{{")
	})

	t.Run("api prints manifest hint", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		var out bytes.Buffer
		files, err := scaffold.Generator{Root: root, Out: &out}.Generate(scaffold.KindAPI, "BlogPost")
		require.NoError(t, err)
		assert.Equal(t, []string{"routes/api/blog-posts/+server.go"}, files)

		src := readFile(t, root, files[0])
		assert.True(t, strings.HasPrefix(src, "package blogposts\n"))
		assert.Contains(t, src, "func Module(r *autorouter.Router)")
		assert.Contains(t, out.String(), `"api/blog-posts/+server.go": blogposts.Module,`)
	})

	t.Run("model", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		files, err := scaffold.Generator{Root: root}.Generate(scaffold.KindModel, "post")
		require.NoError(t, err)
		assert.Equal(t, []string{"models/post.go"}, files)
		src := readFile(t, root, files[0])
		assert.Contains(t, src, "type Post struct")
		assert.Contains(t, src, "func NewPostStore() store.Store[Post]")
	})

	t.Run("resource", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/blog\n\ngo 1.24\n"), 0o644))
		var out bytes.Buffer

		files, err := scaffold.Generator{Root: root, Out: &out}.Generate(scaffold.KindResource, "post")
		require.NoError(t, err)
		assert.Equal(t, []string{"models/post.go", "routes/api/posts/+server.go", "routes/posts/+page.els"}, files)

		api := readFile(t, root, "routes/api/posts/+server.go")
		assert.Contains(t, api, `"example.com/blog/models"`)
		assert.Contains(t, api, "func Module(s store.Store[models.Post]) autorouter.Module")
		assert.Contains(t, readFile(t, root, "routes/posts/+page.els"), `hx-get="/api/posts"`)
		assert.Contains(t, out.String(), "posts.Module(models.NewPostStore())")
	})

	t.Run("resource needs go.mod", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		_, err := scaffold.Generator{Root: root}.Generate(scaffold.KindResource, "post")
		require.ErrorIs(t, err, scaffold.ErrModuleNotFound)
		assert.NoDirExists(t, filepath.Join(root, "models"))
	})

	t.Run("custom routes dir", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		files, err := scaffold.Generator{Root: root, RoutesDir: "app/routes"}.Generate(scaffold.KindPage, "post")
		require.NoError(t, err)
		assert.Equal(t, []string{"app/routes/posts/+page.els"}, files)
	})

	t.Run("invalid input writes nothing", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		_, err := scaffold.Generator{Root: root}.Generate(scaffold.KindPage, "../escape")
		require.ErrorIs(t, err, scaffold.ErrInvalidName)
		_, err = scaffold.Generator{Root: root}.Generate(scaffold.Kind("widget"), "post")
		require.ErrorIs(t, err, scaffold.ErrInvalidKind)

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestGenerate_Existing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/blog\n"), 0o644))
	gen := scaffold.Generator{Root: root}

	_, err := gen.Generate(scaffold.KindPage, "post")
	require.NoError(t, err)
	page := filepath.Join(root, "routes", "posts", "+page.els")
	require.NoError(t, os.WriteFile(page, []byte("custom"), 0o644))

	_, err = gen.Generate(scaffold.KindResource, "post")
	require.ErrorIs(t, err, scaffold.ErrExists)
	assert.NoFileExists(t, filepath.Join(root, "models", "post.go"), "no partial resource is written")
	assert.Equal(t, "custom", readFile(t, root, "routes/posts/+page.els"))

	gen.Force = true
	_, err = gen.Generate(scaffold.KindResource, "post")
	require.NoError(t, err)
	assert.NotEqual(t, "custom", readFile(t, root, "routes/posts/+page.els"))
	assert.FileExists(t, filepath.Join(root, "models", "post.go"))
}
