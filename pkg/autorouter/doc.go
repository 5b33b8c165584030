// Package autorouter derives HTTP routes from a directory tree.
//
// Directory names become URL segments: [id] is a dynamic segment (:id), and
// [...path] is a catch-all whose value is available as the path param. A
// directory literally named routes adds no segment. Hidden and underscore
// names are ignored.
//
// Files:
//
//   - +page.els renders on GET at the directory's path
//   - +layout.els wraps every page below it through <slot />, outermost first
//   - +error.els renders when a page below it fails
//   - +loading.els is recorded on descriptors and never routed
//   - +server.* and +api.* are modules that register their own routes on a
//     Router scoped to the directory's path
//   - +page.server.* and +layout.server.* supply page data through loaders
//   - about.els (any other template) is a page at /about; any other file is
//     a module at /<name>; index files are skipped
//
// Go code is bound to module and loader files through an explicit Manifest
// keyed by the file path relative to the routes root:
//
//	table, err := autorouter.Register(r, "app/routes",
//		autorouter.WithLogger(log),
//		autorouter.WithManifest(autorouter.Manifest{
//			Modules: map[string]autorouter.Module{
//				"api/posts/+server.go": func(r *autorouter.Router) {
//					r.Get("/", listPosts)
//					r.Post("/", createPost)
//				},
//			},
//			Loaders: map[string]autorouter.Loader{
//				"blog/[slug]/+page.server.go": loadPost,
//			},
//		}),
//	)
//
// Page data holds params, query, url and htmx, then whatever the loaders
// return. HTMX requests that are not boosted receive the page without its
// layouts.
//
// Register never fails startup for a single file: broken templates and
// files missing from the manifest are logged and skipped. Routes that could
// collide textually (a users directory next to [id]) are registered in
// listing order and not disambiguated.
//
// In development, Table.Watch recompiles templates as they change.
package autorouter
