// Package store provides the Store[T] collection interface that handlers
// receive instead of package-level slices, and three backends for it:
//
//   - Memory: mutex-guarded map, for demos and tests.
//   - SQLite: JSON documents in a table per collection, using the pure Go
//     modernc.org/sqlite driver. The schema is libSQL compatible.
//   - Redis: a hash plus a creation-order sorted set per collection.
//
// Cached adds a read-through LRU in front of any of them.
//
//	db, err := store.OpenSQLite(ctx, "app.db")
//	posts, err := store.NewSQLite[Post](ctx, db, "posts")
//	item, err := posts.Create(ctx, Post{Title: "Hello"})
package store
