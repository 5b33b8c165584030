// Package scaffold generates pages, API modules, models and full resources
// for an Elysium project.
//
// Templates are plain strings with {{variable}} placeholders; the variables
// are derived from the scaffold name:
//
//	name     blog-post
//	Name     BlogPost
//	names    blog-posts
//	Names    BlogPosts
//	package  blogposts
//	route    /blog-posts
//
// Generated API modules are not discovered automatically: Generate prints
// the manifest entry to add.
package scaffold
