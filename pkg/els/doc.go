// Package els compiles .els component templates.
//
// An .els file has an optional logic block and an HTML body:
//
//	<script>
//		import Card from "$lib/Card.els"
//		export let title = "Posts"
//		const count = len(posts)
//	</script>
//
//	<h1>{title} ({count})</h1>
//	{#each posts as post, i}
//		<article id="post-{post.id}">{@html post.body}</article>
//	{:else}
//		<p>No posts yet.</p>
//	{/each}
//
// Import lines are recorded in Template.Imports and otherwise ignored.
// Declarations are evaluated in order for every render; "export let" marks a
// prop whose default applies only when the data does not carry the name.
//
// The body supports:
//
//   - {expr}: interpolation, HTML-escaped
//   - {@html expr}: raw output
//   - {#if cond}...{:else if cond}...{:else}...{/if}
//   - {#each list as item, index}...{:else}...{/each}, where {:else}
//     renders for an empty list
//   - <slot />: the place a layout puts child content
//
// Expressions use the expr language (github.com/expr-lang/expr), so
// literals, member access, operators and builtins such as len work.
// A brace followed by whitespace is plain text, so inline CSS survives.
//
// Compile reports syntax errors with line and column; CompileOrFallback
// instead returns a template that shows the error inline. Each render is
// isolated: evaluation errors and panics are logged and replaced with
// ErrorFragment output unless Strict is requested.
//
//	t, err := els.Compile("hello.els", `{#if user}Hi {user.name}{:else}Sign in{/if}`)
//	if err != nil {
//		return err
//	}
//	return t.Render(ctx, w, map[string]any{"user": map[string]any{"name": "Ada"}})
package els
