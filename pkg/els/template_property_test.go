//go:build property

package els_test

import (
	"bytes"
	"context"
	"html"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dmitrymomot/elysium/pkg/els"
)

func TestTemplateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	each, err := els.Compile("each.els", `{#each items as x}{x},{/each}`)
	if err != nil {
		t.Fatal(err)
	}
	branch, err := els.Compile("if.els", `{#if cond}A{:else}B{/if}`)
	if err != nil {
		t.Fatal(err)
	}
	echo, err := els.Compile("echo.els", `<p>{value}</p>`)
	if err != nil {
		t.Fatal(err)
	}

	properties.Property("each renders every item in order", prop.ForAll(
		func(items []int) bool {
			var want strings.Builder
			for _, v := range items {
				want.WriteString(strconv.Itoa(v))
				want.WriteString(",")
			}
			var buf bytes.Buffer
			if err := each.Render(context.Background(), &buf, map[string]any{"items": items}, els.Strict()); err != nil {
				return false
			}
			return buf.String() == want.String()
		},
		gen.SliceOf(gen.IntRange(-1000, 1000)),
	))

	properties.Property("if picks exactly one branch", prop.ForAll(
		func(cond bool) bool {
			var buf bytes.Buffer
			if err := branch.Render(context.Background(), &buf, map[string]any{"cond": cond}, els.Strict()); err != nil {
				return false
			}
			if cond {
				return buf.String() == "A"
			}
			return buf.String() == "B"
		},
		gen.Bool(),
	))

	properties.Property("interpolation is always escaped", prop.ForAll(
		func(value string) bool {
			var buf bytes.Buffer
			if err := echo.Render(context.Background(), &buf, map[string]any{"value": value}, els.Strict()); err != nil {
				return false
			}
			return buf.String() == "<p>"+html.EscapeString(value)+"</p>"
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
