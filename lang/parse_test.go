package lang

import (
	"reflect"
	"slices"
	"strconv"
	"testing"
)

func TestParse_Blocks(t *testing.T) {
	ctx := t.Context()

	pt := Parse(ctx, "Hi {{name}}, [media:logo] {{#if vip}}VIP{{/if}}")

	kinds := make([]Kind, 0, len(pt.Blocks))
	for _, b := range pt.Blocks {
		kinds = append(kinds, b.Kind)
	}

	want := []Kind{
		KindText, KindVariable, KindText, KindMedia, KindText,
		KindCondition, KindText,
	}

	if !slices.Equal(kinds, want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}

	if len(pt.Root) != 6 {
		t.Errorf("root = %v, want 6 top-level blocks", pt.Root)
	}

	cond := pt.Blocks[5]
	if cond.Cond == nil || cond.Cond.Field != "vip" || cond.Cond.Operator != OpTruthy {
		t.Errorf("condition = %+v", cond.Cond)
	}

	if cond.Content != "{{#if vip}}VIP{{/if}}" || cond.Cond.Body != "VIP" {
		t.Errorf("condition content = %q body = %q", cond.Content, cond.Cond.Body)
	}

	if len(cond.Body) != 1 || pt.Blocks[cond.Body[0]].Text != "VIP" {
		t.Errorf("condition children = %v", cond.Body)
	}

	if !slices.Equal(pt.Media, []string{"logo"}) {
		t.Errorf("media = %v", pt.Media)
	}

	for i := 1; i < len(pt.Blocks); i++ {
		if pt.Blocks[i].Start < pt.Blocks[i-1].Start {
			t.Errorf("block %d starts at %d before block %d at %d",
				i, pt.Blocks[i].Start, i-1, pt.Blocks[i-1].Start)
		}
	}

	for _, b := range pt.Blocks {
		if pt.Source[b.Start:b.End] != b.Content {
			t.Errorf("block %+v content does not match its offsets", b)
		}
	}
}

func TestParse_Variables(t *testing.T) {
	ctx := t.Context()
	text := "{{b}} {{a}} {{b}} {{#if c}}{{a}}{{d}}{{/if}} {{ 9bad }} {{}}"

	first := Parse(ctx, text)
	ClearCache()
	second := Parse(ctx, text)

	want := []string{"b", "a", "d"}

	if !slices.Equal(first.Variables, want) {
		t.Errorf("variables = %v, want %v", first.Variables, want)
	}

	if !slices.Equal(first.Variables, second.Variables) {
		t.Errorf("variables differ between parses: %v vs %v", first.Variables, second.Variables)
	}

	if got := first.Fields(); !slices.Equal(got, []string{"b", "a", "c", "d"}) {
		t.Errorf("fields = %v", got)
	}
}

func TestParse_Metrics(t *testing.T) {
	tests := []struct {
		input      string
		complexity int
		renderTime float64
		depth      int
	}{
		{"", 0, 0, 0},
		{"plain", 1, 0.1, 0},
		{"Hi {{name}}", 3, 0.6, 0},
		{"[media:x]", 3, 2.0, 0},
		{"{{#if a}}x{{/if}}", 6, 1.1, 1},
		{"{{#each xs}}{{/each}}", 8, 4.0, 1},
		{"{{#if a}}{{#if b}}{{#if c}}{{#if d}}x{{/if}}{{/if}}{{/if}}{{/if}}", 21, 4.1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			pt := Parse(t.Context(), tt.input)

			if pt.Complexity != tt.complexity {
				t.Errorf("complexity = %d, want %d", pt.Complexity, tt.complexity)
			}

			if diff := pt.EstimatedRenderTime - tt.renderTime; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("render time = %v, want %v", pt.EstimatedRenderTime, tt.renderTime)
			}

			if pt.MaxDepth != tt.depth {
				t.Errorf("depth = %d, want %d", pt.MaxDepth, tt.depth)
			}
		})
	}
}

func TestParse_Else(t *testing.T) {
	pt := Parse(t.Context(), "{{#if vip}}A{{#else}}B{{/if}}")

	if len(pt.Root) != 1 {
		t.Fatalf("root = %v", pt.Root)
	}

	b := pt.Blocks[pt.Root[0]]

	if !b.HasElse() {
		t.Fatal("expected else branch")
	}

	if len(b.Body) != 1 || pt.Blocks[b.Body[0]].Text != "A" {
		t.Errorf("body = %v", b.Body)
	}

	if len(b.Else) != 1 || pt.Blocks[b.Else[0]].Text != "B" {
		t.Errorf("else = %v", b.Else)
	}

	if b.Cond.Body != "A" {
		t.Errorf("condition body = %q", b.Cond.Body)
	}
}

func TestParse_Recovery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []Kind
	}{
		{"unclosed if", "{{#if a}}x{{name}}", []Kind{KindText, KindText, KindVariable}},
		{"stray endif", "x{{/if}}", []Kind{KindText, KindText}},
		{"stray else", "{{#else}}", []Kind{KindText}},
		{"second else", "{{#if a}}x{{#else}}y{{#else}}z{{/if}}", []Kind{
			KindCondition, KindText, KindText, KindText, KindText,
		}},
		{"unclosed loop inside if", "{{#if a}}{{#each xs}}{{/if}}", []Kind{
			KindCondition, KindText,
		}},
		{"else inside loop", "{{#each xs}}{{#else}}{{/each}}", []Kind{
			KindLoop, KindText,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := Parse(t.Context(), tt.input)

			got := make([]Kind, 0, len(pt.Blocks))
			for _, b := range pt.Blocks {
				got = append(got, b.Kind)
			}

			if !slices.Equal(got, tt.kinds) {
				t.Errorf("kinds = %v, want %v", got, tt.kinds)
			}
		})
	}
}

func TestParse_ConditionsInDocumentOrder(t *testing.T) {
	pt := Parse(t.Context(), "{{#if a}}{{#if b}}x{{/if}}{{/if}}{{#if c}}y{{/if}}")

	var fields []string
	for _, c := range pt.Conditions {
		fields = append(fields, c.Field)
	}

	if !slices.Equal(fields, []string{"a", "b", "c"}) {
		t.Errorf("conditions = %v", fields)
	}
}

func TestParse_Cached(t *testing.T) {
	ctx := t.Context()
	text := "cached {{value}}"

	first := Parse(ctx, text)
	if second := Parse(ctx, text); second != first {
		t.Error("expected cached parse to return the same template")
	}

	ClearCache()

	third := Parse(ctx, text)
	if third == first {
		t.Error("expected a fresh parse after ClearCache")
	}

	if !reflect.DeepEqual(first, third) {
		t.Error("fresh parse differs from cached parse")
	}
}

func TestParse_CachedConcurrent(t *testing.T) {
	ctx := t.Context()
	text := "concurrent {{#if a}}{{b}}{{/if}}"

	ClearCache()

	results := make(chan *ParsedTemplate, 16)

	for range cap(results) {
		go func() { results <- Parse(ctx, text) }()
	}

	first := <-results
	for range cap(results) - 1 {
		if got := <-results; got != first {
			t.Fatal("concurrent parses returned different templates")
		}
	}
}

func TestParse_CacheBounded(t *testing.T) {
	ctx := t.Context()

	ClearCache()
	t.Cleanup(ClearCache)

	for i := range MaxCacheEntries + 100 {
		Parse(ctx, "draft "+strconv.Itoa(i)+" {{name}}")
	}

	if n := globalCache.Len(); n > MaxCacheEntries {
		t.Errorf("cache holds %d entries, want at most %d", n, MaxCacheEntries)
	}

	// recently used entries survive eviction
	last := "draft " + strconv.Itoa(MaxCacheEntries+99) + " {{name}}"
	if !globalCache.Contains(cacheKey(last)) {
		t.Error("most recent parse was evicted")
	}
}

func TestValidate_Uncached(t *testing.T) {
	ctx := t.Context()

	ClearCache()

	for i := range 100 {
		Validate(ctx, "edit "+strconv.Itoa(i)+" {{name}}")
		Optimize(ctx, "edit "+strconv.Itoa(i)+"  {{name}}")
	}

	if n := globalCache.Len(); n != 0 {
		t.Errorf("cache holds %d entries after validate and optimize, want 0", n)
	}
}
