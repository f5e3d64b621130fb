package qute

import (
	"context"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIfSection(t *testing.T) {
	e := MustNew()
	data := map[string]any{
		"yes":   true,
		"no":    false,
		"text":  "true",
		"count": 12,
		"price": "9.50",
		"name":  "Lu",
		"word":  "abc",
	}

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"true condition", "{#if yes}Y{/if}", "Y"},
		{"false condition", "{#if no}Y{/if}", ""},
		{"false with else", "{#if no}Y{:else}N{/if}", "N"},
		{"else if", "{#if no}A{:else if yes}B{:else}C{/if}", "B"},
		{"else without if keyword", "{#if no}A{:else yes}B{/if}", "B"},
		{"first passing block wins", "{#if yes}A{:else if yes}B{/if}", "A"},
		{"non boolean is false", "{#if text}Y{:else}N{/if}", "N"},
		{"missing is false", "{#if nothing}Y{:else}N{/if}", "N"},
		{"gt", "{#if count gt 10}Y{/if}", "Y"},
		{"gt symbol", "{#if count > 12}Y{:else}N{/if}", "N"},
		{"ge", "{#if count ge 12}Y{/if}", "Y"},
		{"lt", "{#if count lt 13}Y{/if}", "Y"},
		{"le symbol", "{#if count <= 11}Y{:else}N{/if}", "N"},
		{"numeric string", "{#if price lt 10}Y{/if}", "Y"},
		{"decimal literal", "{#if price lt 9.6}Y{/if}", "Y"},
		{"eq string", "{#if name eq 'Lu'}Y{/if}", "Y"},
		{"is", "{#if name is 'Lu'}Y{/if}", "Y"},
		{"ne", "{#if name ne 'Lu'}Y{:else}N{/if}", "N"},
		{"ne symbol", "{#if count != 3}Y{/if}", "Y"},
		{"eq across number types", "{#if count eq 12.0}Y{/if}", "Y"},
		{"operator in else if", "{#if no}A{:else if count gt 5}B{/if}", "B"},
		{"nested", "{#if yes}{#if no}A{:else}B{/if}{/if}", "B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, e, tt.source, data))
		})
	}

	t.Run("relational operand that is not a number", func(t *testing.T) {
		_, err := e.RenderString(context.Background(), "{#if word gt 1}Y{/if}", data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgNotNumber)
	})

	t.Run("unknown operator is a parse error", func(t *testing.T) {
		_, err := e.Parse("{#if a foo b}Y{/if}")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnknownOperator)
	})

	t.Run("operator without operand is a parse error", func(t *testing.T) {
		_, err := e.Parse("{#if a gt}Y{/if}")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgMissingOperand)
	})

	t.Run("missing condition is a parse error", func(t *testing.T) {
		_, err := e.Parse("{#if}Y{/if}")
		require.Error(t, err)
	})
}

type person struct {
	Name string
}

func TestLoopSection(t *testing.T) {
	e := MustNew()

	t.Run("iteration metadata", func(t *testing.T) {
		data := map[string]any{"list": []any{
			map[string]any{"name": "Lu"},
			map[string]any{},
		}}
		out := render(t, e, "{#for item in list}{iter:count}.{item.name}{#if iter:hasNext}\n{/if}{/for}", data)
		assert.Equal(t, "1.Lu\n2.", out)
	})

	t.Run("index and parity", func(t *testing.T) {
		data := map[string]any{"items": []string{"a", "b", "c"}}
		out := render(t, e, "{#each items}{iter:index}{iter:indexParity}{iter:odd}{iter:isEven}{iter:last}|{/each}", data)
		assert.Equal(t, "0oddtruefalsefalse|1evenfalsetruefalse|2oddtruefalsetrue|", out)
	})

	t.Run("default alias", func(t *testing.T) {
		data := map[string]any{"items": []person{{"a"}, {"b"}}}
		assert.Equal(t, "ab", render(t, e, "{#each items}{it.name}{/each}", data))
		assert.Equal(t, "{a}{b}", render(t, e, "{#each items}{this}{/each}", data))
	})

	t.Run("alias namespace", func(t *testing.T) {
		data := map[string]any{"people": []*person{{"a"}, {"b"}}}
		assert.Equal(t, "a,b,", render(t, e, "{#for p in people}{p:name},{/for}", data))
	})

	t.Run("outer names stay visible", func(t *testing.T) {
		data := map[string]any{"items": []int{1, 2}, "sep": "-"}
		assert.Equal(t, "1-2-", render(t, e, "{#each items}{it}{sep}{/each}", data))
	})

	t.Run("element properties do not shadow outer names", func(t *testing.T) {
		data := map[string]any{
			"title": "ROOT",
			"items": []map[string]any{{"title": "a"}, {"title": "b"}},
		}
		assert.Equal(t, "ROOT;ROOT;", render(t, e, "{#for item in items}{title};{/for}", data))
		assert.Equal(t, "a;b;", render(t, e, "{#for item in items}{item.title};{/for}", data))
		assert.Equal(t, ";;", render(t, e, "{#each items}{missing};{/each}", data))
	})

	t.Run("unqualified metadata and entry names", func(t *testing.T) {
		data := map[string]any{"m": map[string]int{"b": 2, "a": 1}, "key": "outer"}
		assert.Equal(t, "1a=1,2b=2,", render(t, e, "{#each m}{count}{key}={value},{/each}", data))
		assert.Equal(t, "outer|outer|", render(t, e, "{#each list}{key}|{/each}",
			map[string]any{"list": []int{1, 2}, "key": "outer"}))
	})

	t.Run("nested loops", func(t *testing.T) {
		data := map[string]any{"rows": [][]int{{1, 2}, {3}}}
		out := render(t, e, "{#for row in rows}{#for cell in row}{cell}{/for};{/for}", data)
		assert.Equal(t, "12;3;", out)
	})

	t.Run("map entries in key order", func(t *testing.T) {
		data := map[string]any{"m": map[string]int{"b": 2, "a": 1, "c": 3}}
		assert.Equal(t, "a=1;b=2;c=3;", render(t, e, "{#for e in m}{e.key}={e.value};{/for}", data))
	})

	t.Run("channel", func(t *testing.T) {
		ch := make(chan string, 3)
		ch <- "x"
		ch <- "y"
		ch <- "z"
		close(ch)
		assert.Equal(t, "xyz", render(t, e, "{#each ch}{it}{/each}", map[string]any{"ch": ch}))
	})

	t.Run("sequence", func(t *testing.T) {
		var seq iter.Seq[any] = func(yield func(any) bool) {
			for _, s := range []string{"p", "q"} {
				if !yield(s) {
					return
				}
			}
		}
		assert.Equal(t, "pq", render(t, e, "{#each seq}{it}{/each}", map[string]any{"seq": seq}))
	})

	t.Run("empty and missing iterables", func(t *testing.T) {
		data := map[string]any{"empty": []int{}, "none": nil}
		assert.Equal(t, "[]", render(t, e, "[{#each empty}x{/each}]", data))
		assert.Equal(t, "[]", render(t, e, "[{#each none}x{/each}]", data))
		assert.Equal(t, "[]", render(t, e, "[{#each missing}x{/each}]", data))
	})

	t.Run("else block", func(t *testing.T) {
		data := map[string]any{"empty": []int{}, "one": []int{1}}
		assert.Equal(t, "none", render(t, e, "{#each empty}{it}{:else}none{/each}", data))
		assert.Equal(t, "1", render(t, e, "{#each one}{it}{:else}none{/each}", data))
	})

	t.Run("not iterable", func(t *testing.T) {
		_, err := e.RenderString(context.Background(), "{#for x in num}{x}{/for}", map[string]any{"num": 5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgNotIterable)
	})

	t.Run("invalid alias", func(t *testing.T) {
		_, err := e.Parse("{#for 1x in items}{/for}")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgInvalidAlias)
	})
}

func TestLoopSection_ElementOrder(t *testing.T) {
	// later elements finish first
	slow := Match[int]().AndName("slow").
		Resolve(func(ctx context.Context, ec *EvalContext) (any, error) {
			n := ec.Base.(int)
			select {
			case <-time.After(time.Duration(6-n) * 10 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return n, nil
		}).Build()
	e := MustNew(WithValueResolver(slow))

	data := map[string]any{"items": []int{1, 2, 3, 4, 5}}
	assert.Equal(t, "1,2,3,4,5,", render(t, e, "{#each items}{it.slow},{/each}", data))
	assert.Equal(t, "1 2", render(t, e, "{items[0].slow} {items[1].slow}", data))
}

func TestWithSection(t *testing.T) {
	e := MustNew()
	data := map[string]any{
		"user":  map[string]any{"name": "Lu", "address": map[string]any{"city": "Brno"}},
		"title": "Dr.",
	}

	assert.Equal(t, "Lu", render(t, e, "{#with user}{name}{/with}", data))
	assert.Equal(t, "Dr. Lu", render(t, e, "{#with user}{title} {name}{/with}", data))
	assert.Equal(t, "Brno", render(t, e, "{#with user.address}{city}{/with}", data))
	assert.Equal(t, "Lu/Lu", render(t, e, "{#with user as u}{u.name}/{u:name}{/with}", data))
	assert.Equal(t, "", render(t, e, "{#with nothing}{name}{/with}", data))

	_, err := e.Parse("{#with}x{/with}")
	require.Error(t, err)
}

func TestSetSection(t *testing.T) {
	e := MustNew()

	t.Run("binds values for its body", func(t *testing.T) {
		data := map[string]any{"user": map[string]any{"name": "Lu"}}
		out := render(t, e, "{#set greeting='Hi' who=user.name n=3}{greeting} {who} {n}{/set}", data)
		assert.Equal(t, "Hi Lu 3", out)
	})

	t.Run("binding does not leak", func(t *testing.T) {
		assert.Equal(t, "1", render(t, e, "{#set x=1}{x}{/set}", nil))
		assert.Equal(t, "1", render(t, e, "{x}{#set x=1}{x}{/set}{x}", map[string]any{}))
	})

	t.Run("shadows outer names", func(t *testing.T) {
		assert.Equal(t, "a|b|a", render(t, e, "{x}|{#set x='b'}{x}{/set}|{x}", map[string]any{"x": "a"}))
	})

	t.Run("failing parameter aborts the body", func(t *testing.T) {
		var calls int
		count := NewResolver().AndName("count").
			Resolve(func(context.Context, *EvalContext) (any, error) {
				calls++
				return 1, nil
			}).Build()
		e := MustNew(WithValueResolver(count))
		_, err := e.RenderString(context.Background(), "{#set a=nosuch:x}{a.count}{/set}", map[string]any{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgNamespaceNotFound)
		assert.Zero(t, calls)
	})
}

func TestSkipSection(t *testing.T) {
	e := MustNew()
	assert.Equal(t, "ab", render(t, e, "a{#skip}{nosuch:x}{#each items}{it}{/each}{/skip}b", nil))
}

func TestUserTagSection(t *testing.T) {
	tags := NewMapLocator(map[string]string{
		"tags/card":  "[{title}]",
		"tags/badge": "<{it.name}>",
	})
	e := MustNew(
		WithLocator(tags),
		WithUserTag("card", "tags/card"),
		WithUserTag("badge", "tags/badge"),
	)
	data := map[string]any{"items": []person{{"a"}, {"b"}}}

	assert.Equal(t, "[a][b]", render(t, e, "{#for i in items}{#card title=i.name /}{/for}", data))
	assert.Equal(t, "<a>", render(t, e, "{#badge items[0] /}", data))
	assert.Equal(t, "[x]", render(t, e, "{#card title='x'}ignored{/card}", data))

	t.Run("missing tag template", func(t *testing.T) {
		e := MustNew(WithUserTag("ghost", "tags/ghost"))
		_, err := e.RenderString(context.Background(), "{#ghost /}", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})
}

type upperFactory struct{}

func (upperFactory) DefaultAliases() []string { return []string{"upper", "shout"} }
func (upperFactory) Parameters() *ParamSchema { return NewParamSchema() }

func (upperFactory) Initialize(ic *SectionInitContext) (SectionHelper, error) {
	return upperHelper{body: ic.MainBlock()}, nil
}

type upperHelper struct {
	body *SectionBlock
}

func (h upperHelper) Resolve(ctx context.Context, sc *SectionResolutionContext) (ResultNode, error) {
	r, err := sc.Execute(ctx, h.body, nil)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	r.Process(func(s string) { sb.WriteString(s) })
	return TextResult(strings.ToUpper(sb.String())), nil
}

func TestCustomSectionHelper(t *testing.T) {
	t.Run("registered under default aliases", func(t *testing.T) {
		e := MustNew(WithSectionHelper(upperFactory{}))
		data := map[string]any{"name": "lu"}
		assert.Equal(t, "HI LU", render(t, e, "{#upper}hi {name}{/upper}", data))
		assert.Equal(t, "HI", render(t, e, "{#shout}hi{/shout}", data))
	})

	t.Run("registered under a name", func(t *testing.T) {
		e := MustNew(WithSectionHelperName("loud", upperFactory{}))
		assert.Equal(t, "X", render(t, e, "{#loud}x{/loud}", nil))
		_, err := e.Parse("{#upper}x{/upper}")
		assert.Error(t, err)
	})

	t.Run("nil factory", func(t *testing.T) {
		_, err := New(WithSectionHelper(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgNilFactory)
	})

	t.Run("without defaults", func(t *testing.T) {
		e := MustNew(WithoutDefaults(), WithSectionHelper(upperFactory{}))
		_, err := e.Parse("{#if x}y{/if}")
		assert.Error(t, err)
	})
}
