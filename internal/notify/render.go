package notify

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"sync"

	"github.com/osteele/liquid"
)

// contentSlot marks where the layout receives the rendered body.
const contentSlot = "{{ content }}"

// replaceContentSlot splices the body source into the layout before the
// combined document is parsed, so layout and body share one render pass.
func replaceContentSlot(layout, body string) string {
	return strings.Replace(layout, contentSlot, body, 1)
}

// Renderer renders Liquid templates with caching. Parsed templates are
// cached by key, so repeated notifications of the same kind skip parsing.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewRenderer creates a renderer with the notification filters registered.
func NewRenderer() *Renderer {
	engine := liquid.NewEngine()

	// Fallback value: {{ firstName | default: "there" }}
	engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	// URL encode: {{ email | urlencode }}
	engine.RegisterFilter("urlencode", func(s string) string {
		return url.QueryEscape(s)
	})

	// HTML escape: {{ value | escape }}
	engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})

	return &Renderer{engine: engine}
}

// Render processes a template with the given data. The parsed template is
// cached under cacheKey when non-empty. On error the original source is
// returned alongside the error so the caller can decide whether to degrade.
func (r *Renderer) Render(cacheKey, src string, data map[string]any) (string, error) {
	if cacheKey != "" {
		if cached, ok := r.cache.Load(cacheKey); ok {
			return cached.(*liquid.Template).RenderString(data)
		}
	}

	tpl, err := r.engine.ParseString(src)
	if err != nil {
		return src, err
	}
	if cacheKey != "" {
		r.cache.Store(cacheKey, tpl)
	}

	out, err := tpl.RenderString(data)
	if err != nil {
		return src, err
	}
	return out, nil
}
