package notify

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/ignite/list-engine/internal/lists"
	"github.com/ignite/list-engine/internal/pkg/logger"
)

//go:embed templates
var templateFS embed.FS

// ContentType tags how a template body was authored.
type ContentType string

const (
	ContentTypePlain ContentType = "plain"
	ContentTypeMJML  ContentType = "mjml"
)

// ErrNoOverride is returned by an OverrideStore when the form carries no
// override for the requested kind.
var ErrNoOverride = errors.New("no override template")

// OverrideStore loads list-specific override templates. GetOverride returns
// the override authored for the kind as a single rich document.
type OverrideStore interface {
	GetOverride(ctx context.Context, formID int64, kind Kind) (string, error)
}

// ResolvedTemplate is the outcome of template resolution: raw text and HTML
// sources plus the layout the HTML body renders into. Override reports
// whether list-specific content was selected.
type ResolvedTemplate struct {
	Text        string
	HTML        string
	Layout      string
	ContentType ContentType
	Override    bool
}

// Resolver selects the template pair for a notification: the list's custom
// override when present and loadable, the built-in default otherwise. The
// fallback is total -- an absent or broken override degrades to default
// content and is never surfaced to the caller, since delivery must proceed
// with at most reduced output quality.
type Resolver struct {
	overrides OverrideStore
	defaults  map[Kind]defaultPair
	layout    string
}

type defaultPair struct {
	text string
	html string
}

// NewResolver loads the embedded defaults and wraps the override store.
// A nil store disables overrides entirely.
func NewResolver(overrides OverrideStore) (*Resolver, error) {
	layout, err := templateFS.ReadFile("templates/layout.liquid")
	if err != nil {
		return nil, fmt.Errorf("loading layout template: %w", err)
	}

	r := &Resolver{
		overrides: overrides,
		defaults:  make(map[Kind]defaultPair, len(subjectPhrases)),
		layout:    string(layout),
	}
	for kind := range subjectPhrases {
		text, err := templateFS.ReadFile(fmt.Sprintf("templates/mail-%s-text.liquid", kind))
		if err != nil {
			return nil, fmt.Errorf("loading default text template for %s: %w", kind, err)
		}
		html, err := templateFS.ReadFile(fmt.Sprintf("templates/mail-%s-html.liquid", kind))
		if err != nil {
			return nil, fmt.Errorf("loading default html template for %s: %w", kind, err)
		}
		r.defaults[kind] = defaultPair{text: string(text), html: string(html)}
	}
	return r, nil
}

// Resolve returns the template pair for the list and kind.
func (r *Resolver) Resolve(ctx context.Context, list *lists.List, kind Kind) ResolvedTemplate {
	if r.overrides != nil && list.DefaultForm != nil {
		doc, err := r.overrides.GetOverride(ctx, *list.DefaultForm, kind)
		switch {
		case err == nil && doc != "":
			// Overrides are authored as one rich document; it serves as
			// both the text and html source.
			return ResolvedTemplate{
				Text:        doc,
				HTML:        doc,
				Layout:      r.layout,
				ContentType: ContentTypeMJML,
				Override:    true,
			}
		case err != nil && !errors.Is(err, ErrNoOverride):
			logger.Warn("override template unavailable, using default",
				"list", list.CID, "kind", string(kind), "error", err)
		}
	}

	return r.Default(kind)
}

// Default returns the built-in template pair for a kind.
func (r *Resolver) Default(kind Kind) ResolvedTemplate {
	pair := r.defaults[kind]
	return ResolvedTemplate{
		Text:        pair.text,
		HTML:        pair.html,
		Layout:      r.layout,
		ContentType: ContentTypeMJML,
	}
}
