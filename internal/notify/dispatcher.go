package notify

import (
	"context"
	"fmt"

	"github.com/ignite/list-engine/internal/fields"
	"github.com/ignite/list-engine/internal/lists"
	"github.com/ignite/list-engine/internal/mailer"
	"github.com/ignite/list-engine/internal/pkg/logger"
	"github.com/ignite/list-engine/internal/subscribers"
)

// FieldLister loads the field definitions of a list.
type FieldLister interface {
	ListFields(ctx context.Context, listID int64) ([]*fields.FieldDefinition, error)
}

// SettingsReader loads a settings snapshot for the given keys.
type SettingsReader interface {
	GetSettings(ctx context.Context, keys []string) (map[string]string, error)
}

// Dispatcher assembles and sends subscription notifications. Field and
// settings reads are load-bearing and fail the dispatch; template override
// problems degrade to default content; a sink failure is logged and
// swallowed so the subscription flow that triggered the notification still
// completes.
type Dispatcher struct {
	fields   FieldLister
	settings SettingsReader
	resolver *Resolver
	renderer *Renderer
	sink     mailer.Sink
}

// NewDispatcher wires a dispatcher.
func NewDispatcher(fl FieldLister, sr SettingsReader, resolver *Resolver, renderer *Renderer, sink mailer.Sink) *Dispatcher {
	return &Dispatcher{
		fields:   fl,
		settings: sr,
		resolver: resolver,
		renderer: renderer,
		sink:     sink,
	}
}

// Send dispatches one notification of the given kind to email. sub may be
// nil when no subscription record exists yet, as with the initial
// subscription confirmation request. relativeURLs maps merge keys to
// service-relative paths that get resolved against the service URL.
//
// Returns nil when the notification was suppressed by the list's
// disableConfirmations setting.
func (d *Dispatcher) Send(ctx context.Context, list *lists.List, email string, kind Kind, sub *subscribers.Subscription, relativeURLs map[string]string) error {
	if !Valid(kind) {
		return fmt.Errorf("unknown notification kind %q", kind)
	}

	settings, err := d.settings.GetSettings(ctx, settingsKeys)
	if err != nil {
		return fmt.Errorf("reading settings for %s notification: %w", kind, err)
	}

	defs, err := d.fields.ListFields(ctx, list.ID)
	if err != nil {
		return fmt.Errorf("reading fields for %s notification: %w", kind, err)
	}
	gfs := fields.BuildGroupedViews(defs)

	if settings[lists.SettingDisableConfirmations] != "" && !alwaysSend[kind] {
		logger.Debug("notification suppressed by disableConfirmations",
			"list", list.CID, "kind", string(kind))
		return nil
	}

	mc, err := BuildMergeContext(settings, list, sub, gfs, relativeURLs)
	if err != nil {
		return fmt.Errorf("building merge context for %s notification: %w", kind, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	tpl := d.resolver.Resolve(ctx, list, kind)
	text, html := d.renderBodies(list, kind, tpl, mc.Data)

	msg := mailer.Message{
		From: mailer.Address{
			Name:    settings[lists.SettingDefaultFrom],
			Address: settings[lists.SettingDefaultAddress],
		},
		To: mailer.Address{
			Name:    mc.RecipientName,
			Address: email,
		},
		Subject:        fmt.Sprintf("%s: %s", list.Name, subjectPhrases[kind]),
		EncryptionKeys: mc.EncryptionKeys,
	}
	content := mailer.Content{
		HTML:      html,
		Text:      text,
		MergeData: mc.Data,
	}

	if err := d.sink.Send(ctx, msg, content); err != nil {
		logger.Error("notification delivery failed",
			"list", list.CID, "kind", string(kind),
			"email", logger.RedactEmail(email), "error", err)
	}
	return nil
}

// renderBodies renders the text and HTML bodies. A broken override falls
// back to the default template for the failing body.
func (d *Dispatcher) renderBodies(list *lists.List, kind Kind, tpl ResolvedTemplate, data map[string]any) (text, html string) {
	textKey := cacheKey(list, kind, tpl.Override, "text")
	htmlKey := cacheKey(list, kind, tpl.Override, "html")

	text, textErr := d.renderer.Render(textKey, tpl.Text, data)
	html, htmlErr := d.renderer.Render(htmlKey, wrapLayout(tpl), data)
	if textErr == nil && htmlErr == nil {
		return text, html
	}

	logger.Warn("template render failed",
		"list", list.CID, "kind", string(kind), "override", tpl.Override,
		"textError", textErr, "htmlError", htmlErr)

	if !tpl.Override {
		// Defaults are embedded and known good; if one still fails the raw
		// source already came back from Render and is the best we have.
		return text, html
	}

	def := d.resolver.Default(kind)
	if textErr != nil {
		text, _ = d.renderer.Render(cacheKey(list, kind, false, "text"), def.Text, data)
	}
	if htmlErr != nil {
		html, _ = d.renderer.Render(cacheKey(list, kind, false, "html"), wrapLayout(def), data)
	}
	return text, html
}

// wrapLayout nests the HTML body source inside the layout by substituting
// the layout's content slot. Rendering then runs over the combined source
// so both layout and body see the same merge data.
func wrapLayout(tpl ResolvedTemplate) string {
	if tpl.Layout == "" {
		return tpl.HTML
	}
	return replaceContentSlot(tpl.Layout, tpl.HTML)
}

func cacheKey(list *lists.List, kind Kind, override bool, body string) string {
	if override {
		// Override content can change between sends; skip the cache.
		return ""
	}
	return fmt.Sprintf("default:%s:%s", kind, body)
}

// SendSubscriptionConfirmed notifies a subscriber that their subscription is
// active.
func (d *Dispatcher) SendSubscriptionConfirmed(ctx context.Context, list *lists.List, email string, sub *subscribers.Subscription) error {
	return d.Send(ctx, list, email, KindSubscriptionConfirmed, sub, map[string]string{
		"preferencesUrl": fmt.Sprintf("/subscription/%s/manage/%s", list.CID, sub.CID),
		"unsubscribeUrl": fmt.Sprintf("/subscription/%s/unsubscribe/%s", list.CID, sub.CID),
	})
}

// SendAlreadySubscribed tells an existing subscriber that their address is
// already registered, with links to manage the existing subscription.
func (d *Dispatcher) SendAlreadySubscribed(ctx context.Context, list *lists.List, email string, sub *subscribers.Subscription) error {
	return d.Send(ctx, list, email, KindAlreadySubscribed, sub, map[string]string{
		"preferencesUrl": fmt.Sprintf("/subscription/%s/manage/%s", list.CID, sub.CID),
		"unsubscribeUrl": fmt.Sprintf("/subscription/%s/unsubscribe/%s", list.CID, sub.CID),
	})
}

// SendConfirmAddressChange asks the new address to confirm an email change.
// confirmCID identifies the pending confirmation, not the subscription.
func (d *Dispatcher) SendConfirmAddressChange(ctx context.Context, list *lists.List, email string, confirmCID string, sub *subscribers.Subscription) error {
	return d.Send(ctx, list, email, KindConfirmAddressChange, sub, map[string]string{
		"confirmUrl": fmt.Sprintf("/subscription/confirm/%s", confirmCID),
	})
}

// SendConfirmSubscription asks a prospective subscriber to confirm opt-in.
func (d *Dispatcher) SendConfirmSubscription(ctx context.Context, list *lists.List, email string, confirmCID string, sub *subscribers.Subscription) error {
	return d.Send(ctx, list, email, KindConfirmSubscription, sub, map[string]string{
		"confirmUrl": fmt.Sprintf("/subscription/confirm/%s", confirmCID),
	})
}

// SendConfirmUnsubscription asks a subscriber to confirm opting out.
func (d *Dispatcher) SendConfirmUnsubscription(ctx context.Context, list *lists.List, email string, confirmCID string, sub *subscribers.Subscription) error {
	return d.Send(ctx, list, email, KindConfirmUnsubscription, sub, map[string]string{
		"confirmUrl": fmt.Sprintf("/subscription/confirm/%s", confirmCID),
	})
}

// SendUnsubscriptionConfirmed notifies a former subscriber that they are
// unsubscribed, with a link to subscribe again.
func (d *Dispatcher) SendUnsubscriptionConfirmed(ctx context.Context, list *lists.List, email string, sub *subscribers.Subscription) error {
	return d.Send(ctx, list, email, KindUnsubscriptionConfirmed, sub, map[string]string{
		"subscribeUrl": fmt.Sprintf("/subscription/%s?cid=%s", list.CID, sub.CID),
	})
}
