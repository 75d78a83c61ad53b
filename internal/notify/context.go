package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ignite/list-engine/internal/fields"
	"github.com/ignite/list-engine/internal/lists"
	"github.com/ignite/list-engine/internal/subscribers"
)

// MergeContext is the substitution data handed to template rendering, plus
// the delivery metadata extracted alongside it.
type MergeContext struct {
	Data           map[string]any
	EncryptionKeys []string
	RecipientName  string
}

// settingsKeys are the settings every notification reads.
var settingsKeys = []string{
	lists.SettingDefaultHomepage,
	lists.SettingDefaultFrom,
	lists.SettingDefaultAddress,
	lists.SettingDefaultPostaddress,
	lists.SettingServiceURL,
	lists.SettingDisableConfirmations,
}

// BuildMergeContext assembles the substitution data for one notification.
// Every relative URL is resolved against the service URL with standard
// base + relative-reference semantics, so absolute paths replace the base
// path and scheme-relative references replace host and path.
func BuildMergeContext(settings map[string]string, list *lists.List, sub *subscribers.Subscription, gfs []*fields.GroupedField, relativeURLs map[string]string) (*MergeContext, error) {
	serviceURL := settings[lists.SettingServiceURL]
	base, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service URL %q: %w", serviceURL, err)
	}

	homepage := settings[lists.SettingDefaultHomepage]
	if homepage == "" {
		homepage = serviceURL
	}

	data := map[string]any{
		"title":              list.Name,
		"homepage":           homepage,
		"contactAddress":     settings[lists.SettingDefaultAddress],
		"defaultPostaddress": settings[lists.SettingDefaultPostaddress],
	}

	for key, rel := range relativeURLs {
		ref, err := url.Parse(rel)
		if err != nil {
			return nil, fmt.Errorf("invalid relative URL %q: %w", rel, err)
		}
		data[key] = base.ResolveReference(ref).String()
	}

	mc := &MergeContext{Data: data}

	if sub != nil {
		data["email"] = sub.Email
		data["firstName"] = sub.FirstName
		data["lastName"] = sub.LastName

		mc.RecipientName = displayName(sub.FirstName, sub.LastName)
		data["fullName"] = mc.RecipientName

		for _, rv := range fields.GetRow(gfs, sub.Fields) {
			if rv.Field.Kind != fields.KindGPG {
				continue
			}
			if key, ok := rv.Value.(string); ok {
				if key = strings.TrimSpace(key); key != "" {
					mc.EncryptionKeys = append(mc.EncryptionKeys, key)
				}
			}
		}
	}

	return mc, nil
}

// displayName joins the name parts with a single space, omitting empty
// parts.
func displayName(first, last string) string {
	parts := make([]string, 0, 2)
	if first != "" {
		parts = append(parts, first)
	}
	if last != "" {
		parts = append(parts, last)
	}
	return strings.Join(parts, " ")
}
