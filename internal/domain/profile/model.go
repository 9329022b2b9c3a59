// internal/domain/profile/model.go

package profile

import (
	"slices"
	"strings"
)

// Profile describes the entity whose social pulse is being tracked
type Profile struct {
	Name                string   `json:"name" yaml:"name"`
	ShortDescription    string   `json:"short_description,omitempty" yaml:"short_description,omitempty"`
	DetailedDescription string   `json:"detailed_description,omitempty" yaml:"detailed_description,omitempty"`
	CoreValue           string   `json:"core_value,omitempty" yaml:"core_value,omitempty"`
	Keywords            []string `json:"keywords" yaml:"keywords"`
	Hashtags            []string `json:"hashtags" yaml:"hashtags"`
	Components          []string `json:"unique_components,omitempty" yaml:"unique_components,omitempty"`
}

// TrackedAccount is a social handle whose recent posts are always fetched
type TrackedAccount struct {
	Handle      string `json:"handle" yaml:"handle"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// New builds a normalized profile
func New(name string, keywords, hashtags, components []string) *Profile {
	p := &Profile{
		Name:       name,
		Keywords:   keywords,
		Hashtags:   hashtags,
		Components: components,
	}
	p.Normalize()
	return p
}

// Normalize trims every term, drops empty ones and stores hashtags
// lower-cased without the leading '#'. Calling it twice is a no-op.
func (p *Profile) Normalize() {
	if p == nil {
		return
	}

	p.Name = strings.TrimSpace(p.Name)

	keywords := make([]string, 0, len(p.Keywords))
	for _, k := range p.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	p.Keywords = keywords

	hashtags := make([]string, 0, len(p.Hashtags))
	for _, h := range p.Hashtags {
		if h = NormalizeHashtag(h); h != "" {
			hashtags = append(hashtags, h)
		}
	}
	p.Hashtags = hashtags

	components := make([]string, 0, len(p.Components))
	for _, c := range p.Components {
		if c = strings.TrimSpace(c); c != "" {
			components = append(components, c)
		}
	}
	p.Components = components
}

// IsEmpty reports whether the profile carries nothing to score against
// or describe.
func (p *Profile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Name == "" && !p.HasTerms() && len(p.Components) == 0
}

// HasTerms reports whether at least one keyword or hashtag is present
func (p *Profile) HasTerms() bool {
	if p == nil {
		return false
	}
	return len(p.Keywords) > 0 || len(p.Hashtags) > 0
}

// ComponentLabels returns the short label of each component: the text
// before the first ':' separator, or the whole component without one.
func (p *Profile) ComponentLabels() []string {
	if p == nil {
		return nil
	}

	labels := make([]string, 0, len(p.Components))
	for _, c := range p.Components {
		label, _, _ := strings.Cut(c, ":")
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// DisplayHashtags returns the hashtags with the '#' sigil reinstated
func (p *Profile) DisplayHashtags() []string {
	if p == nil {
		return nil
	}

	out := make([]string, len(p.Hashtags))
	for i, h := range p.Hashtags {
		out[i] = "#" + h
	}
	return out
}

// SearchQuery builds the OR query used for the profile keyword search.
// Multi-word keywords are quoted so the upstream treats them as phrases.
func (p *Profile) SearchQuery() string {
	if p == nil {
		return ""
	}

	terms := make([]string, 0, len(p.Hashtags)+len(p.Keywords))
	terms = append(terms, p.DisplayHashtags()...)
	for _, k := range p.Keywords {
		if strings.ContainsAny(k, " \t") {
			k = `"` + k + `"`
		}
		terms = append(terms, k)
	}
	return strings.Join(terms, " OR ")
}

// Clone returns a deep copy so callers can hold a read-only snapshot
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	c := *p
	c.Keywords = slices.Clone(p.Keywords)
	c.Hashtags = slices.Clone(p.Hashtags)
	c.Components = slices.Clone(p.Components)
	return &c
}

// NormalizeHashtag lower-cases a hashtag and strips any leading '#'
func NormalizeHashtag(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimLeft(h, "#")
	return strings.ToLower(strings.TrimSpace(h))
}

// NormalizeHandle strips whitespace and any leading '@' from a handle
func NormalizeHandle(handle string) string {
	return strings.TrimLeft(strings.TrimSpace(handle), "@")
}

// NormalizeAccounts normalizes handles and drops accounts without one
func NormalizeAccounts(accounts []TrackedAccount) []TrackedAccount {
	out := make([]TrackedAccount, 0, len(accounts))
	for _, a := range accounts {
		a.Handle = NormalizeHandle(a.Handle)
		if a.Handle == "" {
			continue
		}
		a.Description = strings.TrimSpace(a.Description)
		out = append(out, a)
	}
	return out
}
