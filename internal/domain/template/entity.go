// Package template defines clinical document templates: the ordered,
// typed sections that dictated content is classified into, template
// validation, the built-in template registry, and the whole-template
// suggestion heuristics.
package template

import (
	"fmt"
	"strings"

	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// Section is one named, typed region of a clinical document template.
// Sections are immutable once a template is bound to a session.
type Section struct {
	// ID is the stable string key content is assigned under.
	ID string `json:"id"`

	// Title is the human-readable section heading.
	Title string `json:"title"`

	// Type drives the contextual scoring cues applied to this section.
	Type clinical.SectionType `json:"type"`

	// Keywords is the case-insensitive keyword set matched against
	// sentences during scoring.
	Keywords []string `json:"keywords"`
}

// Definition is a complete document template.
type Definition struct {
	// ID is the stable template identifier.
	ID string `json:"id"`

	// Name is the human-readable template name.
	Name string `json:"name"`

	// TriggerKeywords are template-level phrases whose presence in
	// accumulated text strongly suggests this template (e.g. "emergency").
	TriggerKeywords []string `json:"trigger_keywords,omitempty"`

	// Sections is the ordered section schema.
	Sections []Section `json:"sections"`
}

// Validate checks the structural invariants of a template definition:
// a non-empty id, at least one section, no empty section ids, and no
// duplicate section ids.  A violation is fatal to the session attempting to
// bind the template; the caller must correct the definition and retry.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.InvalidTemplate("template id must not be empty")
	}
	if len(d.Sections) == 0 {
		return errors.InvalidTemplate("template must have at least one section").
			WithDetail("template=" + d.ID)
	}
	seen := make(map[string]struct{}, len(d.Sections))
	for i, s := range d.Sections {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return errors.InvalidTemplate(fmt.Sprintf("section %d has an empty id", i)).
				WithDetail("template=" + d.ID)
		}
		if _, dup := seen[id]; dup {
			return errors.InvalidTemplate("duplicate section id " + id).
				WithDetail("template=" + d.ID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// SectionByID returns the section with the given id, if present.
func (d Definition) SectionByID(id string) (Section, bool) {
	for _, s := range d.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// SectionIDs returns the section ids in schema order.
func (d Definition) SectionIDs() []string {
	ids := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		ids = append(ids, s.ID)
	}
	return ids
}
