package model

import (
	"strings"
	"time"
)

// Kind separates definitions shipped with the builder from user-authored ones.
type Kind string

const (
	KindBuiltin Kind = "built-in"
	KindCustom  Kind = "custom"
)

// CategoryExitIntent is the reserved category that makes the renderer attach
// an exit-intent detector and modal to an instance.
const CategoryExitIntent = "Exit Intent"

// BuiltinKind identifies a built-in renderer. The set is closed: definitions
// naming anything else are rejected when the catalog loads.
type BuiltinKind string

const (
	BuiltinExitDiscount        BuiltinKind = "exit-intent-discount"
	BuiltinExitFreebie         BuiltinKind = "exit-intent-freebie"
	BuiltinExitNewsletter      BuiltinKind = "exit-intent-newsletter"
	BuiltinExitDemo            BuiltinKind = "exit-intent-demo"
	BuiltinExitSurvey          BuiltinKind = "exit-intent-survey"
	BuiltinExitSocial          BuiltinKind = "exit-intent-social"
	BuiltinExitEcommerceFunnel BuiltinKind = "exit-intent-ecommerce-funnel"
	BuiltinExitSaaSFunnel      BuiltinKind = "exit-intent-saas-funnel"
	BuiltinExitLeadGenFunnel   BuiltinKind = "exit-intent-lead-gen-funnel"
	BuiltinHeroClassic         BuiltinKind = "hero-classic"
	BuiltinHeroTrust           BuiltinKind = "hero-trust"
	BuiltinHeroUrgency         BuiltinKind = "hero-urgency"
	BuiltinHeroBenefit         BuiltinKind = "hero-benefit"
	BuiltinHeroStory           BuiltinKind = "hero-story"
	BuiltinSocialProofBar      BuiltinKind = "social-proof-bar"
	BuiltinValuePropGrid       BuiltinKind = "value-prop-grid"
	BuiltinFeatureShowcase     BuiltinKind = "feature-showcase"
	BuiltinTestimonial         BuiltinKind = "testimonial"
	BuiltinCTASection          BuiltinKind = "cta-section"
	BuiltinConversionForm      BuiltinKind = "conversion-form"
	BuiltinTextBlock           BuiltinKind = "text-block"
	BuiltinHeading             BuiltinKind = "heading"
)

// BuiltinKinds lists every known built-in kind.
var BuiltinKinds = []BuiltinKind{
	BuiltinExitDiscount, BuiltinExitFreebie, BuiltinExitNewsletter, BuiltinExitDemo,
	BuiltinExitSurvey, BuiltinExitSocial, BuiltinExitEcommerceFunnel, BuiltinExitSaaSFunnel,
	BuiltinExitLeadGenFunnel, BuiltinHeroClassic, BuiltinHeroTrust, BuiltinHeroUrgency,
	BuiltinHeroBenefit, BuiltinHeroStory, BuiltinSocialProofBar, BuiltinValuePropGrid,
	BuiltinFeatureShowcase, BuiltinTestimonial, BuiltinCTASection, BuiltinConversionForm,
	BuiltinTextBlock, BuiltinHeading,
}

// ParseBuiltinKind accepts either a slug ("text-block") or a display name
// ("Text Block") and reports whether it names a known kind.
func ParseBuiltinKind(s string) (BuiltinKind, bool) {
	slug := strings.ToLower(strings.Join(strings.Fields(s), "-"))
	for _, k := range BuiltinKinds {
		if string(k) == slug {
			return k, true
		}
	}
	return "", false
}

// ComponentDefinition describes a reusable component available in the library.
type ComponentDefinition struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description"`
	Category    string      `json:"category" yaml:"category"`
	Kind        Kind        `json:"type" yaml:"type"`
	Builtin     BuiltinKind `json:"builtin,omitempty" yaml:"builtin"`
	Schema      Schema      `json:"props_schema" yaml:"props"`
	Code        string      `json:"component_code,omitempty" yaml:"-"`
	Styles      string      `json:"styles,omitempty" yaml:"-"`
	Directory   string      `json:"directory,omitempty" yaml:"-"`
	Version     string      `json:"version,omitempty" yaml:"version"`
	IsPublic    bool        `json:"is_public" yaml:"-"`
	IsActive    bool        `json:"is_active" yaml:"-"`
	CreatedAt   time.Time   `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time   `json:"updated_at" yaml:"-"`
}

// IsExitIntent reports whether instances of the definition get a detector.
func (d *ComponentDefinition) IsExitIntent() bool {
	return d.Category == CategoryExitIntent
}

// DefaultProps seeds a fresh instance: every schema key gets its declared
// default, or the empty string when none is declared.
func (d *ComponentDefinition) DefaultProps() Props {
	props := make(Props, len(d.Schema))
	for _, f := range d.Schema {
		if f.Spec.Default.IsZero() {
			props[f.Key] = StringValue("")
			continue
		}
		props[f.Key] = f.Spec.Default
	}
	return props
}
