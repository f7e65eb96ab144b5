// Package toxin defines the domain model for chemical toxin extraction.
//
// The same structs serve two purposes: they are the JSON shapes returned by
// the serving layer, and their jsonschema tags drive the output schema
// declared to the completion service during structured extraction.
package toxin

// Toxin is a single extracted chemical toxin with its attributes.
// Name and ReferenceContext are always non-empty after a successful
// extraction; the list fields may be empty.
type Toxin struct {
	// Name is the chemical or common name of the toxin.
	Name string `json:"name" jsonschema:"description=Chemical or common name of the toxin,required"`

	// Sources lists where the toxin originates or is found.
	Sources []string `json:"sources" jsonschema:"description=Sources where the toxin originates or is found,required"`

	// HealthEffects lists documented effects on human health.
	HealthEffects []string `json:"health_effects" jsonschema:"description=Documented effects of the toxin on human health,required"`

	// RelatedDiseases lists diseases associated with exposure.
	RelatedDiseases []string `json:"related_diseases" jsonschema:"description=Diseases associated with exposure to the toxin,required"`

	// ReferenceContext is the passage of the source text the toxin was
	// extracted from.
	ReferenceContext string `json:"reference_context" jsonschema:"description=Passage of the source text the toxin was extracted from,required"`

	// RelevantRegulations lists regulations that apply to the toxin.
	RelevantRegulations []string `json:"relevant_regulations" jsonschema:"description=Regulations that apply to the toxin,required"`
}

// List is the structured output shape requested from the completion service:
// an ordered list of toxins found in one source text.
type List struct {
	Toxins []Toxin `json:"toxins" jsonschema:"description=Toxins found in the text,required"`
}

// Response bundles the toxins accumulated across all consulted sources with
// the URLs that were resolved to produce them. URLs is empty when the input
// contained no URLs, and preserves discovery order including duplicates.
type Response struct {
	Toxins []Toxin  `json:"toxins"`
	URLs   []string `json:"urls"`
}
