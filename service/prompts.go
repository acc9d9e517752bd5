package service

import (
	"strings"

	"lexcase-backend/prompt"
)

// fallbackPassage stands in for retrieved passages when the knowledge search
// returns nothing, so the prompt never carries an empty context section.
const fallbackPassage = `General legal principles apply: property and inheritance disputes are governed by the law of the relevant jurisdiction, ownership must be established through documentary evidence, and parties are presumed to act in good faith absent evidence to the contrary.`

const (
	summarySystem = "You are a legal analyst. You extract structured case data from legal documents and respond only with JSON."

	chatSystem = "You are a legal assistant. Answer questions about property, inheritance, and related legal matters clearly and concisely for a non-lawyer audience."

	locationSystem = "You are a real estate and GIS analysis expert. Provide accurate and detailed analysis of locations and respond only with JSON."
)

var summaryTemplate = prompt.MustNew("case-summary", `Analyze the following legal case documents.

PRIMARY DOCUMENT:
{{document}}

SUPPORTING DOCUMENTS:
{{supporting_documents}}

Return a JSON object with exactly these keys:
- "valid": boolean, whether the primary document is a genuine legal instrument
- "legitimate": boolean, whether the claim it describes appears legitimate
- "case_type": string, a short category such as "Dispute", "Inheritance", "Title Claim"
- "entities": array of {"name": string, "entity_type": "person" or "organization", "valid": boolean}
- "assets": array of {"name": string, "location": string or null, "asset_type": string, "net_worth": string or null, "coordinates": string or null}
- "summary": string, a plain-language summary of the case
- "recommendations": array of strings, ordered next steps for the case owner
- "references": array of strings, statutes or precedents relevant to the case, or null

Use null for missing fields. Return only the JSON object, no markdown, no surrounding text.`,
	prompt.Optional("supporting_documents"))

var lawOnlyTemplate = prompt.MustNew("law-only-chat", `Use the following legal reference passages to answer the question.

LEGAL REFERENCES:
{{passages}}

QUESTION:
{{query}}

Infer the relevant jurisdiction from the apparent nationality of the question and answer under that jurisdiction's law. If the references do not cover the question, give a careful general answer from broadly applicable legal principles rather than refusing. Keep the answer concise and practical.`)

var caseGroundedTemplate = prompt.MustNew("case-grounded-chat", `Use the case documents and the legal reference passages to answer the question about this case.

LEGAL REFERENCES:
{{passages}}

CASE DOCUMENT:
{{document}}

SUPPORTING DOCUMENTS:
{{supporting_documents}}

QUESTION:
{{query}}

Ground the answer in the case documents where they are relevant; fall back on the legal references and general legal principles where they are not. Keep the answer concise and practical.`)

var locationTemplate = prompt.MustNew("location-analysis", `Analyze the following address for real estate investment potential.

Address: {{address}}

Return a JSON object with exactly these keys, every value a number between 0 and 1:
- "property_buying_risk" (1 is highest risk)
- "property_renting_risk" (1 is highest risk)
- "flood_risk" (1 is highest risk)
- "crime_rate" (1 is highest risk)
- "air_quality_index" (1 is best)
- "proximity_to_amenities" (1 is best)
- "transportation_score" (1 is best)
- "neighborhood_rating" (1 is best)
- "environmental_hazards" (1 is highest risk)
- "economic_growth_potential" (1 is highest potential)

Return only the JSON object, no markdown, no surrounding text.`)

const (
	// promptSegmentSize is the chunk granularity used when bounding long
	// document text for a prompt.
	promptSegmentSize = 4096

	// maxDocumentPromptBytes caps how much document text one prompt section
	// may carry.
	maxDocumentPromptBytes = 30000

	truncationNotice = "\n\n[remaining document content omitted for length]"
)

// boundPromptText limits text to whole leading chunks so an oversized
// document degrades predictably instead of being cut mid-sentence at an
// arbitrary byte. The stored document text is never touched, only the prompt
// copy.
func boundPromptText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	var b strings.Builder
	for _, segment := range prompt.Chunk(text, promptSegmentSize) {
		if b.Len()+len(segment) > limit {
			break
		}
		b.WriteString(segment)
	}
	b.WriteString(truncationNotice)
	return b.String()
}

// joinPassages formats retrieved passages as one prompt section
func joinPassages(passages []string) string {
	var b strings.Builder
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)
	}
	return b.String()
}
