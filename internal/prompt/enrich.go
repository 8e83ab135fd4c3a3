package prompt

import "strings"

// CompanyResearchMarker is the sentence the candidate template uses to introduce its JSON schema.
// Company research is inserted right before it.
const CompanyResearchMarker = "Return your answer STRICTLY in JSON format"

const companyResearchBlock = `Company research (use it to tailor the preparation tips to this employer):
{company_research}

`

// WithCompanyResearch returns the template with the company-research block placed before the
// JSON-schema marker. When the marker is missing the template comes back unchanged and
// attached is false; there is no fallback position.
func WithCompanyResearch(template string) (enriched string, attached bool) {
	idx := strings.Index(template, CompanyResearchMarker)
	if idx < 0 {
		return template, false
	}
	return template[:idx] + companyResearchBlock + template[idx:], true
}
