package validation

// SearchRequest is the validated payload of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
}

// SearchInput holds the decoded fields before validation. Values keep whatever
// type the body decoder produced, so type rules can be checked.
type SearchInput struct {
	Query interface{}
	Page  interface{}
}

// DefaultPage applies when the body has no page field.
const DefaultPage = 1

// InputFromFields picks query and page out of a decoded body, defaulting page.
func InputFromFields(fields map[string]interface{}) SearchInput {
	in := SearchInput{Query: fields["query"], Page: DefaultPage}
	if p, ok := fields["page"]; ok {
		in.Page = p
	}
	return in
}
