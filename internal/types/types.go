package types

// Candidate is one publication discovered during a listing pass. The URL is
// the stable identity key; the title is display-only and may change between
// runs.
type Candidate struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
