package types

// Document is an input record read from a JSON-lines file.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// GoldEntities lists the curated terms and types of one training document.
type GoldEntities struct {
	Terms []string `json:"terms"`
	Types []string `json:"types"`
}
