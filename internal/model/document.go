package model

// Document is one Reddit post as stored in the vector index. Every stored
// document carries at least one of Title/Body; the ingester enforces this
// before anything is embedded.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Subreddit  string    `json:"subreddit"`
	Author     string    `json:"author"`
	URL        string    `json:"url"`
	CreatedUTC string    `json:"created_utc"`
	Embedding  []float32 `json:"-"`
}

// RetrievedDocument pairs a document with the similarity score reported by
// the index backend. The score is an opaque, backend-defined distance and
// is only ever logged, never compared across backends.
type RetrievedDocument struct {
	Document
	Score float32 `json:"score"`
}
