package model

// Source is the public projection of a retrieved document returned to the
// chat caller.
type Source struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subreddit string `json:"subreddit"`
	URL       string `json:"url"`
}

// AnswerResult is the single artifact crossing the RAG pipeline boundary.
type AnswerResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
