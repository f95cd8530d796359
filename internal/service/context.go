package service

import (
	"fmt"
	"strings"

	"github.com/simppl/reddify/internal/model"
)

const (
	contextPreamble = "Here are some relevant Reddit posts to help answer the question:\n\n"

	// Hard per-document budget keeps the assembled prompt inside the
	// generation model's input window. Titles are never truncated.
	maxBodyChars     = 800
	truncationMarker = "... [content truncated]"
)

// BuildContext renders ranked documents into one prompt-ready block. The
// second return is false when there is nothing to render, which the
// orchestrator must treat as "do not call the generator", not as an empty
// context.
func BuildContext(docs []model.RetrievedDocument) (string, bool) {
	if len(docs) == 0 {
		return "", false
	}
	var b strings.Builder
	b.WriteString(contextPreamble)
	for i, doc := range docs {
		fmt.Fprintf(&b, "[POST %d] r/%s - %s\n", i+1, doc.Subreddit, doc.Title)
		b.WriteString(truncateBody(doc.Body))
		b.WriteString("\n\n")
	}
	return b.String(), true
}

func truncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= maxBodyChars {
		return body
	}
	return string(runes[:maxBodyChars]) + truncationMarker
}
