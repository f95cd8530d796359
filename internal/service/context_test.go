package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simppl/reddify/internal/model"
)

func retrieved(id, subreddit, title, body string) model.RetrievedDocument {
	return model.RetrievedDocument{
		Document: model.Document{
			ID:        id,
			Title:     title,
			Body:      body,
			Subreddit: subreddit,
		},
	}
}

func TestBuildContext_Empty(t *testing.T) {
	got, ok := BuildContext(nil)
	require.False(t, ok)
	require.Equal(t, "", got)

	got, ok = BuildContext([]model.RetrievedDocument{})
	require.False(t, ok)
	require.Equal(t, "", got)
}

func TestBuildContext_OrderAndLayout(t *testing.T) {
	docs := []model.RetrievedDocument{
		retrieved("a", "golang", "First title", "first body"),
		retrieved("b", "programming", "Second title", "second body"),
	}
	got, ok := BuildContext(docs)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(got, contextPreamble))
	require.Contains(t, got, "[POST 1] r/golang - First title\nfirst body\n\n")
	require.Contains(t, got, "[POST 2] r/programming - Second title\nsecond body\n\n")
	require.Less(t, strings.Index(got, "[POST 1]"), strings.Index(got, "[POST 2]"))
}

func TestBuildContext_TruncatesLongBody(t *testing.T) {
	body := strings.Repeat("x", 1200)
	got, ok := BuildContext([]model.RetrievedDocument{retrieved("a", "golang", "t", body)})
	require.True(t, ok)
	require.Contains(t, got, strings.Repeat("x", maxBodyChars)+truncationMarker)
	require.NotContains(t, got, strings.Repeat("x", maxBodyChars+1))
}

func TestBuildContext_ShortBodyVerbatim(t *testing.T) {
	body := strings.Repeat("y", maxBodyChars)
	got, ok := BuildContext([]model.RetrievedDocument{retrieved("a", "golang", "t", body)})
	require.True(t, ok)
	require.Contains(t, got, body+"\n\n")
	require.NotContains(t, got, truncationMarker)
}

func TestTruncateBody_RuneBoundary(t *testing.T) {
	body := strings.Repeat("ü", maxBodyChars+5)
	got := truncateBody(body)
	require.Equal(t, strings.Repeat("ü", maxBodyChars)+truncationMarker, got)
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("what is the best tax policy?", "CONTEXT BLOCK")
	require.True(t, strings.HasPrefix(got, "<s>[INST]"))
	require.True(t, strings.HasSuffix(got, "[/INST]"))
	require.Contains(t, got, "User question: what is the best tax policy?")
	require.Contains(t, got, "Context from Reddit:\nCONTEXT BLOCK")
}
