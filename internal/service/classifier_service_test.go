package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/simppl/reddify/internal/classifier"
	appErr "github.com/simppl/reddify/internal/pkg/errors"
)

func newPredictServer(t *testing.T, label string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"label": "` + label + `"}`))
	}))
}

func TestClassifierService_PredictAfterProbe(t *testing.T) {
	subredditSrv := newPredictServer(t, "golang")
	defer subredditSrv.Close()
	sentimentSrv := newPredictServer(t, "positive")
	defer sentimentSrv.Close()

	svc := NewClassifierService(
		classifier.New(subredditSrv.URL, time.Second),
		classifier.New(sentimentSrv.URL, time.Second),
	)
	svc.CheckAvailability(context.Background())

	label, err := svc.PredictSubreddit(context.Background(), "How do I use goroutines?")
	require.NoError(t, err)
	require.Equal(t, "golang", label)

	label, err = svc.PredictSentiment(context.Background(), "I love this library")
	require.NoError(t, err)
	require.Equal(t, "positive", label)
}

func TestClassifierService_UnavailableBeforeProbe(t *testing.T) {
	srv := newPredictServer(t, "golang")
	defer srv.Close()

	svc := NewClassifierService(classifier.New(srv.URL, time.Second), nil)

	_, err := svc.PredictSubreddit(context.Background(), "title")
	require.ErrorIs(t, err, appErr.ErrModelUnavailable)
}

func TestClassifierService_MissingClient(t *testing.T) {
	svc := NewClassifierService(nil, nil)
	svc.CheckAvailability(context.Background())

	_, err := svc.PredictSubreddit(context.Background(), "title")
	require.ErrorIs(t, err, appErr.ErrModelUnavailable)
	_, err = svc.PredictSentiment(context.Background(), "title")
	require.ErrorIs(t, err, appErr.ErrModelUnavailable)
}

func TestClassifierService_BlankTitle(t *testing.T) {
	svc := NewClassifierService(nil, nil)
	_, err := svc.PredictSubreddit(context.Background(), "   ")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestClassifierService_ProbeFlipsFlagDown(t *testing.T) {
	var healthy bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte(`{"label": "golang"}`))
	}))
	defer srv.Close()

	svc := NewClassifierService(classifier.New(srv.URL, time.Second), nil)

	healthy = true
	svc.CheckAvailability(context.Background())
	_, err := svc.PredictSubreddit(context.Background(), "title")
	require.NoError(t, err)

	healthy = false
	svc.CheckAvailability(context.Background())
	_, err = svc.PredictSubreddit(context.Background(), "title")
	require.ErrorIs(t, err, appErr.ErrModelUnavailable)
}
