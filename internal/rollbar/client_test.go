package rollbar_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperr "github.com/aevon-lab/rollbar-metrics/internal/core/errors"
	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
	"github.com/aevon-lab/rollbar-metrics/internal/rollbar"
	"github.com/aevon-lab/rollbar-metrics/internal/rollbartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const occurrencesResult = `{"timepoints":[{"metrics_rows":[[
	{"field":"environment","value":"production"},
	{"field":"item_level","value":"error"},
	{"field":"occurrence_count","value":5}
]]}]}`

func TestClient_OccurrenceMetrics(t *testing.T) {
	srv := rollbartest.NewServer(t, rollbartest.Fixture{
		Metrics: map[string]string{"tok-a": occurrencesResult},
	})
	client := rollbar.NewClient(srv.URL, time.Second)

	spec, err := metrics.BuildQuery(100, 200, metrics.QueryOptions{
		GroupBy: []string{metrics.FieldEnvironment, metrics.FieldItemLevel},
		Levels:  []string{metrics.LevelError},
	})
	require.NoError(t, err)

	raw, err := client.OccurrenceMetrics(context.Background(), rollbar.Project{ID: 1, Name: "A", Token: "tok-a"}, spec)
	require.NoError(t, err)
	require.Len(t, raw.Timepoints, 1)
	require.Len(t, raw.Timepoints[0].MetricsRows, 1)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "tok-a", reqs[0].Token)
	assert.Equal(t, []metrics.QuerySpec{spec}, srv.MetricsQueries(t))
}

func TestClient_OccurrenceMetrics_ForbiddenIsTransportError(t *testing.T) {
	srv := rollbartest.NewServer(t, rollbartest.Fixture{
		MetricsStatus: map[string]int{"tok-a": http.StatusForbidden},
	})
	client := rollbar.NewClient(srv.URL, time.Second)

	_, err := client.OccurrenceMetrics(context.Background(), rollbar.Project{ID: 1, Name: "A", Token: "tok-a"}, metrics.QuerySpec{StartTime: 1, EndTime: 2})
	require.Error(t, err)

	var transportErr *apperr.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "A", transportErr.Project)
	assert.Equal(t, http.StatusForbidden, transportErr.StatusCode)
	assert.Equal(t, apperr.OpOccurrenceMetrics, transportErr.Op)
}

func TestClient_NetworkFaultHasNoStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := rollbar.NewClient(url, time.Second)
	_, err := client.ListProjects(context.Background(), "acct")

	var transportErr *apperr.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 0, transportErr.StatusCode)
	assert.Error(t, transportErr.Unwrap())
}

func TestClient_TimeoutIsBounded(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client := rollbar.NewClient(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := client.ListProjects(context.Background(), "acct")

	var transportErr *apperr.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_MalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "missing result", body: `{"err":0}`},
		{name: "null result", body: `{"err":0,"result":null}`},
		{name: "wrong result type", body: `{"err":0,"result":"nope"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := rollbar.NewClient(srv.URL, time.Second)
			_, err := client.OccurrenceMetrics(context.Background(), rollbar.Project{Name: "A", Token: "t"}, metrics.QuerySpec{StartTime: 1, EndTime: 2})

			var decodeErr *apperr.DecodeError
			require.True(t, errors.As(err, &decodeErr), "got %v", err)
			assert.Equal(t, "A", decodeErr.Project)
		})
	}
}

func TestClient_EnvelopeErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"err":1,"message":"project disabled"}`))
	}))
	defer srv.Close()

	client := rollbar.NewClient(srv.URL, time.Second)
	_, err := client.ListAccessTokens(context.Background(), "acct", rollbar.ProjectInfo{ID: 9, Name: "B"})

	var transportErr *apperr.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "B", transportErr.Project)
	assert.Equal(t, "project disabled", transportErr.Message)
}

func TestClient_ListProjectsAndTokens(t *testing.T) {
	srv := rollbartest.NewServer(t, rollbartest.Fixture{
		AccountToken: "acct",
		Projects: []rollbar.ProjectInfo{
			{ID: 1, Name: "A", Status: "enabled"},
			{ID: 2, Name: "B", Status: "disabled"},
		},
		Tokens: map[int64][]rollbar.AccessToken{
			1: {{Name: "read", Scopes: []string{"read"}, AccessToken: "tok-a"}},
		},
	})
	client := rollbar.NewClient(srv.URL, time.Second)

	projects, err := client.ListProjects(context.Background(), "acct")
	require.NoError(t, err)
	require.Len(t, projects, 2)

	tokens, err := client.ListAccessTokens(context.Background(), "acct", projects[0])
	require.NoError(t, err)
	require.Equal(t, []rollbar.AccessToken{{Name: "read", Scopes: []string{"read"}, AccessToken: "tok-a"}}, tokens)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/api/1/project/1/access_tokens", reqs[1].Path)
	assert.Equal(t, "acct", reqs[1].Token)
}

func TestClient_GetItem(t *testing.T) {
	user := int64(77)
	srv := rollbartest.NewServer(t, rollbartest.Fixture{
		Items: map[int64]rollbar.ItemDetail{
			10: {Title: "boom", AssignedUserID: &user},
		},
	})
	client := rollbar.NewClient(srv.URL, time.Second)
	project := rollbar.Project{Name: "A", Token: "tok-a"}

	item, err := client.GetItem(context.Background(), project, 10)
	require.NoError(t, err)
	assert.Equal(t, "boom", item.Title)
	require.NotNil(t, item.AssignedUserID)
	assert.Equal(t, int64(77), *item.AssignedUserID)

	_, err = client.GetItem(context.Background(), project, 11)
	var transportErr *apperr.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusNotFound, transportErr.StatusCode)
}

func TestAccessToken_ReadOnly(t *testing.T) {
	assert.True(t, rollbar.AccessToken{Scopes: []string{"read"}}.ReadOnly())
	assert.False(t, rollbar.AccessToken{Scopes: []string{"read", "write"}}.ReadOnly())
	assert.False(t, rollbar.AccessToken{Scopes: []string{"write"}}.ReadOnly())
	assert.False(t, rollbar.AccessToken{}.ReadOnly())
}
