package resolver_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	apperr "github.com/aevon-lab/rollbar-metrics/internal/core/errors"
	resolvermocks "github.com/aevon-lab/rollbar-metrics/internal/mocks/resolver"
	"github.com/aevon-lab/rollbar-metrics/internal/resolver"
	"github.com/aevon-lab/rollbar-metrics/internal/rollbar"
	"github.com/aevon-lab/rollbar-metrics/internal/rollbartest"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var allowed = []string{"read", "metrics-read"}

func TestResolve_KeepsOnlyEnabledProjects(t *testing.T) {
	client := resolvermocks.NewClient(t)
	p1 := rollbar.ProjectInfo{ID: 1, Name: "api", Status: "enabled"}
	p2 := rollbar.ProjectInfo{ID: 2, Name: "legacy", Status: "disabled"}

	client.EXPECT().ListProjects(mock.Anything, "acct").Return([]rollbar.ProjectInfo{p1, p2}, nil).Once()
	client.EXPECT().ListAccessTokens(mock.Anything, "acct", p1).Return([]rollbar.AccessToken{
		{Name: "read", Scopes: []string{"read"}, AccessToken: "tok-1"},
	}, nil).Once()

	projects, err := resolver.New(client).Resolve(context.Background(), "acct", allowed)
	require.NoError(t, err)
	require.Equal(t, []rollbar.Project{{ID: 1, Name: "api", Token: "tok-1"}}, projects)
}

func TestResolve_NeverAdoptsBroaderToken(t *testing.T) {
	tests := []struct {
		name   string
		tokens []rollbar.AccessToken
		want   []rollbar.Project
	}{
		{
			name: "write scope alongside read is rejected",
			tokens: []rollbar.AccessToken{
				{Name: "read", Scopes: []string{"read", "write"}, AccessToken: "rw"},
			},
			want: []rollbar.Project{},
		},
		{
			name: "name outside allow-list is rejected",
			tokens: []rollbar.AccessToken{
				{Name: "post_server_item", Scopes: []string{"read"}, AccessToken: "other"},
			},
			want: []rollbar.Project{},
		},
		{
			name: "first matching token wins",
			tokens: []rollbar.AccessToken{
				{Name: "read", Scopes: []string{"write"}, AccessToken: "w"},
				{Name: "metrics-read", Scopes: []string{"read"}, AccessToken: "first"},
				{Name: "read", Scopes: []string{"read"}, AccessToken: "second"},
			},
			want: []rollbar.Project{{ID: 7, Name: "web", Token: "first"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := resolvermocks.NewClient(t)
			info := rollbar.ProjectInfo{ID: 7, Name: "web", Status: "enabled"}
			client.EXPECT().ListProjects(mock.Anything, "acct").Return([]rollbar.ProjectInfo{info}, nil).Once()
			client.EXPECT().ListAccessTokens(mock.Anything, "acct", info).Return(tc.tokens, nil).Once()

			projects, err := resolver.New(client).Resolve(context.Background(), "acct", allowed)
			require.NoError(t, err)
			require.Equal(t, tc.want, projects)
			for _, p := range projects {
				require.NotEqual(t, "rw", p.Token)
			}
		})
	}
}

func TestResolve_TokenLookupFailureIsIsolated(t *testing.T) {
	client := resolvermocks.NewClient(t)
	a := rollbar.ProjectInfo{ID: 1, Name: "A", Status: "enabled"}
	b := rollbar.ProjectInfo{ID: 2, Name: "B", Status: "enabled"}

	client.EXPECT().ListProjects(mock.Anything, "acct").Return([]rollbar.ProjectInfo{a, b}, nil).Once()
	client.EXPECT().ListAccessTokens(mock.Anything, "acct", a).
		Return(nil, &apperr.TransportError{Op: apperr.OpListAccessTokens, Project: "A", StatusCode: http.StatusForbidden}).Once()
	client.EXPECT().ListAccessTokens(mock.Anything, "acct", b).Return([]rollbar.AccessToken{
		{Name: "read", Scopes: []string{"read"}, AccessToken: "tok-b"},
	}, nil).Once()

	projects, err := resolver.New(client).Resolve(context.Background(), "acct", allowed)
	require.NoError(t, err)
	require.Equal(t, []rollbar.Project{{ID: 2, Name: "B", Token: "tok-b"}}, projects)
}

func TestResolve_ProjectListingFailureIsReturned(t *testing.T) {
	client := resolvermocks.NewClient(t)
	cause := &apperr.TransportError{Op: apperr.OpListProjects, StatusCode: http.StatusUnauthorized}
	client.EXPECT().ListProjects(mock.Anything, "bad").Return(nil, cause).Once()

	_, err := resolver.New(client).Resolve(context.Background(), "bad", allowed)
	require.Error(t, err)

	var transportErr *apperr.TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Equal(t, http.StatusUnauthorized, transportErr.StatusCode)
}

func TestResolve_AgainstFakeAPI(t *testing.T) {
	srv := rollbartest.NewServer(t, rollbartest.Fixture{
		AccountToken: "acct",
		Projects: []rollbar.ProjectInfo{
			{ID: 1, Name: "A", Status: "enabled"},
			{ID: 2, Name: "B", Status: "enabled"},
			{ID: 3, Name: "C", Status: "disabled"},
		},
		Tokens: map[int64][]rollbar.AccessToken{
			1: {{Name: "read", Scopes: []string{"read"}, AccessToken: "tok-a"}},
		},
		TokenStatus: map[int64]int{2: http.StatusInternalServerError},
	})

	r := resolver.New(rollbar.NewClient(srv.URL, time.Second))
	projects, err := r.Resolve(context.Background(), "acct", allowed)
	require.NoError(t, err)
	require.Equal(t, []rollbar.Project{{ID: 1, Name: "A", Token: "tok-a"}}, projects)
}

func TestSingleProject(t *testing.T) {
	p := resolver.SingleProject("frontend", "tok")
	require.Equal(t, rollbar.Project{Name: "frontend", Token: "tok"}, p)
}
