// Package resolver turns an account token into the list of projects a report
// runs against, each carrying a read-only project token.
package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aevon-lab/rollbar-metrics/internal/rollbar"
)

// Client is the subset of the Rollbar API the resolver needs.
type Client interface {
	ListProjects(ctx context.Context, accountToken string) ([]rollbar.ProjectInfo, error)
	ListAccessTokens(ctx context.Context, accountToken string, project rollbar.ProjectInfo) ([]rollbar.AccessToken, error)
}

// Resolver discovers enabled projects and attaches a token to each.
type Resolver struct {
	client Client
}

// New creates a resolver backed by client.
func New(client Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve lists the account's projects, keeps the enabled ones and attaches
// the first access token whose name is in allowedNames and whose scopes are
// exactly ["read"]. Projects without such a token are left out with a
// warning; so are projects whose token listing fails. Only a failure to list
// projects is returned.
func (r *Resolver) Resolve(ctx context.Context, accountToken string, allowedNames []string) ([]rollbar.Project, error) {
	infos, err := r.client.ListProjects(ctx, accountToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	allowed := make(map[string]struct{}, len(allowedNames))
	for _, name := range allowedNames {
		allowed[name] = struct{}{}
	}

	projects := make([]rollbar.Project, 0, len(infos))
	for _, info := range infos {
		if info.Status != rollbar.ProjectStatusEnabled {
			slog.Debug("[Resolver] Skipping project",
				"project", info.Name,
				"status", info.Status,
			)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tokens, err := r.client.ListAccessTokens(ctx, accountToken, info)
		if err != nil {
			slog.Warn("[Resolver] Excluding project, token lookup failed",
				"project", info.Name,
				"project_id", info.ID,
				"error", err,
			)
			continue
		}

		token, ok := selectToken(tokens, allowed)
		if !ok {
			slog.Warn("[Resolver] Excluding project, no read-only token matches the allow-list",
				"project", info.Name,
				"project_id", info.ID,
				"candidates", len(tokens),
			)
			continue
		}

		projects = append(projects, rollbar.Project{
			ID:    info.ID,
			Name:  info.Name,
			Token: token,
		})
	}

	slog.Info("[Resolver] Projects resolved",
		"listed", len(infos),
		"resolved", len(projects),
	)
	return projects, nil
}

func selectToken(tokens []rollbar.AccessToken, allowed map[string]struct{}) (string, bool) {
	for _, t := range tokens {
		if _, ok := allowed[t.Name]; !ok {
			continue
		}
		if !t.ReadOnly() || t.AccessToken == "" {
			continue
		}
		return t.AccessToken, true
	}
	return "", false
}

// SingleProject builds the project used when only a project token is
// configured. The id is unknown in that mode and stays zero.
func SingleProject(name, token string) rollbar.Project {
	return rollbar.Project{Name: name, Token: token}
}
