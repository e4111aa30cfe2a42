package rollbar

import "encoding/json"

// ProjectStatusEnabled is the only project status reports run against.
const ProjectStatusEnabled = "enabled"

// ScopeRead is the read-only access token scope.
const ScopeRead = "read"

// Project identifies a remote project and the read token used to query it.
// Token is empty until resolved.
type Project struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Token string `json:"-"`
}

// ProjectInfo is one entry of GET /api/1/projects.
type ProjectInfo struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// AccessToken is one entry of GET /api/1/project/{id}/access_tokens.
type AccessToken struct {
	Name        string   `json:"name"`
	Scopes      []string `json:"scopes"`
	AccessToken string   `json:"access_token"`
}

// ReadOnly reports whether the token's scopes are exactly ["read"].
func (t AccessToken) ReadOnly() bool {
	return len(t.Scopes) == 1 && t.Scopes[0] == ScopeRead
}

// ItemDetail is the subset of GET /api/1/item/{id} used for enrichment.
type ItemDetail struct {
	Title          string `json:"title"`
	AssignedUserID *int64 `json:"assigned_user_id"`
}

// envelope is the common response wrapper of the REST API.
type envelope struct {
	Err     int             `json:"err"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}
