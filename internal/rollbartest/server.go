// Package rollbartest provides an in-process fake of the Rollbar REST API
// for tests.
package rollbartest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
	"github.com/aevon-lab/rollbar-metrics/internal/rollbar"
	"github.com/gin-gonic/gin"
)

// MetricsFunc answers one occurrence metrics query. result is the raw JSON of
// the envelope's "result" field; status defaults to 200 when zero.
type MetricsFunc func(token string, spec metrics.QuerySpec) (status int, result string)

// Fixture is the data served by the fake API.
type Fixture struct {
	AccountToken string
	Projects     []rollbar.ProjectInfo

	// Tokens and TokenStatus are keyed by project id.
	Tokens      map[int64][]rollbar.AccessToken
	TokenStatus map[int64]int

	// Metrics and MetricsStatus are keyed by project token.
	Metrics       map[string]string
	MetricsStatus map[string]int
	MetricsFunc   MetricsFunc

	// Items and ItemStatus are keyed by item id.
	Items      map[int64]rollbar.ItemDetail
	ItemStatus map[int64]int
}

// Request is a call recorded by the fake.
type Request struct {
	Method string
	Path   string
	Token  string
	Body   []byte
}

// Server is a running fake API.
type Server struct {
	*httptest.Server
	fixture Fixture

	mu       sync.Mutex
	requests []Request
}

// NewServer starts a fake API serving f. It is closed when the test ends.
func NewServer(t testing.TB, f Fixture) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{fixture: f}

	r := gin.New()
	r.Use(s.record)
	r.GET("/api/1/projects", s.handleProjects)
	r.GET("/api/1/project/:id/access_tokens", s.handleAccessTokens)
	r.POST("/api/1/metrics/occurrences", s.handleMetrics)
	r.GET("/api/1/item/:id", s.handleItem)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Requests returns a copy of the recorded calls.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// MetricsQueries decodes every recorded metrics payload.
func (s *Server) MetricsQueries(t testing.TB) []metrics.QuerySpec {
	t.Helper()
	var out []metrics.QuerySpec
	for _, req := range s.Requests() {
		if req.Path != "/api/1/metrics/occurrences" {
			continue
		}
		var spec metrics.QuerySpec
		if err := json.Unmarshal(req.Body, &spec); err != nil {
			t.Fatalf("decode recorded query: %v", err)
		}
		out = append(out, spec)
	}
	return out
}

func (s *Server) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Token:  c.GetHeader("X-Rollbar-Access-Token"),
		Body:   body,
	})
	s.mu.Unlock()

	c.Next()
}

func (s *Server) handleProjects(c *gin.Context) {
	if c.GetHeader("X-Rollbar-Access-Token") != s.fixture.AccountToken {
		writeError(c, http.StatusUnauthorized, "invalid access token")
		return
	}
	writeResult(c, http.StatusOK, s.fixture.Projects)
}

func (s *Server) handleAccessTokens(c *gin.Context) {
	if c.GetHeader("X-Rollbar-Access-Token") != s.fixture.AccountToken {
		writeError(c, http.StatusUnauthorized, "invalid access token")
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid project id")
		return
	}
	if status, ok := s.fixture.TokenStatus[id]; ok {
		writeError(c, status, "access token lookup failed")
		return
	}
	tokens := s.fixture.Tokens[id]
	if tokens == nil {
		tokens = []rollbar.AccessToken{}
	}
	writeResult(c, http.StatusOK, tokens)
}

func (s *Server) handleMetrics(c *gin.Context) {
	token := c.GetHeader("X-Rollbar-Access-Token")

	var spec metrics.QuerySpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		writeError(c, http.StatusBadRequest, "invalid query")
		return
	}

	if s.fixture.MetricsFunc != nil {
		status, result := s.fixture.MetricsFunc(token, spec)
		if status == 0 {
			status = http.StatusOK
		}
		if status != http.StatusOK {
			writeError(c, status, "metrics query failed")
			return
		}
		writeRawResult(c, result)
		return
	}

	if status, ok := s.fixture.MetricsStatus[token]; ok {
		writeError(c, status, "metrics query failed")
		return
	}
	result, ok := s.fixture.Metrics[token]
	if !ok {
		writeError(c, http.StatusForbidden, "token not authorized")
		return
	}
	writeRawResult(c, result)
}

func (s *Server) handleItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid item id")
		return
	}
	if status, ok := s.fixture.ItemStatus[id]; ok {
		writeError(c, status, "item lookup failed")
		return
	}
	item, ok := s.fixture.Items[id]
	if !ok {
		writeError(c, http.StatusNotFound, "item not found")
		return
	}
	writeResult(c, http.StatusOK, item)
}

func writeResult(c *gin.Context, status int, result interface{}) {
	c.JSON(status, gin.H{"err": 0, "result": result})
}

func writeRawResult(c *gin.Context, result string) {
	c.Data(http.StatusOK, "application/json", []byte(fmt.Sprintf(`{"err":0,"result":%s}`, result)))
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"err": 1, "message": message})
}
