package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"edconnect_backend/internal/config"
	"edconnect_backend/internal/model"
	"edconnect_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// scriptedCompleter 记录每次请求，按 system prompt 区分对话和总结
type scriptedCompleter struct {
	mu      sync.Mutex
	calls   [][]service.ChatMessage
	chat    string
	summary string
	chatErr error
	summErr error
}

func (s *scriptedCompleter) Complete(ctx context.Context, system string, messages []service.ChatMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]service.ChatMessage(nil), messages...))
	if strings.Contains(system, "JSON") {
		return s.summary, s.summErr
	}
	return s.chat, s.chatErr
}

func (s *scriptedCompleter) last() []service.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t         *testing.T
	app       *App
	completer *scriptedCompleter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "test"},
		JWT:       config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: time.Hour},
		Session:   config.SessionConfig{Secret: "session-secret-session-secret-123", Name: "edconnect.sid", MaxAgeHours: 1},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1, TutorPerMinute: 1000},
		Tutor: config.TutorConfig{
			SchoolNames: []string{"Lincoln High School"},
			Concepts: map[string]config.ConceptCategory{
				"math": {Subjects: []string{"math", "algebra"}, Keywords: []string{"equation", "variable"}},
			},
		},
	}

	completer := &scriptedCompleter{
		chat:    "Let's isolate the variable in this equation step by step.",
		summary: `{"summary":"Worked on linear equations","performanceScore":88,"conceptsCovered":["Equation"],"improvementAreas":["checking work"],"strengthAreas":["persistence"]}`,
	}
	a := &App{Config: cfg, DB: db}
	a.build(externals{
		completer: completer,
		denylist:  service.NewMemoryTokenDenylist(),
		storage:   &service.LocalStorageProvider{Root: t.TempDir()},
	})
	return &testServer{t: t, app: a, completer: completer}
}

type request struct {
	method  string
	path    string
	body    interface{}
	token   string
	cookies []*http.Cookie
}

func (s *testServer) do(r request) (*httptest.ResponseRecorder, apiResponse) {
	s.t.Helper()
	var body bytes.Buffer
	if r.body != nil {
		require.NoError(s.t, json.NewEncoder(&body).Encode(r.body))
	}
	req := httptest.NewRequest(r.method, r.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.app.Router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func (s *testServer) registerAndLogin(username, fullName string) (string, []*http.Cookie) {
	s.t.Helper()
	rec, _ := s.do(request{method: http.MethodPost, path: "/api/register", body: gin.H{
		"username": username,
		"email":    username + "@example.org",
		"password": "password123",
		"fullName": fullName,
	}})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, resp := s.do(request{method: http.MethodPost, path: "/api/login", body: gin.H{
		"username": username,
		"password": "password123",
	}})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	require.NoError(s.t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(s.t, data.Token)
	return data.Token, rec.Result().Cookies()
}

func TestTutorFlowRedactsStudentName(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.registerAndLogin("jane", "Jane Doe")

	rec, resp := s.do(request{method: http.MethodGet, path: "/api/tutor/session?subject=Algebra", token: token})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session model.TutoringSession
	require.NoError(t, json.Unmarshal(resp.Data, &session))
	assert.Equal(t, "Algebra", session.Subject)

	// 同一科目再次请求返回同一会话
	rec, resp = s.do(request{method: http.MethodGet, path: "/api/tutor/session?subject=Algebra", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var again model.TutoringSession
	require.NoError(t, json.Unmarshal(resp.Data, &again))
	assert.Equal(t, session.ID, again.ID)

	rec, resp = s.do(request{method: http.MethodPost, path: "/api/tutor/message", token: token, body: gin.H{
		"sessionId": session.ID,
		"message":   "Hi, I'm Jane Doe from Lincoln High School. How do I solve 2x+3=7?",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sent := s.completer.last()
	require.Len(t, sent, 1)
	assert.Equal(t, "user", sent[0].Role)
	assert.Contains(t, sent[0].Content, "[STUDENT_NAME]")
	assert.Contains(t, sent[0].Content, "[SCHOOL_NAME]")
	assert.NotContains(t, sent[0].Content, "Jane")
	assert.NotContains(t, sent[0].Content, "Doe")
	assert.Contains(t, sent[0].Content, "2x+3=7")

	var reply service.TutorReply
	require.NoError(t, json.Unmarshal(resp.Data, &reply))
	assert.Equal(t, session.ID, reply.SessionID)
	assert.Equal(t, []string{"Variable", "Equation"}, reply.Concepts)

	rec, resp = s.do(request{method: http.MethodPost, path: "/api/tutor/session/end", token: token, body: gin.H{"sessionId": session.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ended model.TutoringSession
	require.NoError(t, json.Unmarshal(resp.Data, &ended))
	require.NotNil(t, ended.EndedAt)
	require.NotNil(t, ended.PerformanceScore)
	assert.Equal(t, 88, *ended.PerformanceScore)
	assert.Equal(t, "Worked on linear equations", ended.Summary)

	rec, _ = s.do(request{method: http.MethodPost, path: "/api/tutor/session/end", token: token, body: gin.H{"sessionId": session.ID}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(request{method: http.MethodPost, path: "/api/tutor/message", token: token, body: gin.H{
		"sessionId": session.ID,
		"message":   "one more question",
	}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp = s.do(request{method: http.MethodGet, path: "/api/achievements", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var achievements []model.Achievement
	require.NoError(t, json.Unmarshal(resp.Data, &achievements))
	require.Len(t, achievements, 1)
	assert.Equal(t, "First Tutoring Session", achievements[0].Title)
}

func TestTutorProviderFailureIsRetryable(t *testing.T) {
	s := newTestServer(t)
	s.completer.chatErr = errors.New("upstream overloaded")
	token, _ := s.registerAndLogin("omar", "Omar Khan")

	_, resp := s.do(request{method: http.MethodGet, path: "/api/tutor/session?subject=Science", token: token})
	var session model.TutoringSession
	require.NoError(t, json.Unmarshal(resp.Data, &session))

	rec, resp := s.do(request{method: http.MethodPost, path: "/api/tutor/message", token: token, body: gin.H{
		"sessionId": session.ID,
		"message":   "What is photosynthesis?",
	}})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"retryable":true}`, string(resp.Data))

	rec, resp = s.do(request{method: http.MethodGet, path: fmt.Sprintf("/api/tutor/sessions/%d/messages", session.ID), token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestSessionCookieAuthAndLogout(t *testing.T) {
	s := newTestServer(t)
	token, cookies := s.registerAndLogin("sam", "Sam Park")
	require.NotEmpty(t, cookies)

	rec, resp := s.do(request{method: http.MethodGet, path: "/api/user", cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user model.User
	require.NoError(t, json.Unmarshal(resp.Data, &user))
	assert.Equal(t, "sam", user.Username)
	assert.Equal(t, model.Student, user.Role)

	rec, _ = s.do(request{method: http.MethodPost, path: "/api/logout", token: token, cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "edconnect.sid" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie should be expired")

	rec, _ = s.do(request{method: http.MethodGet, path: "/api/user", token: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(request{method: http.MethodGet, path: "/api/user"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterRejectsDuplicatesAndBadRoles(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin("jane", "Jane Doe")

	rec, _ := s.do(request{method: http.MethodPost, path: "/api/register", body: gin.H{
		"username": "jane",
		"email":    "other@example.org",
		"password": "password123",
		"fullName": "Another Jane",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(request{method: http.MethodPost, path: "/api/register", body: gin.H{
		"username": "root",
		"email":    "root@example.org",
		"password": "password123",
		"fullName": "Root",
		"role":     "admin",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(request{method: http.MethodPost, path: "/api/login", body: gin.H{
		"username": "jane",
		"password": "wrong-password",
	}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStudentsCannotReachEducatorRoutes(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.registerAndLogin("jane", "Jane Doe")

	rec, _ := s.do(request{method: http.MethodGet, path: "/api/analytics/educator-performance", token: token})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(request{method: http.MethodPost, path: "/api/learning-paths", token: token, body: gin.H{"title": "Algebra I"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := s.do(request{method: http.MethodGet, path: "/api/departments", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec, resp := s.do(request{method: http.MethodGet, path: "/api/health"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","components":{"database":"up","redis":"disabled"}}`, string(resp.Data))
}
