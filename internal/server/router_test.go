package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/academic-dashboard/internal/handler"
	"github.com/noah-isme/academic-dashboard/internal/models"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

type stubTokens map[string]*models.JWTClaims

func (s stubTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrUnauthorized
}

type nopAudit struct{}

func (nopAudit) CreateAuditLog(context.Context, *models.AuditLog) error { return nil }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(Handlers{Ops: handler.NewMetricsHandler(nil, nil)}, Options{
		APIPrefix: "/api",
		Tokens: stubTokens{
			"student": {UserID: 3, Groups: []string{models.GroupStudents}},
			"teacher": {UserID: 2, Groups: []string{models.GroupTeachers}},
		},
		Audit: nopAudit{},
	})
}

func request(r http.Handler, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestRouterOps(t *testing.T) {
	r := newTestRouter()

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/ready", ""))
}

func TestRouterGuards(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		method, path, token string
		status              int
	}{
		{http.MethodGet, "/api/my-courses/", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/my-courses/", "expired", http.StatusUnauthorized},
		{http.MethodGet, "/api/my-courses/", "teacher", http.StatusForbidden},
		{http.MethodPost, "/api/chatbot/query/", "teacher", http.StatusForbidden},
		{http.MethodPost, "/api/teacher/upload-content/", "student", http.StatusForbidden},
		{http.MethodGet, "/api/teacher/my-courses/", "student", http.StatusForbidden},
		{http.MethodPost, "/api/grades/", "student", http.StatusForbidden},
		{http.MethodPost, "/api/courses/", "teacher", http.StatusForbidden},
		{http.MethodGet, "/api/user/me/", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, request(r, tc.method, tc.path, tc.token), "%s %s as %q", tc.method, tc.path, tc.token)
	}
}
