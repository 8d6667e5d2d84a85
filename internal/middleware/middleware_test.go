package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-dashboard/internal/models"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, appErrors.New("token_not_valid", http.StatusUnauthorized, "Token is invalid or expired")
	}
	return claims, nil
}

type recordingAudit struct {
	logs []*models.AuditLog
	err  error
}

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return r.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/items/:id", chain...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/items/5", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var tokens = stubValidator{
	"student": {UserID: 3, Groups: []string{models.GroupStudents}},
	"teacher": {UserID: 2, Groups: []string{models.GroupTeachers}},
	"staff":   {UserID: 1, IsStaff: true},
}

func TestJWT(t *testing.T) {
	r := newRouter(JWT(tokens))

	cases := []struct {
		header string
		status int
		code   string
	}{
		{"", http.StatusUnauthorized, appErrors.ErrUnauthorized.Code},
		{"Token student", http.StatusUnauthorized, appErrors.ErrUnauthorized.Code},
		{"Bearer nope", http.StatusUnauthorized, "token_not_valid"},
		{"bearer student", http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		w := do(r, tc.header)
		assert.Equal(t, tc.status, w.Code, tc.header)
		if tc.code != "" {
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body["code"])
			assert.NotEmpty(t, body["detail"])
		}
	}
}

func TestRequireGroup(t *testing.T) {
	r := newRouter(JWT(tokens), RequireGroup(models.GroupStudents))

	assert.Equal(t, http.StatusNoContent, do(r, "Bearer student").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer teacher").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer staff").Code)
}

func TestRequireStaff(t *testing.T) {
	r := newRouter(JWT(tokens), RequireStaff())

	assert.Equal(t, http.StatusNoContent, do(r, "Bearer staff").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer teacher").Code)
}

func TestRequireGroupWithoutJWT(t *testing.T) {
	r := newRouter(RequireGroup(models.GroupTeachers))

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
}

func TestAuditRecordsSuccessOnly(t *testing.T) {
	audit := &recordingAudit{err: errors.New("ignored")}
	r := newRouter(JWT(tokens), Audit(audit, models.AuditActionGradeExport, "course"))

	do(r, "Bearer teacher")
	do(r, "Bearer unknown")

	require.Len(t, audit.logs, 1)
	log := audit.logs[0]
	require.NotNil(t, log.UserID)
	assert.Equal(t, int64(2), *log.UserID)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "5", *log.ResourceID)
	assert.Equal(t, models.AuditActionGradeExport, log.Action)
}

func TestSetCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SetCacheHit(c, true)
	assert.Equal(t, "HIT", w.Header().Get(CacheHeader))
	SetCacheHit(c, false)
	assert.Equal(t, "MISS", w.Header().Get(CacheHeader))
}
