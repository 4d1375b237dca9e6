package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
	"github.com/noah-isme/roadsafety-api/pkg/logger"
)

type stubAuthenticator struct {
	principals map[string]*models.Principal
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*models.Principal, *models.JWTClaims, error) {
	p, ok := s.principals[token]
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return p, &models.JWTClaims{UserID: p.User.ID}, nil
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := stubAuthenticator{principals: map[string]*models.Principal{
		"admin-token":      models.NewPrincipal(models.User{ID: "u-admin", IsStaff: true, IsActive: true}, nil),
		"citizen-token":    models.NewPrincipal(models.User{ID: "u-citizen", IsActive: true}, nil),
		"contractor-token": models.NewPrincipal(models.User{ID: "u-con", IsActive: true}, &models.Contractor{ID: "c-1"}),
	}}
	r := gin.New()
	protected := r.Group("/", JWT(auth))
	protected.GET("/me", func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": p.Role, "logged_user": c.GetString(logger.ContextUserIDKey)})
	})
	protected.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	protected.GET("/contractor", RequireRoles(models.RoleContractor), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doRequest(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddlewareRejectsMissingAndInvalidTokens(t *testing.T) {
	r := newAuthRouter()

	rec := doRequest(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(r, "/me", "bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, body.Error.Code)
	assert.Equal(t, "invalid or expired token", body.Error.Message)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareStoresPrincipal(t *testing.T) {
	r := newAuthRouter()

	rec := doRequest(r, "/me", "contractor-token")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "contractor", body["role"])
	assert.Equal(t, "u-con", body["logged_user"])
}

func TestRequireRoles(t *testing.T) {
	r := newAuthRouter()

	cases := []struct {
		path  string
		token string
		want  int
	}{
		{"/admin", "admin-token", http.StatusOK},
		{"/admin", "citizen-token", http.StatusForbidden},
		{"/admin", "contractor-token", http.StatusForbidden},
		{"/contractor", "contractor-token", http.StatusOK},
		{"/contractor", "citizen-token", http.StatusForbidden},
		{"/contractor", "admin-token", http.StatusForbidden},
		{"/admin", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec := doRequest(r, tc.path, tc.token)
		assert.Equal(t, tc.want, rec.Code, "%s with %q", tc.path, tc.token)
	}
}
