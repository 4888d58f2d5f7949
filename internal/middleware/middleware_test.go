package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
	err    error
	tokens []string
}

func (v *validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	v.tokens = append(v.tokens, token)
	return v.claims, v.err
}

type observerSpy struct {
	paths    []string
	statuses []int
}

func (o *observerSpy) ObserveHTTPRequest(_ string, path string, status int, _ time.Duration) {
	o.paths = append(o.paths, path)
	o.statuses = append(o.statuses, status)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestJWTRejectsMissingAndInvalidTokens(t *testing.T) {
	stub := &validatorStub{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")}
	r := gin.New()
	r.GET("/private", JWT(stub), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
	assert.Empty(t, stub.tokens)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, []string{"abc"}, stub.tokens)
}

func TestJWTAndRBACAllowMatchingRole(t *testing.T) {
	stub := &validatorStub{claims: &models.JWTClaims{UserID: "u-1", Role: models.RoleAdmin}}
	r := gin.New()
	r.POST("/catalogs", JWT(stub), RequireRoles(models.RoleAdmin, models.RoleSuperAdmin), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.String(http.StatusCreated, claims.UserID)
	})
	r.DELETE("/catalogs", JWT(stub), RequireRoles(models.RoleSuperAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/catalogs", nil)
	req.Header.Set("Authorization", "bearer tok")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u-1", rec.Body.String())

	req = httptest.NewRequest(http.MethodDelete, "/catalogs", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
}

func TestRBACWithoutClaims(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	spy := &observerSpy{}
	r := gin.New()
	r.Use(Metrics(spy))
	r.GET("/planner/jobs/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/planner/jobs/123", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, []string{"/planner/jobs/:id", "unmatched"}, spy.paths)
	assert.Equal(t, []int{http.StatusAccepted, http.StatusNotFound}, spy.statuses)
}

func TestResponseMetaRecordsCacheHit(t *testing.T) {
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/x", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.JSONEq(t, `{"cache_hit":true}`, rec.Body.String())
}

func TestProcessingTimeUsesRequestStart(t *testing.T) {
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/x", func(c *gin.Context) {
		time.Sleep(5 * time.Millisecond)
		StampProcessingTime(c, time.Now())
		c.JSON(http.StatusOK, ExtractMeta(c))
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	var meta map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.GreaterOrEqual(t, meta["processing_time_ms"], float64(5))
}

func TestSetMetaWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))
	SetMeta(c, "index", 2)
	assert.Equal(t, map[string]interface{}{"index": 2}, ExtractMeta(c))
}

func TestAuditLogsSuccessfulWrites(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
		c.Next()
	})
	r.DELETE("/catalogs/:id", Audit(zap.New(core), "delete", "catalog"), func(c *gin.Context) {
		if c.Param("id") == "missing" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/catalogs/cat-1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/catalogs/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "delete", fields["action"])
	assert.Equal(t, "cat-1", fields["resource_id"])
	assert.Equal(t, "admin-1", fields["user_id"])
	assert.Equal(t, "audit", entries[0].LoggerName)
}
