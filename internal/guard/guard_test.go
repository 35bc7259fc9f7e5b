package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"storefront/internal/models"
	"storefront/internal/session"
)

func TestEvaluate(t *testing.T) {
	anon := session.Snapshot{Resolved: true}
	unresolved := session.Snapshot{Token: "t", Authenticated: true}
	user := session.Snapshot{Token: "t", Authenticated: true, Resolved: true, Identity: &models.Identity{Role: models.RoleUser}}
	admin := session.Snapshot{Token: "t", Authenticated: true, Resolved: true, Identity: &models.Identity{Role: models.RoleAdmin}}

	tests := []struct {
		name   string
		snap   session.Snapshot
		policy Policy
		want   Decision
	}{
		{"anonymous on authenticated", anon, Authenticated, Decision{Denied, LoginPath}},
		{"unresolved on authenticated", unresolved, Authenticated, Decision{Outcome: Allowed}},
		{"user on authenticated", user, Authenticated, Decision{Outcome: Allowed}},
		{"anonymous on admin", anon, Admin, Decision{Denied, LoginPath}},
		{"unresolved on admin", unresolved, Admin, Decision{Outcome: Pending}},
		{"user on admin", user, Admin, Decision{Denied, HomePath}},
		{"admin on admin", admin, Admin, Decision{Outcome: Allowed}},
		{"anonymous on guest", anon, Guest, Decision{Outcome: Allowed}},
		{"user on guest", user, Guest, Decision{Denied, HomePath}},
		{"unknown policy", admin, Policy(99), Decision{Denied, LoginPath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.snap, tt.policy))
		})
	}
}

func serve(policy Policy, snap session.Snapshot, onPending gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	snapshot := func(*gin.Context, Policy) session.Snapshot { return snap }
	r.GET("/p", Require(policy, snapshot, onPending, nil), func(c *gin.Context) {
		c.String(http.StatusOK, "protected content")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
	return w
}

func TestRequire_RedirectsWithoutContent(t *testing.T) {
	w := serve(Admin, session.Snapshot{Resolved: true}, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "protected content")

	w = serve(Admin, session.Snapshot{Token: "t", Authenticated: true, Resolved: true, Identity: &models.Identity{Role: models.RoleUser}}, nil)
	assert.Equal(t, HomePath, w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "protected content")
}

func TestRequire_Pending(t *testing.T) {
	w := serve(Admin, session.Snapshot{Token: "t", Authenticated: true}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "protected content")

	called := false
	w = serve(Admin, session.Snapshot{Token: "t", Authenticated: true}, func(c *gin.Context) {
		called = true
		c.String(http.StatusServiceUnavailable, "please wait")
	})
	assert.True(t, called)
	assert.Equal(t, "please wait", w.Body.String())
}

func TestRequire_Allowed(t *testing.T) {
	w := serve(Authenticated, session.Snapshot{Token: "t", Authenticated: true}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "protected content", w.Body.String())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "admin", Admin.String())
	assert.Equal(t, "unknown", Policy(9).String())
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "unknown", Outcome(9).String())
}
