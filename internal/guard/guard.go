// Package guard decides whether a request may reach a protected page.
package guard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/metrics"
	"storefront/internal/session"
)

// Policy names the condition a route requires.
type Policy int

const (
	// Authenticated requires a bearer token.
	Authenticated Policy = iota
	// Admin requires a bearer token whose verified role is admin.
	Admin
	// Guest requires no bearer token; signed-in visitors are sent home.
	Guest
)

func (p Policy) String() string {
	switch p {
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	case Guest:
		return "guest"
	}
	return "unknown"
}

// Outcome is the result of evaluating a policy.
type Outcome int

const (
	// Pending means the session role is not known yet.
	Pending Outcome = iota
	// Denied means the visitor is redirected elsewhere.
	Denied
	// Allowed means the protected content may render.
	Allowed
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Denied:
		return "denied"
	case Allowed:
		return "allowed"
	}
	return "unknown"
}

// Redirect targets.
const (
	LoginPath = "/login"
	HomePath  = "/home"
)

// Decision is an outcome plus, for Denied, where to send the visitor.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

// Evaluate applies policy to a session snapshot.
func Evaluate(snap session.Snapshot, policy Policy) Decision {
	switch policy {
	case Guest:
		if snap.Authenticated {
			return Decision{Outcome: Denied, Redirect: HomePath}
		}
		return Decision{Outcome: Allowed}
	case Authenticated:
		if !snap.Authenticated {
			return Decision{Outcome: Denied, Redirect: LoginPath}
		}
		return Decision{Outcome: Allowed}
	case Admin:
		if !snap.Authenticated {
			return Decision{Outcome: Denied, Redirect: LoginPath}
		}
		if !snap.Resolved {
			return Decision{Outcome: Pending}
		}
		if !snap.IsAdmin() {
			return Decision{Outcome: Denied, Redirect: HomePath}
		}
		return Decision{Outcome: Allowed}
	}
	return Decision{Outcome: Denied, Redirect: LoginPath}
}

// SnapshotFunc produces the session snapshot for a request, resolving the
// role first when the policy needs it.
type SnapshotFunc func(c *gin.Context, policy Policy) session.Snapshot

// Require is middleware that only lets allowed requests through. Denied
// requests are redirected; pending ones are handed to onPending, which must
// not render protected content.
func Require(policy Policy, snapshot SnapshotFunc, onPending gin.HandlerFunc, onDenied func(c *gin.Context, d Decision)) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := Evaluate(snapshot(c, policy), policy)
		metrics.GuardDecisionsTotal.WithLabelValues(policy.String(), d.Outcome.String()).Inc()

		switch d.Outcome {
		case Allowed:
			c.Next()
			return
		case Pending:
			if onPending != nil {
				onPending(c)
			} else {
				c.String(http.StatusServiceUnavailable, "verifying session")
			}
		case Denied:
			if onDenied != nil {
				onDenied(c, d)
			}
			c.Redirect(http.StatusSeeOther, d.Redirect)
		}
		c.Abort()
	}
}
