package httpapi

import (
	"net/http"

	"taskdesk.org/internal/audit"
	"taskdesk.org/internal/auth"
	"taskdesk.org/internal/authz"
	"taskdesk.org/internal/obs"
)

var publicPaths = []string{
	"/v1/auth/token",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/",
}

// withAuth runs the policy decision point on every protected request. The
// decision is computed fresh each time; nothing is cached between requests.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		req := authz.Request{
			Headers:       singleValueHeaders(r.Header),
			RouteResource: routeResource(r),
		}
		decision := authz.Decide(req, auth.ResolvePrincipal)

		obs.CountDecision(string(decision.Effect))
		_ = audit.LogEvent(r.Context(), "authz.decision", map[string]any{
			"effect":    string(decision.Effect),
			"principal": decision.PrincipalID,
			"resource":  decision.Resource,
		})

		if !decision.Allowed() {
			w.Header().Set("WWW-Authenticate", `Bearer realm="taskdesk"`)
			switch decision.PrincipalID {
			case authz.PrincipalNoCredential:
				writeError(w, r, http.StatusUnauthorized, "missing credential")
			default:
				writeError(w, r, http.StatusUnauthorized, "invalid credential")
			}
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), decision.Context[authz.ContextKeyUserID])
		if cred, ok := authz.ExtractCredential(req); ok {
			ctx = auth.ContextWithToken(ctx, cred)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// routeResource names the invoked resource the decision is scoped to,
// e.g. "PUT /v1/todos/:id".
func routeResource(r *http.Request) string {
	return r.Method + " " + obs.CanonicalPath(r.URL.Path)
}

func singleValueHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
