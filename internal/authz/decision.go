// Package authz is the policy decision point: it turns an extracted
// credential and a target resource into an allow/deny decision. Decisions
// are computed fresh per request and are never cached; a credential may be
// revoked between calls.
package authz

// Effect is the outcome of a decision.
type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

// WildcardResource is only used for the malformed-request fallback, when no
// resource identifier can be determined. Every other decision is scoped to
// the exact resource it was computed for.
const WildcardResource = "*"

// Sentinel principal ids for denied requests.
const (
	PrincipalUnknown           = "user-unknown"
	PrincipalNoCredential      = "user-deny-no-token"
	PrincipalInvalidCredential = "user-deny-invalid-token"
)

// ContextKeyUserID is the one canonical key under which the resolved
// principal id travels to downstream handlers.
const ContextKeyUserID = "userId"

// Decision is the PDP output. Resource records what the decision applies
// to; a decision for one resource must never be presented for another.
type Decision struct {
	Effect      Effect
	PrincipalID string
	Resource    string
	Context     map[string]string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Effect == Allow }

// Resolver derives a principal id from a raw credential string.
type Resolver func(credential string) (string, error)

// Decide computes the decision for one request. It never fails: a malformed
// request yields the wildcard Deny fallback, not an error.
func Decide(req Request, resolve Resolver) Decision {
	resource := req.Resource()
	if resource == "" {
		return Decision{Effect: Deny, PrincipalID: PrincipalUnknown, Resource: WildcardResource}
	}

	credential, ok := ExtractCredential(req)
	if !ok {
		return Decision{Effect: Deny, PrincipalID: PrincipalNoCredential, Resource: resource}
	}

	principal, err := resolve(credential)
	if err != nil || principal == "" {
		return Decision{Effect: Deny, PrincipalID: PrincipalInvalidCredential, Resource: resource}
	}

	return Decision{
		Effect:      Allow,
		PrincipalID: principal,
		Resource:    resource,
		Context:     map[string]string{ContextKeyUserID: principal},
	}
}
