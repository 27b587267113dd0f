package authz

import "strings"

const credentialHeader = "authorization"

// Request is the normalized authorizer input. Two request shapes exist in
// the wild: the current one carries a header map, the legacy one a single
// credential field. Both are resolved here, once, at the extractor boundary;
// nothing downstream re-checks shapes.
type Request struct {
	// Headers is the current shape. Lookup of the credential header is
	// case-insensitive.
	Headers map[string]string
	// LegacyCredential is the single-field shape older gateways emit. It is
	// consulted only when the header shape yields nothing.
	LegacyCredential string
	// RouteResource and MethodResource identify the invoked resource. The
	// route-scoped identifier wins when both are present.
	RouteResource  string
	MethodResource string
}

// Resource returns the identifier the decision will be scoped to, or ""
// when the request is too malformed to name one.
func (r Request) Resource() string {
	if res := strings.TrimSpace(r.RouteResource); res != "" {
		return res
	}
	return strings.TrimSpace(r.MethodResource)
}

// ExtractCredential pulls the raw credential out of the request. Absence is
// a normal outcome, reported via ok=false, never an error.
func ExtractCredential(r Request) (string, bool) {
	for name, value := range r.Headers {
		if strings.EqualFold(name, credentialHeader) {
			if value = strings.TrimSpace(value); value != "" {
				return value, true
			}
		}
	}
	if cred := strings.TrimSpace(r.LegacyCredential); cred != "" {
		return cred, true
	}
	return "", false
}
