package auth

import (
	"os"
	"strings"
)

const bearerPrefix = "Bearer "

// devTokensEnvVariable gates the offline sentinel tokens. They bypass
// signature verification and must never be enabled in production.
const devTokensEnvVariable = "TASKDESK_DEV_TOKENS"

// Pre-shared sentinel credentials for local runs without an identity
// provider, and the fixed principals they resolve to.
const (
	devTokenAllow     = "allow"
	devTokenDummyJWT  = "dummy-jwt-for-local"
	devPrincipalAllow = "user-allow-sam"
	devPrincipalDummy = "local-user-from-dummy-jwt"
)

// ResolvePrincipal derives a principal id from a raw credential.
//
// An empty credential fails with ErrNoCredential. A well-formed bearer
// credential has its token verified and the subject claim becomes the
// principal. Anything else fails with ErrInvalidToken; a present but
// unverifiable token never defaults to some identity.
func ResolvePrincipal(credential string) (string, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", ErrNoCredential
	}

	if devTokensEnabled() {
		if credential == devTokenAllow {
			return devPrincipalAllow, nil
		}
		if token, ok := bearerToken(credential); ok && token == devTokenDummyJWT {
			return devPrincipalDummy, nil
		}
	}

	token, ok := bearerToken(credential)
	if !ok {
		return "", ErrInvalidToken
	}
	claims, err := ParseAndValidate(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func bearerToken(credential string) (string, bool) {
	if !strings.HasPrefix(strings.ToLower(credential), strings.ToLower(bearerPrefix)) {
		return "", false
	}
	token := strings.TrimSpace(credential[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

func devTokensEnabled() bool {
	switch strings.TrimSpace(os.Getenv(devTokensEnvVariable)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
