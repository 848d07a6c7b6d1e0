package xsession

// Credentials is the immutable credential context for one client instance.
// Both tokens are validated at construction and never change afterwards;
// replacing a session means constructing a new client.
type Credentials struct {
	authToken string
	csrfToken string
}

// authTokenLen is the length of a browser-issued auth_token cookie.
const authTokenLen = 40

// ct0 cookies are hex strings; browsers currently issue 32- or 160-char
// values, and locally generated ones are 64.
const (
	csrfTokenMinLen = 32
	csrfTokenMaxLen = 160
)

// newCredentials validates the caller-supplied cookie pair.
func newCredentials(authToken, csrfToken string) (*Credentials, error) {
	switch {
	case authToken == "":
		return nil, &InvalidCredentialsError{Field: "auth_token", Reason: "is empty"}
	case len(authToken) != authTokenLen:
		return nil, &InvalidCredentialsError{Field: "auth_token", Reason: "has wrong length"}
	case !isLowerHex(authToken):
		return nil, &InvalidCredentialsError{Field: "auth_token", Reason: "is not lowercase hex"}
	}
	switch {
	case csrfToken == "":
		return nil, &InvalidCredentialsError{Field: "csrf_token", Reason: "is empty"}
	case len(csrfToken) < csrfTokenMinLen || len(csrfToken) > csrfTokenMaxLen:
		return nil, &InvalidCredentialsError{Field: "csrf_token", Reason: "has wrong length"}
	case !isHex(csrfToken):
		return nil, &InvalidCredentialsError{Field: "csrf_token", Reason: "is not hex"}
	}
	return &Credentials{authToken: authToken, csrfToken: csrfToken}, nil
}

// Headers returns the full header set for an authenticated request,
// including the session cookie. The map is freshly allocated per call so
// in-flight requests never share mutable state.
func (c *Credentials) Headers(userAgent string) map[string]string {
	return sessionHeaders(c.authToken, c.csrfToken, userAgent)
}

func isLowerHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}
