// Package credential holds the bearer credential minted by login or refresh
// and its persistence. Writers are the session store (login, logout) and
// the gateway (refresh); everything else reads through a Store at send time.
package credential

import (
	"context"
	"time"

	"github.com/go-jose/go-jose/v4/jwt"
)

// Credential is the short-lived bearer token authorising API calls.
// Exactly one of RefreshToken and RefreshCookie is populated, depending on
// the configured refresh mode.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`

	// RefreshCookie is the value of the backend's HttpOnly refresh cookie
	// in cookie mode. The CLI persists it the way a browser profile would;
	// it is only ever attached to the refresh endpoint.
	RefreshCookie string `json:"refresh_cookie,omitempty"`

	ObtainedAt time.Time `json:"obtained_at"`
}

// IsZero reports whether no credential is present.
func (c Credential) IsZero() bool {
	return c.AccessToken == ""
}

// ExpiresAt peeks at the access token's exp claim without verifying the
// signature. Verification is the backend's job; the client only needs the
// timestamp to decide whether a proactive refresh is due. Returns the zero
// time when the token is opaque or carries no expiry.
func (c Credential) ExpiresAt() time.Time {
	token, err := jwt.ParseSigned(c.AccessToken, allSignatureAlgorithms)
	if err != nil {
		return time.Time{}
	}

	var claims jwt.Claims
	if err := token.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return time.Time{}
	}
	if claims.Expiry == nil {
		return time.Time{}
	}
	return claims.Expiry.Time()
}

// ExpiresWithin reports whether the access token expires inside the given
// window. Tokens without a readable expiry are treated as expiring, so a
// proactive refresh errs on the safe side.
func (c Credential) ExpiresWithin(window time.Duration) bool {
	exp := c.ExpiresAt()
	if exp.IsZero() {
		return true
	}
	return time.Until(exp) < window
}

// Store persists the credential across process runs. Implementations must
// treat Save and Clear as atomic replacements.
type Store interface {
	Load(ctx context.Context) (Credential, error)
	Save(ctx context.Context, cred Credential) error
	Clear(ctx context.Context) error
}
