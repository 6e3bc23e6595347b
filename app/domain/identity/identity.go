package identity

import "time"

// Identity is the resolved caller context: the gateway credential owner plus
// the upstream access token and the ad accounts it may read.
type Identity struct {
	ID             uint
	PublicID       string
	KeyHash        string
	UpstreamUserID string
	AccessToken    string
	TokenExpiresAt time.Time
	AdAccountIDs   []string
	CreatedAt      time.Time
}

// FirstAdAccountID returns the default resource for operations called
// without an explicit account id.
func (i *Identity) FirstAdAccountID() (string, bool) {
	if len(i.AdAccountIDs) == 0 {
		return "", false
	}
	return i.AdAccountIDs[0], true
}

// CredentialExpired reports whether the upstream token needs a refresh.
func (i *Identity) CredentialExpired(now time.Time) bool {
	return !i.TokenExpiresAt.IsZero() && i.TokenExpiresAt.Before(now)
}
