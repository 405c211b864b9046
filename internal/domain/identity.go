package domain

import "github.com/google/uuid"

// IdentityKind tells how much trust a user identifier carries.
type IdentityKind string

const (
	// AuthenticatedIdentity is a stable account ID from the auth provider.
	AuthenticatedIdentity IdentityKind = "authenticated"
	// WeakIdentity is a device-local random ID with no cross-device or
	// trust guarantees. It is a best-effort correlation key, not an identity.
	WeakIdentity IdentityKind = "weak"
)

// Identity pairs a user identifier with its provenance. Scoring code treats
// both kinds the same; the kind exists so callers never mistake a weak ID
// for a trusted one.
type Identity struct {
	UserID string       `json:"userId"`
	Kind   IdentityKind `json:"kind"`
}

// Authenticated wraps an auth-provider UID.
func Authenticated(userID string) Identity {
	return Identity{UserID: userID, Kind: AuthenticatedIdentity}
}

// NewWeakIdentity mints a fresh pseudo-anonymous identifier. Clients persist
// it locally and present it on later sessions from the same device.
func NewWeakIdentity() Identity {
	return Identity{UserID: "anon-" + uuid.NewString(), Kind: WeakIdentity}
}
