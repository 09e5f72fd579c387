package models

// SessionIdentity is the subject extracted from a bearer token that was
// already verified upstream. It carries no raw credentials.
type SessionIdentity struct {
	AuthProvider string
	Subject      string
}
