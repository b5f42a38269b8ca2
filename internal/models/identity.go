package models

// Identity is the authenticated caller for one request.
// It is copied out of the server-side session by the session guard and passed
// explicitly to every service call; it is a snapshot taken at login, not a live
// reference to the users row.
type Identity struct {
	UserID       int
	Username     string
	Organization string
}

// IsZero reports whether the identity carries no authenticated user.
func (i Identity) IsZero() bool {
	return i.UserID == 0
}

// Info returns the public view of the identity.
func (i Identity) Info() UserInfo {
	return UserInfo{Username: i.Username, Organization: i.Organization}
}
