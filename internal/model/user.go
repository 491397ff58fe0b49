package model

import "time"

// User is an identity known to the system. Identity management (creation,
// roles, credentials) belongs to the access-control gateway; the core only
// resolves references when constructing documents and versions.
type User struct {
	ID        string    `json:"id"`
	UserName  string    `json:"user_name"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName returns the human-readable name used in version listings.
func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.UserName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
