package models

import "github.com/google/uuid"

const (
	RoleAuthenticated = "authenticated"
	RoleAnon          = "anon"
)

// Session is the verified identity behind a request. It is built from the
// store's access token and handed to every service call that acts for a user.
type Session struct {
	UserID uuid.UUID
	Email  string
	Role   string
}
