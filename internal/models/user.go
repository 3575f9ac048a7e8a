package models

import "time"

// Roles a User can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a row in the users table (Postgres) or a document in the users
// collection (MongoDB). The id is a UUID or an ObjectID hex string depending
// on the backend.
type User struct {
	ID           string    `json:"id"         bson:"_id"`
	Username     string    `json:"username"   bson:"username"`
	PasswordHash string    `json:"-"          bson:"password_hash"` // never serialize
	Role         string    `json:"role"       bson:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// PublicUser is the projection of a User that is safe to hand to clients.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Public strips the password hash.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Role: u.Role}
}
