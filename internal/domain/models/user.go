package models

import "time"

// Identity is the raw authentication record behind a profile. The password
// hash never leaves the backend.
type Identity struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash []byte    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// UserProfile extends an identity with the application-level attributes:
// a globally unique username, the admin flag and the flat recurring
// deduction applied at report time.
type UserProfile struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	Username   string    `bson:"username" json:"username"`
	IsAdmin    bool      `bson:"is_admin" json:"is_admin"`
	Deductions float64   `bson:"deductions" json:"deductions"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// UserAccount joins a profile with its underlying identity for the admin
// user listing.
type UserAccount struct {
	UserProfile
	Identity *Identity `json:"identity,omitempty"`
}
