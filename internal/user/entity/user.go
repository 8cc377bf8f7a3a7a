package entity

import "time"

// User represents a row in the `users` table. PasswordHash is never
// serialized.
type User struct {
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Phone        string     `db:"phone" json:"phone"`
	JoinAt       time.Time  `db:"join_at" json:"join_at"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at"`
}

// Summary is the public projection used in listings and embedded in
// messages.
type Summary struct {
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Phone     string `db:"phone" json:"phone"`
}
