package models

// User is a row in the users table. Password is stored as a bcrypt hash
// and never leaves the storage layer in plaintext form.
type User struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	PasswordHash  string `json:"-"`
	Active        bool   `json:"active"`
	LoginAttempts int    `json:"login_attempts"`
}

// UserProfile is the subset of user fields returned to clients.
type UserProfile struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Username: u.Username, FullName: u.FullName}
}
