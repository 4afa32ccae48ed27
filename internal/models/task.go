package models

// Task is a todo item owned by exactly one user. Grants hold the
// permissions the owner has shared with other users; the owner never
// appears as a grant row.
type Task struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	OwnerID     int     `json:"owner_id"`
	Grants      []Grant `json:"-"`
}

// User represent a registered account
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
