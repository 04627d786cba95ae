package models

import "time"

// UsersCollection holds user accounts
const UsersCollection = "users"

// User is an account that owns characters and plays in or runs campaigns
type User struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	Username     string     `json:"username" bson:"username"`
	UsernameKey  string     `json:"-" bson:"usernameKey"` // case-folded, unique
	DisplayName  string     `json:"displayName" bson:"displayName"`
	PasswordHash string     `json:"-" bson:"passwordHash"`
	Roles        []string   `json:"roles" bson:"roles"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
}
