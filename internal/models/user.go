package models

import "time"

// Role is derived on the client side of the identity boundary; it is not a
// server-validated claim.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// User is the signed-in actor
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      Role   `json:"role"`
}

// IsAdmin reports whether the actor carries the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Identity is what the identity provider knows about a session, before any
// role is derived from it.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Account is the stored credential record behind an Identity
type Account struct {
	ID           string    `gorm:"type:varchar(64);primaryKey" bson:"_id" json:"id"`
	Email        string    `gorm:"type:varchar(190);not null;uniqueIndex" bson:"email" json:"email"`
	DisplayName  string    `gorm:"type:varchar(120)" bson:"display_name" json:"display_name"`
	PasswordHash string    `gorm:"type:varchar(255);not null" bson:"password_hash" json:"-"`
	CreatedAt    time.Time `gorm:"type:datetime(3);not null" bson:"created_at" json:"created_at"`
}

// TableName specifies the table name
func (Account) TableName() string {
	return "accounts"
}

// Identity returns the provider-facing view of the account
func (a *Account) Identity() Identity {
	return Identity{ID: a.ID, Email: a.Email, DisplayName: a.DisplayName}
}
