package models

import "time"

// Login providers. Provider records how the account last authenticated;
// a linked account keeps its password hash, so local login stays possible
// after the provider is upgraded to GOOGLE.
const (
	ProviderLocal  = "LOCAL"
	ProviderGoogle = "GOOGLE"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	Name         string    `gorm:"size:255" json:"name"`
	Provider     string    `gorm:"size:20;not null" json:"-"`
	OAuthID      *string   `gorm:"column:oauth_id;size:255;uniqueIndex:ux_users_oauth_id" json:"-"`
	Enabled      bool      `gorm:"not null;default:true" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
