package types

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered traveller.
type User struct {
	ID           uuid.UUID `json:"id" example:"d290f1ee-6c54-4b01-90e6-d701748f0851"`
	Username     string    `json:"username" example:"johndoe"`
	Email        string    `json:"email,omitempty" example:"john.doe@example.com"`
	Name         string    `json:"name,omitempty" example:"John Doe"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserSummary is the public projection returned by auth and profile endpoints.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}
