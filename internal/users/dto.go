package users

import (
	"strings"

	"github.com/angelmondragon/postoko-backend/pkg/db/models"
)

// CreateUserDTO holds what the repository needs to insert a user. The
// password must already be hashed.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
	}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
