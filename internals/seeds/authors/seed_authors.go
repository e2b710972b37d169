package authors

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	authorModel "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
)

type AuthorSeed struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SeedAuthor inserts the account unless its email or username is already taken.
// It reports whether a row was created.
func SeedAuthor(ctx context.Context, db *gorm.DB, s AuthorSeed) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(s.Email))
	username := strings.ToLower(strings.TrimSpace(s.Username))
	if email == "" || username == "" || s.Password == "" {
		return false, errors.New("seed author: email, username and password are required")
	}

	var n int64
	if err := db.WithContext(ctx).Model(&authorModel.AuthorModel{}).
		Where("author_email = ? OR author_username = ?", email, username).
		Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		log.Printf("[SEED] author %q already exists, skipped", email)
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password for %s: %w", email, err)
	}

	role := strings.ToLower(strings.TrimSpace(s.Role))
	if !constants.IsValidRole(role) {
		role = constants.RoleAuthor
	}
	fullName := strings.TrimSpace(s.FullName)
	if fullName == "" {
		fullName = username
	}

	a := authorModel.AuthorModel{
		AuthorFullName: fullName,
		AuthorUsername: username,
		AuthorEmail:    email,
		AuthorPassword: string(hash),
		AuthorRole:     role,
		AuthorIsActive: true,
	}
	if err := db.WithContext(ctx).Create(&a).Error; err != nil {
		return false, fmt.Errorf("insert author %s: %w", email, err)
	}
	log.Printf("[SEED] author %q inserted (role=%s)", email, role)
	return true, nil
}

func SeedAuthorsFromJSON(ctx context.Context, db *gorm.DB, filePath string) error {
	log.Println("[SEED] reading", filePath)
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var inputs []AuthorSeed
	if err := sonic.Unmarshal(raw, &inputs); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}
	for _, in := range inputs {
		if _, err := SeedAuthor(ctx, db, in); err != nil {
			log.Printf("[SEED] %v", err)
		}
	}
	return nil
}
