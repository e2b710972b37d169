package seeds

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
	"github.com/abassolaiya/phibitechbackend/internals/constants"
	"github.com/abassolaiya/phibitechbackend/internals/seeds/authors"
)

// RunAllSeeds creates the bootstrap admin from SEED_* and, when given, the
// authors listed in a JSON file.
func RunAllSeeds(ctx context.Context, db *gorm.DB, cfg configs.SeedConfig, authorsFile string) error {
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := authors.SeedAuthor(ctx, db, authors.AuthorSeed{
			FullName: "Administrator",
			Username: cfg.AdminUsername,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			Role:     constants.RoleAdmin,
		}); err != nil {
			return err
		}
	} else {
		log.Println("[SEED] SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD not set, admin skipped")
	}

	if authorsFile != "" {
		return authors.SeedAuthorsFromJSON(ctx, db, authorsFile)
	}
	return nil
}
