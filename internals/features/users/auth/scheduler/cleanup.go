package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	authRepo "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/repository"
	helperAuth "github.com/abassolaiya/phibitechbackend/internals/helpers/auth"
)

// CleanupExpiredTokens drops blacklist entries and refresh tokens that can no longer be used.
func CleanupExpiredTokens(ctx context.Context, db *gorm.DB, now time.Time) (blacklisted, refresh int64, err error) {
	blacklisted, err = helperAuth.PurgeExpired(ctx, db, now)
	if err != nil {
		return 0, 0, fmt.Errorf("purge blacklist: %w", err)
	}
	refresh, err = authRepo.PurgeRefreshTokens(ctx, db, now)
	if err != nil {
		return blacklisted, 0, fmt.Errorf("purge refresh tokens: %w", err)
	}
	return blacklisted, refresh, nil
}

// StartTokenCleanupScheduler runs CleanupExpiredTokens on the given cron schedule. The caller stops the returned cron on shutdown.
func StartTokenCleanupScheduler(db *gorm.DB, schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		log.Println("[CLEANUP] purging expired tokens...")
		bl, rt, err := CleanupExpiredTokens(ctx, db, time.Now())
		if err != nil {
			log.Printf("[CLEANUP ERROR] %v", err)
			return
		}
		log.Printf("[CLEANUP] removed %d blacklist entries, %d refresh tokens", bl, rt)
	})
	if err != nil {
		return nil, fmt.Errorf("add cleanup cron %q: %w", schedule, err)
	}
	c.Start()
	log.Printf("[CLEANUP] scheduler started, schedule=%q", schedule)
	return c, nil
}
