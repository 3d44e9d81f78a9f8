package worker

import (
	"context"
	"log"
	"time"

	"neurohire/internal/domain/repository"
	"neurohire/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ExpiryWorker periodically moves overdue attempts to expired. Reads already
// expire lazily, so the sweep only reconciles rows nobody has touched; the
// UPDATE itself is idempotent and a second pass finds nothing to do.
type ExpiryWorker struct {
	rdb         *redis.Client
	attemptRepo repository.CandidateAssessmentRepository
}

func NewExpiryWorker(rdb *redis.Client, attemptRepo repository.CandidateAssessmentRepository) *ExpiryWorker {
	return &ExpiryWorker{rdb: rdb, attemptRepo: attemptRepo}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	interval := time.Duration(config.AppConfig.ExpirySweepIntervalSeconds) * time.Second
	log.Printf("Expiry worker started, sweeping every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Expiry worker stopping...")
			return
		case <-ticker.C:
			w.sweepWithLock(ctx)
		}
	}
}

// sweepWithLock runs one sweep under a distributed lock so only one instance
// sweeps at a time. Losing the race is fine; the winner does the same work.
func (w *ExpiryWorker) sweepWithLock(ctx context.Context) {
	lockValue := uuid.NewString()
	lockTTL := time.Duration(config.AppConfig.ExpirySweepLockTTLSeconds) * time.Second

	ok, err := w.rdb.SetNX(ctx, config.AppConfig.ExpirySweepLockKey, lockValue, lockTTL).Result()
	if err != nil {
		log.Printf("ERROR: Failed to attempt expiry sweep lock acquisition: %v", err)
		return
	}
	if !ok {
		// Another instance holds the lock; skip this tick.
		return
	}

	defer func() {
		// Release only if we still hold it.
		script := redis.NewScript(`
            if redis.call("get", KEYS[1]) == ARGV[1] then
                return redis.call("del", KEYS[1])
            else
                return 0
            end
        `)
		if _, err := script.Run(ctx, w.rdb, []string{config.AppConfig.ExpirySweepLockKey}, lockValue).Result(); err != nil {
			log.Printf("ERROR: Failed to release expiry sweep lock: %v", err)
		}
	}()

	count, err := w.attemptRepo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("ERROR: Expiry sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Expiry sweep: %d attempts expired", count)
	}
}
