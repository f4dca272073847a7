package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/organico-dev/organico/internal/models"
	"github.com/organico-dev/organico/internal/tasks"
)

// StartBackfillScheduler periodically enqueues profile provisioning for
// producer accounts that have no profile yet. It is the safety net behind
// the enqueue-on-role-change path: a lost task or a crashed worker heals on
// the next tick. The schedule is a standard cron expression.
func StartBackfillScheduler(schedule string, client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	if schedule == "" {
		logger.Info().Msg("Profile backfill disabled, no schedule configured")
		return
	}

	spec, err := cron.ParseStandard(schedule)
	if err != nil {
		logger.Error().Err(err).Str("schedule", schedule).Msg("Invalid backfill schedule, backfill disabled")
		return
	}

	// Run immediately on startup, then follow the cron schedule
	enqueueMissingProfiles(client, db, logger)

	for {
		next := spec.Next(time.Now())
		time.Sleep(time.Until(next))
		enqueueMissingProfiles(client, db, logger)
	}
}

func enqueueMissingProfiles(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	var users []models.User
	err := db.Where("role = ?", models.RoleProducer).
		Where("id NOT IN (?)", db.Model(&models.ProducerProfile{}).Select("user_id")).
		Find(&users).Error
	if err != nil {
		logger.Error().Err(err).Msg("Failed to query producers without profiles")
		return
	}

	if len(users) == 0 {
		logger.Debug().Msg("No producer profiles to backfill")
		return
	}

	for _, user := range users {
		task, err := tasks.NewProvisionProducerProfileTask(user.ID)
		if err != nil {
			logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to build provisioning task")
			continue
		}
		if _, err := client.Enqueue(task, asynq.Queue("low")); err != nil {
			logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to enqueue provisioning task")
		}
	}

	logger.Info().Int("count", len(users)).Msg("Enqueued producer profile backfill tasks")
}
