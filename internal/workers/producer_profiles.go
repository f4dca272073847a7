package workers

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/organico-dev/organico/internal/models"
	"github.com/organico-dev/organico/internal/tasks"
)

// HandleProvisionProducerProfile ensures a producer profile exists for the
// user named in the task. Idempotent: a user that already has a profile, or
// that is no longer a producer, is left alone.
func HandleProvisionProducerProfile(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseProvisionProfilePayload(t)
	if err != nil {
		return err
	}

	var user models.User
	if err := db.WithContext(ctx).Where("id = ?", payload.UserID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Warn().Str("user_id", payload.UserID).Msg("Provisioning task for unknown user, skipping")
			return nil
		}
		return fmt.Errorf("failed to load user %s: %w", payload.UserID, err)
	}

	if user.Role != models.RoleProducer {
		logger.Debug().Str("user_id", user.ID).Msg("User is not a producer, skipping profile provisioning")
		return nil
	}

	created, err := provisionProfile(ctx, db, &user)
	if err != nil {
		return err
	}
	if created {
		logger.Info().Str("user_id", user.ID).Msg("Producer profile provisioned")
	}

	return nil
}

// provisionProfile creates the profile when missing, reporting whether a
// row was created
func provisionProfile(ctx context.Context, db *gorm.DB, user *models.User) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.ProducerProfile{}).
		Where("user_id = ?", user.ID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check producer profile for %s: %w", user.ID, err)
	}
	if count > 0 {
		return false, nil
	}

	profile := &models.ProducerProfile{
		UserID:       user.ID,
		BusinessName: user.DisplayName(),
		IsActive:     true,
	}
	if err := db.WithContext(ctx).Create(profile).Error; err != nil {
		return false, fmt.Errorf("failed to create producer profile for %s: %w", user.ID, err)
	}

	return true, nil
}
