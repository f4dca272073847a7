package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Producer profile provisioning (mirrors the registration side effect
	// for accounts that switch role later)
	TypeProvisionProducerProfile = "producer:provision_profile"
)

// ProvisionProfilePayload identifies the user to provision a profile for
type ProvisionProfilePayload struct {
	UserID string `json:"user_id"`
}

// NewProvisionProducerProfileTask creates a task that ensures a producer
// profile exists for the given user
func NewProvisionProducerProfileTask(userID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ProvisionProfilePayload{
		UserID: userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeProvisionProducerProfile, payload), nil
}

// ParseProvisionProfilePayload parses task payload from an Asynq task
func ParseProvisionProfilePayload(task *asynq.Task) (ProvisionProfilePayload, error) {
	var payload ProvisionProfilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
