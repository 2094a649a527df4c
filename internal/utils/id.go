package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier for sessions and prompts.
func GenerateID() string {
	return uuid.New().String()
}
