package utils

import (
	"event-service/core/logger"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	idLength   = 10
)

var generate = gonanoid.Generate

// GenerateID returns a short random id for correlating log lines of one job.
// A uuid stands in when the nanoid source fails.
func GenerateID() string {
	id, err := generate(idAlphabet, idLength)
	if err != nil {
		fallback := uuid.NewString()
		logger.Warn("GenerateID: nanoid failed, using uuid", "error", err, "id", fallback)
		return fallback
	}
	return id
}
