package database

import "github.com/google/uuid"

// GenerateID returns a time-ordered UUID (v7) string.
func GenerateID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
