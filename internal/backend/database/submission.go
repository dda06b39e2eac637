package database

import "time"

type Submission struct {
	ID        string    `json:"id" db:"id"`
	Image     string    `json:"image" db:"image"`   // data URI, e.g. data:image/png;base64,...
	Handle    string    `json:"handle" db:"handle"` // Telegram username without the leading '@'
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
