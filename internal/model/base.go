package model

import "github.com/google/uuid"

// ensureID assigns a fresh UUID when the primary key is still zero.
// Keys are generated in Go so the same models work on PostgreSQL and SQLite.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
