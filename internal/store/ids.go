package store

import "github.com/google/uuid"

// newID generates a server-assigned UUID for cell_id/scratch_id.
func newID() string { return uuid.NewString() }
