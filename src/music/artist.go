package music

import (
	"fmt"
	"strings"
)

// UnknownArtistName is used when the catalog gives us a track with no artist.
const UnknownArtistName = "Unknown Artist"

// Artist represents a music artist.
// ID is the external catalog artist identifier when one is known, so that
// re-imports resolve to the same row; otherwise a locally generated uuid.
type Artist struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

// Validate validates the artist fields.
func (a *Artist) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("artist name cannot be empty")
	}
	if len(a.Name) > 500 {
		return fmt.Errorf("artist name cannot exceed 500 characters")
	}
	return nil
}
