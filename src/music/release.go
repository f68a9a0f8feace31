package music

import (
	"fmt"
	"strings"
	"time"
)

// ReleaseType classifies a release.
type ReleaseType string

const (
	ReleaseTypeSingle      ReleaseType = "SINGLE"
	ReleaseTypeAlbum       ReleaseType = "ALBUM"
	ReleaseTypeEP          ReleaseType = "EP"
	ReleaseTypeCompilation ReleaseType = "COMPILATION"
)

// Release is one rateable catalog entry shown to end users.
// ExternalTrackID is the external catalog's track identifier and the
// idempotency key for imports: re-importing the same track refreshes the
// existing row instead of creating a second one.
type Release struct {
	ID              string      `json:"id"`
	ArtistID        string      `json:"artistId"`
	Title           string      `json:"title"`
	Type            ReleaseType `json:"type"`
	ReleaseDate     *time.Time  `json:"releaseDate,omitempty"`
	Label           string      `json:"label,omitempty"`
	CoverURL        string      `json:"coverUrl,omitempty"`
	IsMena          bool        `json:"isMena"`
	ExternalTrackID string      `json:"externalTrackId,omitempty"`
}

// Validate validates the release fields.
func (r *Release) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("release title cannot be empty")
	}
	if r.ArtistID == "" {
		return fmt.Errorf("release must belong to an artist")
	}
	switch r.Type {
	case ReleaseTypeSingle, ReleaseTypeAlbum, ReleaseTypeEP, ReleaseTypeCompilation:
	default:
		return fmt.Errorf("invalid release type %q", r.Type)
	}
	return nil
}

// ReleaseSummary is a release joined with its artist name and audience score,
// as shown in listings.
type ReleaseSummary struct {
	Release
	ArtistName    string   `json:"artistName"`
	AudienceScore *float64 `json:"audienceScore"`
	AudienceCount int      `json:"audienceCount"`
}
