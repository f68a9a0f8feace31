package music

import (
	"fmt"
	"time"
)

// DefaultRaterName labels ratings submitted without a display name.
const DefaultRaterName = "Olive Fan"

const (
	MinStars = 1
	MaxStars = 10

	MaxCommentLength = 2000
	MaxRaterNameLen  = 40
)

// Rating is one audience rating for a release. There are no durable user
// accounts: a rating carries an optional display name and salted hashes of
// the submitter's network address, never the raw address. At most one rating
// per (ReleaseID, IPHash) pair exists.
type Rating struct {
	ID         string    `json:"id"`
	ReleaseID  string    `json:"releaseId"`
	Stars      int       `json:"stars"`
	Comment    string    `json:"comment,omitempty"`
	Name       string    `json:"name"`
	IPHash     string    `json:"-"`
	SubnetHash string    `json:"-"`
	IPVersion  int       `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate validates the rating fields.
func (r *Rating) Validate() error {
	if r.ReleaseID == "" {
		return fmt.Errorf("rating must reference a release")
	}
	if r.Stars < MinStars || r.Stars > MaxStars {
		return fmt.Errorf("stars must be between %d and %d", MinStars, MaxStars)
	}
	if len(r.Comment) > MaxCommentLength {
		return fmt.Errorf("comment cannot exceed %d characters", MaxCommentLength)
	}
	return nil
}

// ReleaseScore is the aggregate audience score for a release, on a 0-100
// scale. AudienceScore is nil until the first rating arrives.
type ReleaseScore struct {
	ReleaseID      string    `json:"releaseId"`
	AudienceScore  *float64  `json:"audienceScore"`
	AudienceCount  int       `json:"audienceCount"`
	LastCalculated time.Time `json:"lastCalculated"`
}
