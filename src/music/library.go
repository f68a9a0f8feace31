package music

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateRating is returned when a rating for a release already exists
// from the same hashed network address.
var ErrDuplicateRating = errors.New("a rating from this network address already exists for this release")

// Library is the interface for the persistent store behind the review site.
// Get methods return (nil, nil) when the record does not exist.
type Library interface {
	// Artist methods
	GetArtist(ctx context.Context, id string) (*Artist, error)
	GetArtistByName(ctx context.Context, name string) (*Artist, error)
	AddArtist(ctx context.Context, artist *Artist) error
	UpdateArtist(ctx context.Context, artist *Artist) error

	// Release methods
	GetRelease(ctx context.Context, id string) (*Release, error)
	GetReleaseByExternalTrackID(ctx context.Context, externalTrackID string) (*Release, error)
	// UpsertRelease inserts the release or, when a row with the same
	// ExternalTrackID exists, refreshes its mutable fields. The stored row
	// is returned; its local ID is stable across re-imports.
	UpsertRelease(ctx context.Context, release *Release) (*Release, error)
	GetReleaseSummaries(ctx context.Context, menaOnly bool) ([]*ReleaseSummary, error)
	GetReleasesCount(ctx context.Context) (int, error)

	// Score methods
	GetScore(ctx context.Context, releaseID string) (*ReleaseScore, error)
	UpsertScore(ctx context.Context, score *ReleaseScore) error
	// EnsureScore creates an empty score row for the release if none exists,
	// otherwise only refreshes its LastCalculated stamp.
	EnsureScore(ctx context.Context, releaseID string) error

	// Rating methods
	AddRating(ctx context.Context, rating *Rating) error
	GetRatings(ctx context.Context, releaseID string) ([]*Rating, error)
	HasRatingFromIP(ctx context.Context, releaseID, ipHash string) (bool, error)
	CountRatingsFromSubnetSince(ctx context.Context, subnetHash string, since time.Time) (int, error)
}
