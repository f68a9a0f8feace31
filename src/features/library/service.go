package library

import (
	"context"
	"log/slog"

	"github.com/rottenolives/rottenolives/src/features/config"
	"github.com/rottenolives/rottenolives/src/music"
)

// Service is the domain service for the library feature: the public read
// side of the catalog.
type Service struct {
	library       music.Library
	configManager *config.Manager
}

// NewService creates a new library service.
func NewService(lib music.Library, cfgManager *config.Manager) *Service {
	return &Service{
		library:       lib,
		configManager: cfgManager,
	}
}

// ReleaseDetail is a release joined with its artist, score and ratings.
type ReleaseDetail struct {
	music.Release
	Artist   *music.Artist       `json:"artist"`
	Score    *music.ReleaseScore `json:"scores"`
	Audience []*music.Rating     `json:"audience"`
}

// GetReleases returns release summaries, newest first, undated releases
// last.
func (s *Service) GetReleases(ctx context.Context, menaOnly bool) ([]*music.ReleaseSummary, error) {
	slog.Debug("GetReleases service called", "menaOnly", menaOnly)
	summaries, err := s.library.GetReleaseSummaries(ctx, menaOnly)
	if err != nil {
		slog.Error("GetReleases failed", "error", err)
		return nil, err
	}
	return summaries, nil
}

// GetReleaseDetail returns one release with its artist, score and ratings,
// or (nil, nil) when the release doesn't exist.
func (s *Service) GetReleaseDetail(ctx context.Context, id string) (*ReleaseDetail, error) {
	slog.Debug("GetReleaseDetail service called", "id", id)

	release, err := s.library.GetRelease(ctx, id)
	if err != nil {
		return nil, err
	}
	if release == nil {
		return nil, nil
	}

	artist, err := s.library.GetArtist(ctx, release.ArtistID)
	if err != nil {
		return nil, err
	}
	score, err := s.library.GetScore(ctx, release.ID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.library.GetRatings(ctx, release.ID)
	if err != nil {
		return nil, err
	}

	return &ReleaseDetail{
		Release:  *release,
		Artist:   artist,
		Score:    score,
		Audience: ratings,
	}, nil
}
