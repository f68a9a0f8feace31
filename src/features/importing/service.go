package importing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rottenolives/rottenolives/src/features/config"
	"github.com/rottenolives/rottenolives/src/features/metrics"
	"github.com/rottenolives/rottenolives/src/music"
)

// Notifier is told about finished import runs. The telegram notifier
// implements it; a nil Notifier disables notifications.
type Notifier interface {
	ImportFinished(playlistName string, imported int)
}

// Service is the domain service for the importing feature.
type Service struct {
	library  music.Library
	catalog  music.Catalog
	config   *config.Manager
	notifier Notifier
}

// NewService creates a new importing service.
func NewService(lib music.Library, catalog music.Catalog, cfg *config.Manager, notifier Notifier) *Service {
	return &Service{
		library:  lib,
		catalog:  catalog,
		config:   cfg,
		notifier: notifier,
	}
}

// Preview is the read-only view of a playlist returned to the admin UI.
type Preview struct {
	Playlist *music.CatalogPlaylist `json:"playlist"`
	Count    int                    `json:"count"`
	Items    []*NormalizedTrack     `json:"items"`
}

// ImportedItem identifies one release touched by an import run.
type ImportedItem struct {
	ReleaseID string `json:"releaseId"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
}

// Result summarizes an import run. For a dry run Items is empty and Preview
// carries the would-be items instead.
type Result struct {
	Playlist *music.CatalogPlaylist `json:"playlist"`
	DryRun   bool                   `json:"dryRun"`
	Imported int                    `json:"imported"`
	Items    []ImportedItem         `json:"items"`
	Preview  []*NormalizedTrack     `json:"preview,omitempty"`
}

// Preview fetches and normalizes a playlist without writing anything.
func (s *Service) Preview(ctx context.Context, playlistInput, market string) (*Preview, error) {
	playlist, items, err := s.fetchNormalized(ctx, playlistInput, market)
	if err != nil {
		return nil, err
	}
	return &Preview{Playlist: playlist, Count: len(items), Items: items}, nil
}

// Import runs the full pipeline for a playlist: fetch every page, normalize,
// de-duplicate, then upsert artist, release and score rows per item. Each
// release upsert is its own atomic unit; a failure partway leaves earlier
// upserts committed, and the run is safe to repeat.
func (s *Service) Import(ctx context.Context, playlistInput, market string, isMena, dryRun bool) (*Result, error) {
	playlist, items, err := s.fetchNormalized(ctx, playlistInput, market)
	if err != nil {
		metrics.ImportRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	if dryRun {
		slog.Info("Import dry run", "playlist", playlist.Name, "items", len(items))
		metrics.ImportRuns.WithLabelValues("dry_run").Inc()
		return &Result{Playlist: playlist, DryRun: true, Imported: len(items), Preview: items}, nil
	}

	result := &Result{Playlist: playlist, Items: make([]ImportedItem, 0, len(items))}
	for _, it := range items {
		artist, err := s.resolveArtist(ctx, it.ArtistExternalID, it.ArtistName)
		if err != nil {
			metrics.ImportRuns.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to resolve artist %q: %w", it.ArtistName, err)
		}

		release, err := s.library.UpsertRelease(ctx, &music.Release{
			ArtistID:        artist.ID,
			Title:           it.Title,
			Type:            it.Type,
			ReleaseDate:     it.ReleaseDate,
			Label:           it.Label,
			CoverURL:        it.CoverURL,
			IsMena:          isMena,
			ExternalTrackID: it.ExternalTrackID,
		})
		if err != nil {
			metrics.ImportRuns.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to upsert release %q: %w", it.Title, err)
		}

		if err := s.library.EnsureScore(ctx, release.ID); err != nil {
			metrics.ImportRuns.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to ensure score for release %q: %w", release.ID, err)
		}

		result.Items = append(result.Items, ImportedItem{
			ReleaseID: release.ID,
			Title:     release.Title,
			Artist:    artist.Name,
		})
	}
	result.Imported = len(result.Items)

	slog.Info("Import finished", "playlist", playlist.Name, "imported", result.Imported)
	metrics.ImportRuns.WithLabelValues("ok").Inc()
	metrics.ImportedReleases.Add(float64(result.Imported))

	if s.notifier != nil {
		s.notifier.ImportFinished(playlist.Name, result.Imported)
	}
	return result, nil
}

// fetchNormalized fetches the playlist metadata and all of its tracks,
// normalizes and de-duplicates them, and enriches labels through the batch
// album endpoint (playlist payloads omit the label field).
func (s *Service) fetchNormalized(ctx context.Context, playlistInput, market string) (*music.CatalogPlaylist, []*NormalizedTrack, error) {
	playlistID, err := ExtractPlaylistID(playlistInput)
	if err != nil {
		return nil, nil, err
	}
	if market == "" {
		market = s.config.Get().Spotify.Market
	}

	playlist, err := s.catalog.Playlist(ctx, playlistID, market)
	if err != nil {
		return nil, nil, err
	}

	tracks, err := s.catalog.PlaylistTracks(ctx, playlistID, market)
	if err != nil {
		return nil, nil, err
	}

	items := make([]*NormalizedTrack, 0, len(tracks))
	for _, t := range tracks {
		if it := normalizeTrack(t); it != nil {
			items = append(items, it)
		}
	}
	items = dedupeTracks(items)

	if err := s.enrichLabels(ctx, items); err != nil {
		return nil, nil, err
	}

	slog.Debug("Playlist normalized", "playlist", playlist.Name, "entries", len(tracks), "items", len(items))
	return playlist, items, nil
}

// enrichLabels fills in missing labels via the batch album lookup.
func (s *Service) enrichLabels(ctx context.Context, items []*NormalizedTrack) error {
	var albumIDs []string
	seen := make(map[string]bool)
	for _, it := range items {
		if it.Label != "" || it.albumID == "" || seen[it.albumID] {
			continue
		}
		seen[it.albumID] = true
		albumIDs = append(albumIDs, it.albumID)
	}
	if len(albumIDs) == 0 {
		return nil
	}

	albums, err := s.catalog.AlbumsByIDs(ctx, albumIDs)
	if err != nil {
		return err
	}

	labels := make(map[string]string, len(albums))
	for _, a := range albums {
		if a.Label != "" {
			labels[a.ID] = a.Label
		}
	}
	for _, it := range items {
		if it.Label == "" {
			it.Label = labels[it.albumID]
		}
	}
	return nil
}

// resolveArtist finds or creates the artist for a normalized item. The
// canonical policy: look up by the external catalog id first and refresh a
// stale name in place, then fall back to exact name match, and only then
// create a fresh row keyed by the external id (or a uuid when the catalog
// gave us none).
func (s *Service) resolveArtist(ctx context.Context, externalID, name string) (*music.Artist, error) {
	if externalID != "" {
		artist, err := s.library.GetArtist(ctx, externalID)
		if err != nil {
			return nil, err
		}
		if artist != nil {
			if name != "" && artist.Name != name {
				artist.Name = name
				if err := s.library.UpdateArtist(ctx, artist); err != nil {
					return nil, err
				}
			}
			return artist, nil
		}

		// Not known by id yet; reuse an existing row with the same name
		// rather than duplicating a locally created artist.
		artist, err = s.library.GetArtistByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if artist != nil {
			return artist, nil
		}

		artist = &music.Artist{ID: externalID, Name: name}
		if err := s.library.AddArtist(ctx, artist); err != nil {
			return nil, err
		}
		return artist, nil
	}

	// No external id at all: name matching is the only handle we have.
	artist, err := s.library.GetArtistByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if artist != nil {
		return artist, nil
	}

	artist = &music.Artist{ID: uuid.New().String(), Name: name}
	if err := s.library.AddArtist(ctx, artist); err != nil {
		return nil, err
	}
	return artist, nil
}
