package importing

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rottenolives/rottenolives/src/music"
)

// ErrInvalidPlaylist is returned when a playlist id can't be extracted from
// the operator's input. It is rejected before any network call.
var ErrInvalidPlaylist = errors.New("missing or invalid playlist id")

// NormalizedTrack is the canonical shape of one playlist entry after
// normalization, as previewed to the operator and fed into the upsert loop.
type NormalizedTrack struct {
	ExternalTrackID  string            `json:"externalTrackId"`
	Title            string            `json:"title"`
	ArtistExternalID string            `json:"artistId,omitempty"`
	ArtistName       string            `json:"artistName"`
	Type             music.ReleaseType `json:"type"`
	ReleaseDate      *time.Time        `json:"releaseDate"`
	CoverURL         string            `json:"coverUrl,omitempty"`
	Label            string            `json:"label,omitempty"`

	albumID string
}

var playlistIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ExtractPlaylistID accepts a bare playlist id, a spotify:playlist: URI or an
// open.spotify.com playlist URL and returns the playlist id.
func ExtractPlaylistID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrInvalidPlaylist
	}

	if rest, ok := strings.CutPrefix(input, "spotify:playlist:"); ok {
		input = rest
	} else if strings.Contains(input, "open.spotify.com") {
		u, err := url.Parse(input)
		if err != nil {
			return "", ErrInvalidPlaylist
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i, part := range parts {
			if part == "playlist" && i+1 < len(parts) {
				input = parts[i+1]
				break
			}
		}
	}

	if !playlistIDPattern.MatchString(input) {
		return "", ErrInvalidPlaylist
	}
	return input, nil
}

// normalizeTrack maps one catalog entry to its canonical shape. It returns
// nil for local-only tracks and entries without a stable id; those are
// expected noise in playlist data, not errors.
func normalizeTrack(t music.CatalogTrack) *NormalizedTrack {
	if t.IsLocal || t.ID == "" {
		return nil
	}

	artistID, artistName := "", music.UnknownArtistName
	if len(t.Artists) > 0 {
		artistID = t.Artists[0].ID
		if name := strings.TrimSpace(t.Artists[0].Name); name != "" {
			artistName = name
		}
	}

	return &NormalizedTrack{
		ExternalTrackID:  t.ID,
		Title:            normalizeTitle(t.Title),
		ArtistExternalID: artistID,
		ArtistName:       artistName,
		Type:             mapReleaseType(t.Album.AlbumType),
		ReleaseDate:      parseReleaseDate(t.Album.ReleaseDate),
		CoverURL:         t.Album.CoverURL,
		Label:            t.Album.Label,
		albumID:          t.Album.ID,
	}
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// normalizeTitle collapses consecutive whitespace and trims.
func normalizeTitle(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// mapReleaseType maps the catalog's album_type vocabulary onto ours. EP is a
// local-only category the importer never assigns; anything unknown defaults
// to SINGLE.
func mapReleaseType(albumType string) music.ReleaseType {
	switch strings.ToLower(albumType) {
	case "album":
		return music.ReleaseTypeAlbum
	case "compilation":
		return music.ReleaseTypeCompilation
	default:
		return music.ReleaseTypeSingle
	}
}

var (
	yearPattern      = regexp.MustCompile(`^\d{4}$`)
	yearMonthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// parseReleaseDate coerces the catalog's year, year-month or full-date
// granularities to the start of that period, in UTC. Missing or unparseable
// dates map to nil; the release still imports and sorts after dated ones.
func parseReleaseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	switch {
	case yearPattern.MatchString(raw):
		raw += "-01-01"
	case yearMonthPattern.MatchString(raw):
		raw += "-01"
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

// dedupeTracks drops repeated external track ids within a run, keeping the
// first occurrence.
func dedupeTracks(tracks []*NormalizedTrack) []*NormalizedTrack {
	seen := make(map[string]bool, len(tracks))
	deduped := make([]*NormalizedTrack, 0, len(tracks))
	for _, t := range tracks {
		if seen[t.ExternalTrackID] {
			continue
		}
		seen[t.ExternalTrackID] = true
		deduped = append(deduped, t)
	}
	return deduped
}
