package importing

import (
	"testing"
	"time"

	"github.com/rottenolives/rottenolives/src/music"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare id", input: "37i9dQZF1DXcBWIGoYBM5M", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "uri", input: "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "url", input: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "url with query", input: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "surrounding whitespace", input: "  37i9dQZF1DXcBWIGoYBM5M ", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "empty", input: "", wantErr: true},
		{name: "blank", input: "   ", wantErr: true},
		{name: "url without playlist segment", input: "https://open.spotify.com/artist/abc", wantErr: true},
		{name: "garbage characters", input: "not a playlist!", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPlaylistID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPlaylist)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReleaseDate(t *testing.T) {
	date := func(y, m, d int) *time.Time {
		t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	tests := []struct {
		input string
		want  *time.Time
	}{
		{"2021", date(2021, 1, 1)},
		{"2021-06", date(2021, 6, 1)},
		{"2021-06-15", date(2021, 6, 15)},
		{"not-a-date", nil},
		{"2021-13-40", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseReleaseDate(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestMapReleaseType(t *testing.T) {
	assert.Equal(t, music.ReleaseTypeSingle, mapReleaseType("single"))
	assert.Equal(t, music.ReleaseTypeAlbum, mapReleaseType("album"))
	assert.Equal(t, music.ReleaseTypeAlbum, mapReleaseType("ALBUM"))
	assert.Equal(t, music.ReleaseTypeCompilation, mapReleaseType("compilation"))
	// unknown vocabulary defaults to SINGLE; EP is never assigned here
	assert.Equal(t, music.ReleaseTypeSingle, mapReleaseType(""))
	assert.Equal(t, music.ReleaseTypeSingle, mapReleaseType("ep"))
	assert.Equal(t, music.ReleaseTypeSingle, mapReleaseType("mixtape"))
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "A B C", normalizeTitle("  A  B\tC "))
	assert.Equal(t, "", normalizeTitle("   "))
}

func TestNormalizeTrack(t *testing.T) {
	track := music.CatalogTrack{
		ID:      "trk1",
		Title:   "  Cool   Song ",
		Artists: []music.CatalogArtist{{ID: "art1", Name: "Some Artist"}},
		Album: music.CatalogAlbum{
			ID:          "alb1",
			AlbumType:   "album",
			ReleaseDate: "2022-03",
			CoverURL:    "https://img/cover.jpg",
			Label:       "Olive Records",
		},
	}

	got := normalizeTrack(track)
	require.NotNil(t, got)
	assert.Equal(t, "trk1", got.ExternalTrackID)
	assert.Equal(t, "Cool Song", got.Title)
	assert.Equal(t, "art1", got.ArtistExternalID)
	assert.Equal(t, "Some Artist", got.ArtistName)
	assert.Equal(t, music.ReleaseTypeAlbum, got.Type)
	require.NotNil(t, got.ReleaseDate)
	assert.Equal(t, time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC), *got.ReleaseDate)
	assert.Equal(t, "https://img/cover.jpg", got.CoverURL)
	assert.Equal(t, "Olive Records", got.Label)
	assert.Equal(t, "alb1", got.albumID)
}

func TestNormalizeTrack_DropsNoise(t *testing.T) {
	assert.Nil(t, normalizeTrack(music.CatalogTrack{ID: "", Title: "No ID"}))
	assert.Nil(t, normalizeTrack(music.CatalogTrack{ID: "trk1", IsLocal: true}))
}

func TestNormalizeTrack_MissingArtist(t *testing.T) {
	got := normalizeTrack(music.CatalogTrack{ID: "trk1", Title: "Song"})
	require.NotNil(t, got)
	assert.Equal(t, "", got.ArtistExternalID)
	assert.Equal(t, music.UnknownArtistName, got.ArtistName)
}

func TestDedupeTracks(t *testing.T) {
	tracks := []*NormalizedTrack{
		{ExternalTrackID: "a", Title: "first"},
		{ExternalTrackID: "b"},
		{ExternalTrackID: "a", Title: "second"},
	}
	deduped := dedupeTracks(tracks)
	require.Len(t, deduped, 2)
	assert.Equal(t, "first", deduped[0].Title)
	assert.Equal(t, "b", deduped[1].ExternalTrackID)
}
