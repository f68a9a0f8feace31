package music

import "context"

// Catalog fetches playlist and release metadata from the external catalog
// service.
type Catalog interface {
	// Playlist returns a playlist's metadata.
	Playlist(ctx context.Context, playlistID, market string) (*CatalogPlaylist, error)
	// PlaylistTracks returns every track of the playlist, following
	// pagination until exhausted.
	PlaylistTracks(ctx context.Context, playlistID, market string) ([]CatalogTrack, error)
	// AlbumsByIDs looks up albums in batches.
	AlbumsByIDs(ctx context.Context, ids []string) ([]CatalogAlbum, error)
}

// CatalogPlaylist is a playlist as described by the external catalog.
type CatalogPlaylist struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// CatalogArtist is an artist reference inside a catalog payload.
type CatalogArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogAlbum is the album block of a catalog track or a batch album lookup.
// ReleaseDate keeps the raw catalog granularity (yyyy, yyyy-mm or yyyy-mm-dd).
type CatalogAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AlbumType   string `json:"albumType"`
	ReleaseDate string `json:"releaseDate"`
	Label       string `json:"label"`
	CoverURL    string `json:"coverUrl"`
}

// CatalogTrack is one playlist entry. Local-only tracks and entries without
// a stable id are expected noise and dropped during normalization.
type CatalogTrack struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	IsLocal bool            `json:"isLocal"`
	Artists []CatalogArtist `json:"artists"`
	Album   CatalogAlbum    `json:"album"`
}
