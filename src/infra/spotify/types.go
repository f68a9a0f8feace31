package spotify

import "github.com/rottenolives/rottenolives/src/music"

// Spotify Web API response structures (subset)

type playlistResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type playlistTracksPage struct {
	Items []playlistItem `json:"items"`
	Next  *string        `json:"next"`
}

type playlistItem struct {
	Track *trackObject `json:"track"`
}

type trackObject struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	IsLocal bool           `json:"is_local"`
	Artists []artistObject `json:"artists"`
	Album   albumObject    `json:"album"`
}

type artistObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type albumObject struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	AlbumType   string        `json:"album_type"`
	ReleaseDate string        `json:"release_date"`
	Label       string        `json:"label"`
	Images      []imageObject `json:"images"`
}

type imageObject struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type albumsResponse struct {
	Albums []*albumObject `json:"albums"`
}

func (t *trackObject) toCatalogTrack() music.CatalogTrack {
	track := music.CatalogTrack{
		ID:      t.ID,
		Title:   t.Name,
		IsLocal: t.IsLocal,
		Album:   t.Album.toCatalogAlbum(),
	}
	for _, a := range t.Artists {
		track.Artists = append(track.Artists, music.CatalogArtist{ID: a.ID, Name: a.Name})
	}
	return track
}

func (a *albumObject) toCatalogAlbum() music.CatalogAlbum {
	album := music.CatalogAlbum{
		ID:          a.ID,
		Name:        a.Name,
		AlbumType:   a.AlbumType,
		ReleaseDate: a.ReleaseDate,
		Label:       a.Label,
	}
	if len(a.Images) > 0 {
		album.CoverURL = a.Images[0].URL
	}
	return album
}
