package spotify

import (
	"fmt"
	"time"
)

// recentlyPlayedResponse is the JSON response for
// GET /v1/me/player/recently-played.
type recentlyPlayedResponse struct {
	Items []PlayItem `json:"items"`
}

// PlayItem is one play event as the API returns it, with the nested
// track/artist/album sub-objects the collector needs.
type PlayItem struct {
	Track    Track  `json:"track"`
	PlayedAt string `json:"played_at"`
}

// Track is the nested track object of a play event.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Popularity int      `json:"popularity"`
	Explicit   bool     `json:"explicit"`
}

// Artist is the nested artist object; only the primary artist is used.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album is the nested album object.
type Album struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	TotalTracks int    `json:"total_tracks"`
}

// ValidationError reports a required nested field missing or malformed
// on one response item.
type ValidationError struct {
	Index int
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("recently-played item %d: missing or malformed %s", e.Index, e.Field)
}

// validate checks the required nested fields of one item. The index is
// only used to build a useful error.
func (p *PlayItem) validate(index int) error {
	switch {
	case p.Track.ID == "":
		return &ValidationError{Index: index, Field: "track.id"}
	case p.Track.Name == "":
		return &ValidationError{Index: index, Field: "track.name"}
	case len(p.Track.Artists) == 0:
		return &ValidationError{Index: index, Field: "track.artists"}
	case p.Track.Album.ID == "":
		return &ValidationError{Index: index, Field: "track.album.id"}
	case p.PlayedAt == "":
		return &ValidationError{Index: index, Field: "played_at"}
	}

	if _, err := time.Parse(time.RFC3339, p.PlayedAt); err != nil {
		return &ValidationError{Index: index, Field: "played_at"}
	}

	return nil
}
