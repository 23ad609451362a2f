// Package history defines the flat play-history record the pipeline
// stores and the normalization from one API play event into it.
package history

import (
	"time"

	"playlake/internal/spotify"
)

// PlayRecord is one normalized play event. played_at is the source of
// uniqueness per distinct play and is the deduplication key downstream.
// Records are immutable once written.
type PlayRecord struct {
	TrackID             string `json:"track_id"`
	Name                string `json:"name"`
	Artist              string `json:"artist"`
	PlayedAt            string `json:"played_at"`
	Album               string `json:"album"`
	DurationMS          int    `json:"duration_ms"`
	Popularity          int    `json:"popularity"`
	Explicit            bool   `json:"explicit"`
	ArtistID            string `json:"artist_id"`
	AlbumID             string `json:"album_id"`
	ReleaseDate         string `json:"release_date"`
	TotalTracks         int    `json:"total_tracks"`
	PlayedDate          string `json:"played_date"`
	PlayedHour          string `json:"played_hour"`
	CollectionTimestamp string `json:"collection_timestamp"`
}

// Normalize flattens one validated API item into a PlayRecord, stamping
// collectedAt as the moment the pipeline observed the event. The derived
// played_date and played_hour are prefixes of played_at.
func Normalize(item spotify.PlayItem, collectedAt time.Time) PlayRecord {
	primary := item.Track.Artists[0]

	return PlayRecord{
		TrackID:             item.Track.ID,
		Name:                item.Track.Name,
		Artist:              primary.Name,
		PlayedAt:            item.PlayedAt,
		Album:               item.Track.Album.Name,
		DurationMS:          item.Track.DurationMS,
		Popularity:          item.Track.Popularity,
		Explicit:            item.Track.Explicit,
		ArtistID:            primary.ID,
		AlbumID:             item.Track.Album.ID,
		ReleaseDate:         item.Track.Album.ReleaseDate,
		TotalTracks:         item.Track.Album.TotalTracks,
		PlayedDate:          item.PlayedAt[:10],
		PlayedHour:          item.PlayedAt[11:13],
		CollectionTimestamp: collectedAt.Format(time.RFC3339),
	}
}
