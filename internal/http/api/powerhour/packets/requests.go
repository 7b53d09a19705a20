package packets

type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

type SubmitPlaylistRequest struct {
	URL string `json:"url" binding:"required"`
}

type PlayRequest struct {
	PlaylistID string `json:"playlist_id" binding:"required"`
}

// PlayerEventRequest carries one embedded-player callback: ready, ended or error.
type PlayerEventRequest struct {
	Event string `json:"event" binding:"required,oneof=ready ended end error"`
}
