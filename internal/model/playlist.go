package model

// ClipsPerHour is the number of clips a power hour plays.
const ClipsPerHour = 60

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
}

// PlaylistSummary is a catalog playlist with its display metadata.
type PlaylistSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
}

// Candidate is a playlist that went through validation. Clips is only
// populated for accepted playlists and holds exactly ClipsPerHour entries.
type Candidate struct {
	PlaylistSummary
	Clips []Clip `json:"clips,omitempty"`
}

// Valid reports whether the candidate carries a full power hour.
func (c Candidate) Valid() bool {
	return len(c.Clips) == ClipsPerHour
}
