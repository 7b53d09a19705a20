package model

// ClipLength is the play window of every clip, in seconds.
const ClipLength = 60

// Clip is a 60 second window into a video. Field names follow the embedded
// player's cueVideoById/loadVideoById arguments.
type Clip struct {
	VideoID      string `json:"videoId"`
	StartSeconds int    `json:"startSeconds"`
	EndSeconds   int    `json:"endSeconds"`
}
