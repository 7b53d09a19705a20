package model

import "errors"

var (
	// the submitted URL has no playlist id, or the playlist does not exist.
	ErrInvalidInput = errors.New("the url you entered doesn't seem to be a valid YouTube playlist")

	// network, status or payload failure talking to the catalog.
	ErrCatalogUnavailable = errors.New("the video catalog is unavailable")

	// validation finished without a single playlist reaching 60 eligible videos.
	ErrNoQualifyingPlaylist = errors.New("no playlist with at least 60 one-minute videos was found")

	ErrSessionNotFound = errors.New("session not found")
)
