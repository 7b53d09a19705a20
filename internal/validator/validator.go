// Package validator decides which playlists can carry a power hour and
// builds their clip sequences.
package validator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/powerhour/internal/catalog"
	"github.com/Nixie-Tech-LLC/powerhour/internal/clip"
	"github.com/Nixie-Tech-LLC/powerhour/internal/eligibility"
	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
)

const DefaultMaxCandidates = 5

type Status int

const (
	Unchecked Status = iota
	RejectedTooFewIDs
	RejectedTooFewEligible
	Accepted
)

func (s Status) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case RejectedTooFewIDs:
		return "rejected: too few videos"
	case RejectedTooFewEligible:
		return "rejected: too few eligible videos"
	case Accepted:
		return "accepted"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Outcome is the result of validating one playlist.
type Outcome struct {
	Status    Status
	Candidate model.Candidate
	Videos    int // ids in the playlist
	Eligible  int // clips built before truncation
}

type Validator struct {
	catalog       catalog.Catalog
	filter        eligibility.Filter
	selector      *clip.Selector
	maxCandidates int
}

func New(cat catalog.Catalog, filter eligibility.Filter, selector *clip.Selector, maxCandidates int) *Validator {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return &Validator{
		catalog:       cat,
		filter:        filter,
		selector:      selector,
		maxCandidates: maxCandidates,
	}
}

// Validate runs one playlist through ids -> metadata -> filter -> clips.
// A playlist with fewer than 60 ids is rejected before any metadata call.
func (v *Validator) Validate(ctx context.Context, summary model.PlaylistSummary) (Outcome, error) {
	out := Outcome{Status: Unchecked, Candidate: model.Candidate{PlaylistSummary: summary}}

	ids, err := v.catalog.PlaylistVideoIDs(ctx, summary.ID)
	if err != nil {
		return out, err
	}
	out.Videos = len(ids)
	if len(ids) < model.ClipsPerHour {
		out.Status = RejectedTooFewIDs
		log.Debug().Str("playlist_id", summary.ID).Int("videos", len(ids)).Msg("[validator] too few videos")
		return out, nil
	}

	raw, err := v.catalog.Videos(ctx, ids, v.filter.Eligible)
	if err != nil {
		return out, err
	}
	if zerolog.GlobalLevel() <= zerolog.TraceLevel {
		for _, r := range raw {
			if reason := v.filter.Reason(r); reason != eligibility.Eligible {
				log.Trace().Str("video_id", r.ID).Stringer("reason", reason).Msg("[validator] dropped video")
			}
		}
	}

	clips, err := v.selector.SelectAll(v.filter.Apply(raw))
	if err != nil {
		return out, fmt.Errorf("build clips for %s: %w", summary.ID, err)
	}
	out.Eligible = len(clips)
	if len(clips) < model.ClipsPerHour {
		out.Status = RejectedTooFewEligible
		log.Debug().Str("playlist_id", summary.ID).Int("eligible", len(clips)).Msg("[validator] too few eligible videos")
		return out, nil
	}

	out.Status = Accepted
	out.Candidate.Clips = clips[:model.ClipsPerHour]
	log.Info().Str("playlist_id", summary.ID).Int("videos", len(ids)).Int("eligible", len(clips)).
		Msg("[validator] playlist accepted")
	return out, nil
}

// Search checks catalog playlists in order and stops once maxCandidates
// have been accepted; later playlists are never fetched.
func (v *Validator) Search(ctx context.Context, query string) ([]model.Candidate, error) {
	playlists, err := v.catalog.SearchPlaylists(ctx, query)
	if err != nil {
		return nil, err
	}

	var valid []model.Candidate
	for _, pl := range playlists {
		out, err := v.Validate(ctx, pl)
		if err != nil {
			log.Error().Err(err).Str("query", query).Str("playlist_id", pl.ID).Msg("[validator] search aborted")
			return nil, err
		}
		if out.Status == Accepted {
			valid = append(valid, out.Candidate)
		}
		if len(valid) >= v.maxCandidates {
			break
		}
	}

	log.Info().Str("query", query).Int("checked_from", len(playlists)).Int("valid", len(valid)).
		Msg("[validator] search complete")
	if len(valid) == 0 {
		return nil, fmt.Errorf("search %q: %w", query, model.ErrNoQualifyingPlaylist)
	}
	return valid, nil
}

// ValidateURL validates the single playlist a pasted link points at.
func (v *Validator) ValidateURL(ctx context.Context, rawURL string) (model.Candidate, error) {
	id, ok := catalog.PlaylistIDFromURL(rawURL)
	if !ok {
		return model.Candidate{}, fmt.Errorf("url %q: %w", rawURL, model.ErrInvalidInput)
	}

	summary, found, err := v.catalog.Playlist(ctx, id)
	if err != nil {
		return model.Candidate{}, err
	}
	if !found {
		return model.Candidate{}, fmt.Errorf("playlist %s: %w", id, model.ErrInvalidInput)
	}

	out, err := v.Validate(ctx, summary)
	if err != nil {
		return model.Candidate{}, err
	}
	if out.Status != Accepted {
		return model.Candidate{}, fmt.Errorf("playlist %s %s: %w", id, out.Status, model.ErrNoQualifyingPlaylist)
	}
	return out.Candidate, nil
}
