package eligibility

import (
	"fmt"
	"slices"
	"time"

	"github.com/sosodev/duration"

	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
)

const DefaultRegion = "US"

// MinDuration is exclusive: a video must run longer than one clip.
const MinDuration = model.ClipLength * time.Second

// Reason explains why a record was kept or dropped.
type Reason int

const (
	Eligible Reason = iota
	Rated
	RegionBlocked
	TooShort
	BadDuration
)

func (r Reason) String() string {
	switch r {
	case Eligible:
		return "eligible"
	case Rated:
		return "content rated"
	case RegionBlocked:
		return "region blocked"
	case TooShort:
		return "too short"
	case BadDuration:
		return "unparseable duration"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Filter decides which catalog records can become clips.
type Filter struct {
	Region string
}

func New(region string) Filter {
	if region == "" {
		region = DefaultRegion
	}
	return Filter{Region: region}
}

// ParseDuration converts ISO-8601 duration text (PT4M13S) to a time.Duration.
func ParseDuration(iso string) (time.Duration, error) {
	d, err := duration.Parse(iso)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", iso, err)
	}
	return d.ToTimeDuration(), nil
}

// Reason runs the checks in order: rating, region, duration.
func (f Filter) Reason(v model.RawVideo) Reason {
	r, _ := f.check(v)
	return r
}

// check also returns the parsed duration when the record is eligible.
func (f Filter) check(v model.RawVideo) (Reason, time.Duration) {
	if v.Rating != "" {
		return Rated, 0
	}
	if !f.RegionAllowed(v.RegionRestriction) {
		return RegionBlocked, 0
	}
	d, err := ParseDuration(v.Duration)
	if err != nil {
		return BadDuration, 0
	}
	if d <= MinDuration {
		return TooShort, 0
	}
	return Eligible, d
}

func (f Filter) Eligible(v model.RawVideo) bool {
	return f.Reason(v) == Eligible
}

func (f Filter) RegionAllowed(rr *model.RegionRestriction) bool {
	if rr == nil {
		return true
	}
	if rr.Blocked != nil && slices.Contains(rr.Blocked, f.Region) {
		return false
	}
	if rr.Allowed != nil && !slices.Contains(rr.Allowed, f.Region) {
		return false
	}
	return true
}

// Apply keeps the eligible records, in order, with their parsed durations.
func (f Filter) Apply(videos []model.RawVideo) []model.EligibleVideo {
	out := make([]model.EligibleVideo, 0, len(videos))
	for _, v := range videos {
		reason, d := f.check(v)
		if reason != Eligible {
			continue
		}
		out = append(out, model.EligibleVideo{ID: v.ID, Duration: d})
	}
	return out
}
