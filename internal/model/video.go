package model

import "time"

// RegionRestriction mirrors the catalog's allow/block lists of region codes.
type RegionRestriction struct {
	Allowed []string `json:"allowed,omitempty"`
	Blocked []string `json:"blocked,omitempty"`
}

// RawVideo is a video record as the catalog returned it.
type RawVideo struct {
	ID                string             `json:"id"`
	Duration          string             `json:"duration"` // ISO-8601, e.g. PT3M12S
	Rating            string             `json:"rating,omitempty"`
	RegionRestriction *RegionRestriction `json:"region_restriction,omitempty"`
}

type EligibleVideo struct {
	ID       string        `json:"id"`
	Duration time.Duration `json:"duration"`
}
