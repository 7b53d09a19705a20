package clip

import (
	"errors"
	"fmt"
	"time"

	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
	"github.com/Nixie-Tech-LLC/powerhour/internal/random"
)

var ErrTooShort = errors.New("video is not longer than one clip")

type Selector struct {
	src random.Source
}

func NewSelector(src random.Source) *Selector {
	return &Selector{src: src}
}

// Select draws a random 60 second window inside the video.
// The window always ends at or before the end of the video.
func (s *Selector) Select(v model.EligibleVideo) (model.Clip, error) {
	if v.Duration <= model.ClipLength*time.Second {
		return model.Clip{}, fmt.Errorf("select clip for %s (%s): %w", v.ID, v.Duration, ErrTooShort)
	}

	start := 0
	// whole seconds only; a 60.5s video has no room to move
	if span := int(v.Duration/time.Second) - model.ClipLength; span > 0 {
		start = s.src.Intn(span)
	}
	return model.Clip{
		VideoID:      v.ID,
		StartSeconds: start,
		EndSeconds:   start + model.ClipLength,
	}, nil
}

// SelectAll maps videos to clips, stopping at the first error.
func (s *Selector) SelectAll(videos []model.EligibleVideo) ([]model.Clip, error) {
	clips := make([]model.Clip, 0, len(videos))
	for _, v := range videos {
		c, err := s.Select(v)
		if err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, nil
}
