package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
	"github.com/Nixie-Tech-LLC/powerhour/internal/random"
)

var errMalformed = errors.New("malformed catalog payload")

type Client struct {
	svc *youtube.Service
	src random.Source
}

var _ Catalog = (*Client)(nil)

// NewClient builds a catalog client. Production passes option.WithAPIKey;
// tests point option.WithEndpoint at a fake server.
func NewClient(ctx context.Context, src random.Source, opts ...option.ClientOption) (*Client, error) {
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc, src: src}, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrCatalogUnavailable, op, err)
}

func summaryFrom(id, title, description string, thumbs *youtube.ThumbnailDetails) model.PlaylistSummary {
	s := model.PlaylistSummary{ID: id, Title: title, Description: description}
	if thumbs != nil && thumbs.Default != nil {
		s.Thumbnail = &model.Thumbnail{
			URL:    thumbs.Default.Url,
			Width:  thumbs.Default.Width,
			Height: thumbs.Default.Height,
		}
	}
	return s
}

func (c *Client) SearchPlaylists(ctx context.Context, query string) ([]model.PlaylistSummary, error) {
	resp, err := c.svc.Search.List([]string{"snippet"}).
		Type("playlist").
		Q(query).
		MaxResults(SearchLimit).
		Fields("items(id/playlistId,snippet(title,description,thumbnails/default))").
		Context(ctx).
		Do()
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("[catalog] search: request failed")
		return nil, unavailable("search playlists", err)
	}

	out := make([]model.PlaylistSummary, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.PlaylistId == "" || item.Snippet == nil {
			return nil, unavailable("search playlists", errMalformed)
		}
		out = append(out, summaryFrom(item.Id.PlaylistId, item.Snippet.Title, item.Snippet.Description, item.Snippet.Thumbnails))
	}
	log.Debug().Str("query", query).Int("playlists", len(out)).Msg("[catalog] search")
	return out, nil
}

// PlaylistVideoIDs walks every page of the playlist and returns the ids shuffled.
func (c *Client) PlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	var ids []string
	pageToken := ""
	pages := 0
	for {
		resp, err := c.svc.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(MaxBatch).
			PageToken(pageToken).
			Fields("nextPageToken,items/contentDetails/videoId").
			Context(ctx).
			Do()
		if err != nil {
			log.Error().Err(err).Str("playlist_id", playlistID).Int("page", pages).
				Msg("[catalog] playlist items: request failed")
			return nil, unavailable("playlist items "+playlistID, err)
		}
		pages++

		for _, item := range resp.Items {
			if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
				return nil, unavailable("playlist items "+playlistID, errMalformed)
			}
			ids = append(ids, item.ContentDetails.VideoId)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	log.Debug().Str("playlist_id", playlistID).Int("pages", pages).Int("videos", len(ids)).
		Msg("[catalog] playlist items")
	return random.Shuffle(c.src, ids), nil
}

func (c *Client) Videos(ctx context.Context, ids []string, eligible func(model.RawVideo) bool) ([]model.RawVideo, error) {
	var (
		videos   []model.RawVideo
		accepted int
		batches  int
	)
	for start := 0; start < len(ids); start += MaxBatch {
		end := min(start+MaxBatch, len(ids))

		resp, err := c.svc.Videos.List([]string{"contentDetails"}).
			Id(ids[start:end]...).
			Fields("items(id,contentDetails(duration,contentRating/ytRating,regionRestriction))").
			Context(ctx).
			Do()
		if err != nil {
			log.Error().Err(err).Int("batch", batches).Msg("[catalog] videos: request failed")
			return nil, unavailable("videos", err)
		}
		batches++

		for _, item := range resp.Items {
			v, err := rawVideo(item)
			if err != nil {
				return nil, unavailable("videos", err)
			}
			videos = append(videos, v)
			if eligible != nil && eligible(v) {
				accepted++
			}
		}

		if eligible != nil && accepted >= model.ClipsPerHour {
			break
		}
	}

	log.Debug().Int("requested", len(ids)).Int("batches", batches).Int("videos", len(videos)).
		Int("eligible", accepted).Msg("[catalog] videos")
	return random.Shuffle(c.src, videos), nil
}

func rawVideo(item *youtube.Video) (model.RawVideo, error) {
	if item == nil || item.Id == "" || item.ContentDetails == nil {
		return model.RawVideo{}, errMalformed
	}
	cd := item.ContentDetails
	v := model.RawVideo{ID: item.Id, Duration: cd.Duration}
	if cd.ContentRating != nil {
		v.Rating = cd.ContentRating.YtRating
	}
	if cd.RegionRestriction != nil {
		v.RegionRestriction = &model.RegionRestriction{
			Allowed: cd.RegionRestriction.Allowed,
			Blocked: cd.RegionRestriction.Blocked,
		}
	}
	return v, nil
}

// Playlist looks up a single playlist's snippet. ok is false when the
// catalog does not know the id.
func (c *Client) Playlist(ctx context.Context, playlistID string) (model.PlaylistSummary, bool, error) {
	resp, err := c.svc.Playlists.List([]string{"snippet"}).
		Id(playlistID).
		Fields("items(id,snippet(title,description,thumbnails/default))").
		Context(ctx).
		Do()
	if err != nil {
		log.Error().Err(err).Str("playlist_id", playlistID).Msg("[catalog] playlist: request failed")
		return model.PlaylistSummary{}, false, unavailable("playlist "+playlistID, err)
	}
	if len(resp.Items) == 0 {
		return model.PlaylistSummary{}, false, nil
	}
	item := resp.Items[0]
	if item.Snippet == nil {
		return model.PlaylistSummary{}, false, unavailable("playlist "+playlistID, errMalformed)
	}
	return summaryFrom(playlistID, item.Snippet.Title, item.Snippet.Description, item.Snippet.Thumbnails), true, nil
}
