package engine

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	"soundwarden/internal/music"
)

// Resolver turns play queries into tracks: YouTube videos and playlists
// through the YouTube client, any other URL as a direct stream for
// ffmpeg. Resolution runs asynchronously; the handler gets exactly one
// callback.
type Resolver struct {
	client *youtube.Client
	log    zerolog.Logger
}

func NewResolver(log zerolog.Logger) *Resolver {
	return &Resolver{
		client: &youtube.Client{
			HTTPClient: &http.Client{Timeout: 15 * time.Second},
		},
		log: log.With().Str("component", "resolver").Logger(),
	}
}

func (r *Resolver) Resolve(ctx context.Context, query string, h music.LoadHandler) {
	go r.resolve(ctx, query, h)
}

func (r *Resolver) resolve(ctx context.Context, query string, h music.LoadHandler) {
	query = strings.TrimSpace(query)
	switch {
	case isYouTubePlaylist(query):
		r.resolvePlaylist(ctx, query, h)
	case isYouTubeVideo(query):
		r.resolveVideo(ctx, query, h)
	case strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://"):
		// Direct URLs go straight to ffmpeg; length is unknown up
		// front, so they are treated like live streams.
		h.TrackLoaded(&music.Track{
			ID:    query,
			Title: path.Base(strings.Split(query, "?")[0]),
			URL:   query,
			Live:  true,
		})
	default:
		h.NoMatches()
	}
}

func (r *Resolver) resolveVideo(ctx context.Context, url string, h music.LoadHandler) {
	id, err := youTubeID(url)
	if err != nil {
		h.LoadFailed(err)
		return
	}
	video, err := r.client.GetVideoContext(ctx, id)
	if err != nil {
		r.log.Warn().Err(err).Str("video", id).Msg("video lookup failed")
		h.LoadFailed(err)
		return
	}
	h.TrackLoaded(videoTrack(video))
}

func (r *Resolver) resolvePlaylist(ctx context.Context, url string, h music.LoadHandler) {
	playlist, err := r.client.GetPlaylistContext(ctx, url)
	if err != nil {
		r.log.Warn().Err(err).Msg("playlist lookup failed")
		h.LoadFailed(err)
		return
	}
	tracks := make([]*music.Track, 0, len(playlist.Videos))
	for _, entry := range playlist.Videos {
		tracks = append(tracks, &music.Track{
			ID:       entry.ID,
			Title:    entry.Title,
			Author:   entry.Author,
			URL:      watchURL(entry.ID),
			Duration: entry.Duration,
			Live:     entry.Duration == 0,
		})
	}
	h.PlaylistLoaded(tracks)
}

func videoTrack(video *youtube.Video) *music.Track {
	return &music.Track{
		ID:       video.ID,
		Title:    video.Title,
		Author:   video.Author,
		URL:      watchURL(video.ID),
		Duration: video.Duration,
		Live:     video.Duration == 0,
	}
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func isYouTubeVideo(query string) bool {
	_, err := youTubeID(query)
	return err == nil
}

func isYouTubePlaylist(query string) bool {
	if !strings.Contains(query, "youtube.com/") && !strings.Contains(query, "youtu.be/") {
		return false
	}
	return strings.Contains(query, "list=") && !strings.Contains(query, "v=")
}
