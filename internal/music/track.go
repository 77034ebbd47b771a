package music

import (
	"fmt"
	"strings"
	"time"
)

// Track is a resolved, playable piece of media. Tracks are immutable once
// created; identity is the stable Identifier, compared case-insensitively,
// so the same upload queued from two different requests counts as one.
type Track struct {
	ID       string
	Title    string
	Author   string
	URL      string
	Duration time.Duration
	Live     bool
}

// Friendly returns a human-readable label for the track with markdown
// formatting, falling back to the identifier when no title is known.
func (t *Track) Friendly() string {
	if t.Title == "" {
		return t.ID
	}
	title := "**" + strings.ReplaceAll(t.Title, "*", "\\*") + "**"
	if t.Author == "" {
		return title
	}
	return title + " by **" + strings.ReplaceAll(t.Author, "*", "\\*") + "**"
}

// SameTrack reports whether two identifiers refer to the same media.
func SameTrack(a, b string) bool {
	return strings.EqualFold(a, b)
}

// QueueItem pairs a track with the user who requested it.
type QueueItem struct {
	Track       *Track
	RequesterID string
}

func (q QueueItem) String() string {
	return fmt.Sprintf("QueueItem{track=%s, user=%s}", q.Track.ID, q.RequesterID)
}

// FormatDuration renders a duration as m:ss or h:mm:ss for queue listings.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
