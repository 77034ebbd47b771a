package music

import (
	"fmt"
	"time"
)

const (
	// TimeLimit caps queueable track length for regular listeners.
	TimeLimit = time.Hour
	// DJTimeLimit is the relaxed cap for listeners holding the DJ role.
	DJTimeLimit = 3 * time.Hour
)

// LoadResults receives the outcome of one resolve request and turns it
// into queue mutations and replies to the requester. One value serves one
// request; the resolver calls exactly one of the handler methods.
type LoadResults struct {
	Session     *Session
	RequesterID string
	// DJ relaxes the track length cap.
	DJ bool
	// Reply delivers the outcome to whoever asked.
	Reply func(message string)
}

func (lr *LoadResults) limit() time.Duration {
	if lr.DJ {
		return DJTimeLimit
	}
	return TimeLimit
}

func (lr *LoadResults) reply(message string) {
	if lr.Reply != nil {
		lr.Reply(message)
	}
}

// admit vets one track against the length cap, the queue cap and the
// duplicate rule, queueing it when it passes. Returns the rejection for
// the caller's reply, or nil when the track was accepted.
func (lr *LoadResults) admit(t *Track) error {
	if !t.Live && t.Duration > lr.limit() {
		return ErrTrackTooLong
	}
	if lr.Session.QueueFull() {
		return ErrQueueFull
	}
	return lr.Session.Enqueue(QueueItem{Track: t, RequesterID: lr.RequesterID}, false)
}

// TrackLoaded queues a single resolved track.
func (lr *LoadResults) TrackLoaded(t *Track) {
	hadCurrent := lr.Session.NowPlaying() != nil
	switch err := lr.admit(t); err {
	case nil:
		if hadCurrent {
			position := lr.Session.QueueLen()
			eta := lr.Session.Duration() - t.Duration
			lr.reply(fmt.Sprintf("Queued %s at position %d; playing in about %s.",
				t.Friendly(), position, FormatDuration(eta)))
		} else {
			lr.reply("Starting " + t.Friendly() + ".")
		}
	case ErrTrackTooLong:
		lr.reply("I can't play " + t.Friendly() + "; it is longer than " + FormatDuration(lr.limit()) + ".")
	case ErrQueueFull:
		lr.reply("The queue is full; try again once it has drained.")
	case ErrDuplicateTrack:
		lr.reply(t.Friendly() + " is already queued.")
	default:
		lr.reply("I couldn't queue " + t.Friendly() + ".")
	}
}

// PlaylistLoaded queues every admissible track from a playlist and
// reports the tally. Bulk-queueing is a DJ privilege; everyone else gets
// the playlist's first track.
func (lr *LoadResults) PlaylistLoaded(tracks []*Track) {
	if len(tracks) == 0 {
		lr.NoMatches()
		return
	}
	if !lr.DJ {
		lr.TrackLoaded(tracks[0])
		return
	}
	added := 0
	for _, t := range tracks {
		if lr.admit(t) == nil {
			added++
		}
	}
	switch {
	case added == 0:
		lr.reply("I couldn't queue anything from that playlist.")
	case added == len(tracks):
		lr.reply(fmt.Sprintf("Queued %d tracks from the playlist.", added))
	default:
		lr.reply(fmt.Sprintf("Queued %d of %d tracks from the playlist; the rest were too long, duplicates or over the queue cap.", added, len(tracks)))
	}
}

// NoMatches reports that the query resolved to nothing. The session may
// have been created just for this request, so it gets an idle check.
func (lr *LoadResults) NoMatches() {
	lr.reply("I couldn't find anything matching that.")
	lr.Session.Prompt()
}

// LoadFailed reports why the resolver could not load the request.
func (lr *LoadResults) LoadFailed(err error) {
	lr.reply(ClassifyLoadFailure(err).Message(err))
	lr.Session.Prompt()
}
