package music

import (
	"errors"
	"strings"
)

// Sentinel errors returned to command handlers. These are ordinary query
// results used for user-facing replies, not failures; the session is left
// unchanged when one is returned. ErrPermissionDenied is the exception:
// failing to join a voice channel terminates the session.
var (
	ErrQueueFull        = errors.New("queue is full")
	ErrQueueEmpty       = errors.New("queue is empty")
	ErrDuplicateTrack   = errors.New("track is already queued")
	ErrTrackTooLong     = errors.New("track exceeds the duration limit")
	ErrIndexOutOfRange  = errors.New("no track with that queue code")
	ErrAlreadyVoted     = errors.New("already voted to skip")
	ErrSessionExists    = errors.New("session already exists for guild")
	ErrPermissionDenied = errors.New("cannot join voice channel")
	ErrNoTrackPlaying   = errors.New("no track is currently playing")
)

// LoadFailure classifies why the engine could not load a requested track.
type LoadFailure int

const (
	LoadFailureGeneric LoadFailure = iota
	LoadFailureGeoBlocked
	LoadFailureCopyright
	LoadFailureUnavailable
)

// ClassifyLoadFailure maps an engine load error onto a LoadFailure bucket
// by inspecting the error text the upstream services produce.
func ClassifyLoadFailure(err error) LoadFailure {
	if err == nil {
		return LoadFailureGeneric
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not made this video available"):
		return LoadFailureGeoBlocked
	case strings.Contains(msg, "contains content from"):
		return LoadFailureCopyright
	case strings.Contains(msg, "not available"):
		return LoadFailureUnavailable
	default:
		return LoadFailureGeneric
	}
}

// Message returns the user-facing reply for the failure class.
func (f LoadFailure) Message(err error) string {
	switch f {
	case LoadFailureGeoBlocked:
		return "That track is geo-blocked and cannot be played."
	case LoadFailureCopyright:
		return "That track has been restricted by the copyright holder and cannot be played."
	case LoadFailureUnavailable:
		return "That track is not available to me and cannot be played."
	default:
		if err != nil {
			return "I couldn't load that track: " + err.Error() + "."
		}
		return "I couldn't load that track."
	}
}

// playbackFaultMessage classifies an engine fault raised mid-playback.
func playbackFaultMessage(err error) string {
	if err == nil {
		return "Track exception; skipping."
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unsupported") || strings.Contains(msg, "unknown format"):
		return "I don't know how to play that type of file; skipping."
	case strings.Contains(msg, "contains content from"):
		return "That track has been restricted by the copyright holder and cannot be played."
	default:
		return "Track exception (" + msg + "); skipping."
	}
}
