package engine

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"layeh.com/gopus"

	"soundwarden/internal/music"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz

	bytesPerSecond = sampleRate * channels * 2

	defaultVolume = 100
	maxVolume     = 150

	stuckThreshold = 10 * time.Second
)

// VoiceSender hands out the opus frame sink for a guild's live voice
// connection. The discord package implements it.
type VoiceSender interface {
	OpusSender(guildID string) (chan<- []byte, error)
	Speaking(guildID string, on bool) error
}

// playback is one track's run through the pipeline. The stop channel
// halts it; done closes when the goroutine has fully exited; ended makes
// sure exactly one end event is emitted no matter who stops it.
type playback struct {
	track   *music.Track
	reader  io.ReadCloser
	cleanup func()

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	bytes atomic.Int64
	stuck atomic.Bool
	ended atomic.Bool
}

func (pb *playback) halt() {
	pb.stopOnce.Do(func() { close(pb.stop) })
}

// Engine streams one guild's audio: decode to PCM through ffmpeg, scale
// for volume, encode to opus and push frames at the gateway. Lifecycle
// callbacks reach the listener from the playback goroutine.
type Engine struct {
	guildID  string
	listener music.EngineListener
	voice    VoiceSender
	log      zerolog.Logger

	mu        sync.Mutex
	pb        *playback
	volume    int
	destroyed bool
}

// New builds an engine for one guild. It satisfies music.Engine.
func New(guildID string, listener music.EngineListener, voice VoiceSender, log zerolog.Logger) *Engine {
	return &Engine{
		guildID:  guildID,
		listener: listener,
		voice:    voice,
		volume:   defaultVolume,
		log:      log.With().Str("component", "engine").Str("guild", guildID).Logger(),
	}
}

// Play starts the track, replacing the current one. Passing nil just
// stops the player; the replaced track's end event carries EndReplaced
// so the session does not advance on it.
func (e *Engine) Play(t *music.Track) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	prev := e.pb
	var pb *playback
	if t != nil {
		pb = &playback{track: t, stop: make(chan struct{}), done: make(chan struct{})}
	}
	e.pb = pb
	e.mu.Unlock()

	e.drain(prev, music.EndReplaced)
	if pb != nil {
		go e.run(pb)
	}
}

// Stop halts the current track with EndStopped. No-op when idle.
func (e *Engine) Stop() {
	e.mu.Lock()
	prev := e.pb
	e.pb = nil
	e.mu.Unlock()
	e.drain(prev, music.EndStopped)
}

// Playing returns the track currently in the pipeline, or nil.
func (e *Engine) Playing() *music.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pb == nil {
		return nil
	}
	return e.pb.track
}

// Position reports how much audio has been delivered so far.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	pb := e.pb
	e.mu.Unlock()
	if pb == nil {
		return 0
	}
	return time.Duration(pb.bytes.Load()/bytesPerSecond) * time.Second
}

// SetVolume adjusts the output gain, clamped to 0..150 percent. Takes
// effect on the next frame.
func (e *Engine) SetVolume(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > maxVolume {
		percent = maxVolume
	}
	e.mu.Lock()
	e.volume = percent
	e.mu.Unlock()
}

func (e *Engine) currentVolume() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Destroy halts playback with EndCleanup and refuses further work.
func (e *Engine) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	prev := e.pb
	e.pb = nil
	e.mu.Unlock()
	e.drain(prev, music.EndCleanup)
}

// drain halts the playback and waits for its goroutine, then emits the
// end event unless the goroutine got there first.
func (e *Engine) drain(pb *playback, reason music.EndReason) {
	if pb == nil {
		return
	}
	pb.halt()
	<-pb.done
	e.emitEnd(pb, reason)
}

func (e *Engine) emitEnd(pb *playback, reason music.EndReason) {
	if pb.ended.CompareAndSwap(false, true) {
		e.listener.OnTrackEnd(pb.track, reason)
	}
}

// detach removes the playback from the engine if it is still current, so
// callers racing in see an idle engine before the end event fires.
func (e *Engine) detach(pb *playback) {
	e.mu.Lock()
	if e.pb == pb {
		e.pb = nil
	}
	e.mu.Unlock()
}

// run owns one track from open to end event. It must detach and close
// done before emitting terminal callbacks: those callbacks re-enter the
// engine through the session, and a Play issued there waits on done.
func (e *Engine) run(pb *playback) {
	reason, emit := e.stream(pb)
	e.detach(pb)
	close(pb.done)
	if emit {
		e.emitEnd(pb, reason)
	}
}

func (e *Engine) stream(pb *playback) (music.EndReason, bool) {
	reader, cleanup, err := openStream(pb.track)
	if err != nil {
		e.log.Warn().Err(err).Str("track", pb.track.ID).Msg("could not open stream")
		e.listener.OnTrackException(pb.track, err)
		return music.EndLoadFailed, true
	}
	pb.reader = reader
	defer cleanup()

	send, err := e.voice.OpusSender(e.guildID)
	if err != nil {
		e.listener.OnTrackException(pb.track, err)
		return music.EndLoadFailed, true
	}

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		e.listener.OnTrackException(pb.track, err)
		return music.EndLoadFailed, true
	}

	_ = e.voice.Speaking(e.guildID, true)
	defer func() { _ = e.voice.Speaking(e.guildID, false) }()

	e.listener.OnTrackStart(pb.track)
	e.log.Debug().Str("track", pb.track.ID).Msg("streaming started")

	go e.watch(pb)

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-pb.stop:
			return 0, false
		default:
		}

		if _, err := io.ReadFull(reader, pcmBuf); err != nil {
			if pb.stuck.Load() {
				return 0, false
			}
			select {
			case <-pb.stop:
				return 0, false
			default:
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return music.EndFinished, true
			}
			e.listener.OnTrackException(pb.track, err)
			return music.EndFinished, true
		}

		volume := e.currentVolume()
		for i := range intBuf {
			s := int32(int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2])))
			intBuf[i] = scaleSample(s, volume)
		}

		opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			e.listener.OnTrackException(pb.track, err)
			return music.EndFinished, true
		}

		select {
		case <-pb.stop:
			return 0, false
		case send <- opus:
			pb.bytes.Add(int64(len(pcmBuf)))
		}
	}
}

func scaleSample(s int32, volume int) int16 {
	s = s * int32(volume) / 100
	if s > 32767 {
		s = 32767
	}
	if s < -32768 {
		s = -32768
	}
	return int16(s)
}

// watch declares the playback stuck when no audio has moved for the
// threshold. Closing the reader unblocks the streaming loop; the stuck
// flag tells it to exit without an end event, since the listener will
// replace the track itself.
func (e *Engine) watch(pb *playback) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var last int64
	var stalled time.Duration
	for {
		select {
		case <-pb.stop:
			return
		case <-pb.done:
			return
		case <-ticker.C:
			cur := pb.bytes.Load()
			if cur != last {
				last = cur
				stalled = 0
				continue
			}
			stalled += time.Second
			if stalled < stuckThreshold {
				continue
			}
			e.log.Warn().Str("track", pb.track.ID).Msg("playback made no progress")
			pb.stuck.Store(true)
			pb.reader.Close()
			e.listener.OnTrackStuck(pb.track, stuckThreshold)
			return
		}
	}
}
