package music

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// fakeEngine records calls; tests drive the listener callbacks directly.
type fakeEngine struct {
	mu        sync.Mutex
	playing   *Track
	position  time.Duration
	volume    int
	destroyed bool
	started   []string
	stops     int
}

func (e *fakeEngine) Play(t *Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = t
	if t != nil {
		e.started = append(e.started, t.ID)
	}
}

func (e *fakeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = nil
	e.stops++
}

func (e *fakeEngine) Playing() *Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *fakeEngine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *fakeEngine) SetVolume(percent int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = percent
}

func (e *fakeEngine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = nil
	e.destroyed = true
}

func (e *fakeEngine) startedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.started)
}

// fakeGateway is an in-memory voice layer. Channel membership is keyed by
// guild "/" channel; guild membership by guild.
type fakeGateway struct {
	mu        sync.Mutex
	joined    map[string]string
	joinErr   error
	members   map[string][]Member
	guilds    map[string]map[string]bool
	muted     map[string]bool
	canUnmute bool
	unmutes   int
	leaves    int
	presence  string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		joined:    make(map[string]string),
		members:   make(map[string][]Member),
		guilds:    make(map[string]map[string]bool),
		muted:     make(map[string]bool),
		canUnmute: true,
	}
}

func (g *fakeGateway) setMembers(guildID, channelID string, members ...Member) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[guildID+"/"+channelID] = members
	if g.guilds[guildID] == nil {
		g.guilds[guildID] = make(map[string]bool)
	}
	for _, m := range members {
		g.guilds[guildID][m.ID] = true
	}
}

func (g *fakeGateway) addGuildMember(guildID, userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.guilds[guildID] == nil {
		g.guilds[guildID] = make(map[string]bool)
	}
	g.guilds[guildID][userID] = true
}

func (g *fakeGateway) JoinChannel(guildID, channelID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.joinErr != nil {
		return g.joinErr
	}
	g.joined[guildID] = channelID
	return nil
}

func (g *fakeGateway) LeaveChannel(guildID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.joined, guildID)
	g.leaves++
}

func (g *fakeGateway) IsConnected(guildID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.joined[guildID]
	return ok
}

func (g *fakeGateway) ConnectedChannel(guildID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.joined[guildID]
}

func (g *fakeGateway) VoiceGuilds() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.joined))
	for guildID := range g.joined {
		out = append(out, guildID)
	}
	return out
}

func (g *fakeGateway) ChannelMembers(guildID, channelID string) []Member {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members[guildID+"/"+channelID]
}

func (g *fakeGateway) IsGuildMember(guildID, userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.guilds[guildID][userID]
}

func (g *fakeGateway) SelfMuted(guildID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.muted[guildID]
}

func (g *fakeGateway) CanSelfUnmute(guildID, channelID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canUnmute
}

func (g *fakeGateway) SelfUnmute(guildID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.muted[guildID] = false
	g.unmutes++
	return nil
}

func (g *fakeGateway) SetPresence(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.presence = text
}

func (g *fakeGateway) Presence() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.presence
}

// fakeNotifier collects messages, optionally failing every send.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *fakeNotifier) Send(guildID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, message)
	return nil
}

func (n *fakeNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

// fakeResolver resolves every query to a fixed handler call.
type fakeResolver struct {
	track *Track
	err   error
}

func (r *fakeResolver) Resolve(ctx context.Context, query string, h LoadHandler) {
	switch {
	case r.err != nil:
		h.LoadFailed(r.err)
	case r.track != nil:
		h.TrackLoaded(r.track)
	default:
		h.NoMatches()
	}
}

type harness struct {
	manager *Manager
	gateway *fakeGateway
	notify  *fakeNotifier
	engines map[string]*fakeEngine
	mu      sync.Mutex
}

func newHarness() *harness {
	h := &harness{
		gateway: newFakeGateway(),
		notify:  &fakeNotifier{},
		engines: make(map[string]*fakeEngine),
	}
	h.manager = NewManager(Deps{
		Gateway:  h.gateway,
		Notifier: h.notify,
		Resolver: &fakeResolver{},
		NewEngine: func(guildID string, l EngineListener) Engine {
			e := &fakeEngine{}
			h.mu.Lock()
			h.engines[guildID] = e
			h.mu.Unlock()
			return e
		},
	}, nil, zerolog.Nop())
	return h
}

func (h *harness) engine(guildID string) *fakeEngine {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engines[guildID]
}

func testTrack(id string, d time.Duration) *Track {
	return &Track{ID: id, Title: "Title " + id, Author: "Author", URL: "https://tracks.example/" + id, Duration: d}
}

var errJoin = errors.New("cannot join voice channel: missing permission")
