package playback

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"webvlc/src/media"
	"webvlc/src/player"
	"webvlc/src/resource"
)

// Engine keeps a media surface in sync with the player state. Changes to the
// store are pushed to the surface and events reported by the surface are
// folded back into the store.
type Engine struct {
	store     *player.Store
	surface   player.Surface
	resources *resource.Server

	// SkipOnError advances to the next entry after the surface fails to play
	// a source instead of stopping.
	SkipOnError bool
}

// NewEngine creates a new engine. Run must be called to start syncing.
func NewEngine(store *player.Store, surface player.Surface, resources *resource.Server) *Engine {
	return &Engine{
		store:     store,
		surface:   surface,
		resources: resources,
	}
}

type bindRequest struct {
	ctx   context.Context
	token uint64
	entry player.Entry
}

type bindResult struct {
	token uint64
	url   string
	err   error
}

// binding is the state of the loop. It is only accessed from the goroutine
// executing Run.
type binding struct {
	// The entry that should be bound, empty if nothing should be.
	want  string
	token uint64

	cancelBind context.CancelFunc
	cancelSub  context.CancelFunc
	pendingSub <-chan interface{}
	events     <-chan interface{}

	// The state of the surface as known to the engine. Only valid while
	// ready is set.
	ready    bool
	url      string
	playing  bool
	volume   float64
	muted    bool
	rate     float64
	subtitle string

	// Consecutive sources that failed to play. Reset once a source starts
	// playing.
	failures int
}

// Run syncs the store and surface until the context is cancelled. The surface
// is unloaded before Run returns.
func (engine *Engine) Run(ctx context.Context) error {
	storeEvents := engine.store.Listen(ctx)
	requests := make(chan bindRequest, 1)
	results := make(chan bindResult, 1)
	binderDone := make(chan struct{})
	go func() {
		defer close(binderDone)
		engine.binder(ctx, requests, results)
	}()

	b := &binding{cancelBind: func() {}, cancelSub: func() {}}
	engine.sync(ctx, b, requests)
	for {
		select {
		case <-ctx.Done():
			b.cancelBind()
			b.cancelSub()
			<-binderDone
			return nil

		case _, ok := <-storeEvents:
			if !ok {
				continue
			}
			engine.sync(ctx, b, requests)

		case res := <-results:
			engine.bound(ctx, b, res)
			engine.sync(ctx, b, requests)

		case event, ok := <-b.events:
			if !ok {
				b.events = nil
				continue
			}
			engine.fold(ctx, b, event)
		}
	}
}

// binder performs the slow part of switching sources. Requests are handled
// one at a time so the previous source is always released before the next one
// is bound.
func (engine *Engine) binder(ctx context.Context, requests <-chan bindRequest, results chan<- bindResult) {
	var bound string
	release := func() {
		if bound == "" {
			return
		}
		if err := engine.surface.Unload(context.Background()); err != nil {
			log.Warnf("Could not unload surface: %v", err)
		}
		if err := engine.resources.Revoke(bound); err != nil {
			log.Debugf("Could not revoke media resource: %v", err)
		}
		bound = ""
	}
	defer release()

	for {
		var req bindRequest
		select {
		case <-ctx.Done():
			return
		case req = <-requests:
		}
		release()

		res := bindResult{token: req.token}
		if req.entry.Handle != nil {
			res.url, res.err = engine.load(req.ctx, req.entry)
			if res.err == nil {
				bound = res.url
			}
		}
		select {
		case results <- res:
		case <-ctx.Done():
			return
		}
	}
}

func (engine *Engine) load(ctx context.Context, entry player.Entry) (string, error) {
	url, err := engine.resources.Create(entry.Handle, media.MimeType(entry.Name))
	if err != nil {
		return "", err
	}
	src := player.Source{
		URL:  url,
		Name: entry.Name,
		MIME: media.MimeType(entry.Name),
		Kind: media.MediaKind(entry.Name),
	}
	if err := engine.surface.Load(ctx, src); err != nil {
		engine.resources.Revoke(url)
		return "", err
	}
	return url, nil
}

// sync compares the state of the store with what has been applied to the
// surface and issues commands for the differences.
func (engine *Engine) sync(ctx context.Context, b *binding, requests chan bindRequest) {
	state := engine.store.State()

	want := ""
	entry, ok := state.Current()
	if ok && !entry.IsPlaceholder() {
		want = entry.ID
	}
	if want != b.want {
		engine.rebind(ctx, b, requests, want, entry)
		return
	}
	if !b.ready {
		if b.want == "" && state.Playing {
			// Nothing is bound, so there is nothing to play.
			engine.store.SetPlaying(false)
		}
		return
	}

	if state.Playing != b.playing {
		if state.Playing {
			engine.play(ctx, b)
		} else {
			if err := engine.surface.Pause(ctx); err != nil {
				log.Errorf("Could not pause surface: %v", err)
			}
			b.playing = false
		}
	}
	if state.Volume != b.volume {
		b.volume = state.Volume
		engine.set("volume", engine.surface.SetVolume(ctx, state.Volume))
	}
	if state.Muted != b.muted {
		b.muted = state.Muted
		engine.set("muted", engine.surface.SetMuted(ctx, state.Muted))
	}
	if state.PlaybackRate != b.rate {
		b.rate = state.PlaybackRate
		engine.set("rate", engine.surface.SetRate(ctx, state.PlaybackRate))
	}

	subtitle := ""
	if state.Subtitle != nil {
		subtitle = state.Subtitle.URL
	}
	if subtitle != b.subtitle {
		b.subtitle = subtitle
		engine.set("subtitle", engine.surface.DetachSubtitles(ctx))
		if state.Subtitle != nil {
			track := player.TextTrack{URL: state.Subtitle.URL, Label: state.Subtitle.Name}
			engine.set("subtitle", engine.surface.AttachSubtitle(ctx, track))
		}
	}
}

func (engine *Engine) rebind(ctx context.Context, b *binding, requests chan bindRequest, want string, entry player.Entry) {
	b.cancelBind()
	b.cancelSub()
	b.token++
	b.want = want
	b.ready = false
	b.url = ""
	b.events = nil

	// A request that the binder has not picked up yet is superseded.
	select {
	case <-requests:
	default:
	}

	subCtx, cancelSub := context.WithCancel(ctx)
	b.cancelSub = cancelSub
	if want != "" {
		// Listen before loading so events emitted while the surface is loading
		// are not lost. They are consumed once the bind has completed.
		b.pendingSub = engine.surface.Events().Listen(subCtx)
	} else {
		b.pendingSub = nil
	}
	bindCtx, cancelBind := context.WithCancel(ctx)
	b.cancelBind = cancelBind

	requests <- bindRequest{ctx: bindCtx, token: b.token, entry: entry}

	engine.store.SetCurrentTime(0)
	engine.store.SetBufferedEnd(0)
	engine.store.SetDuration(player.UnknownDuration)
	if want != "" {
		engine.store.SetMediaKind(media.MediaKind(entry.Name))
	} else {
		engine.store.SetPlaying(false)
		engine.store.SetMediaKind(media.KindUnknown)
	}
}

// bound is called when the binder has finished a request.
func (engine *Engine) bound(ctx context.Context, b *binding, res bindResult) {
	if res.token != b.token {
		log.Debugf("Discarding stale bind result %d", res.token)
		return
	}
	b.cancelBind()
	if res.err != nil {
		if errors.Is(res.err, context.Canceled) {
			return
		}
		log.Errorf("Could not load media: %v", res.err)
		b.cancelSub()
		engine.store.SetMediaError(player.ErrorFromCode(player.CodeSourceUnsupported, res.err.Error()))
		return
	}
	if res.url == "" {
		return
	}

	b.url = res.url
	b.events = b.pendingSub
	b.pendingSub = nil
	b.ready = true

	// The surface has a fresh source, so every property is pushed again.
	state := engine.store.State()
	b.volume = state.Volume
	b.muted = state.Muted
	b.rate = state.PlaybackRate
	engine.set("volume", engine.surface.SetVolume(ctx, state.Volume))
	engine.set("muted", engine.surface.SetMuted(ctx, state.Muted))
	engine.set("rate", engine.surface.SetRate(ctx, state.PlaybackRate))
	b.subtitle = ""
	if state.Subtitle != nil {
		b.subtitle = state.Subtitle.URL
		track := player.TextTrack{URL: state.Subtitle.URL, Label: state.Subtitle.Name}
		engine.set("subtitle", engine.surface.AttachSubtitle(ctx, track))
	}

	b.playing = false
	engine.play(ctx, b)
}

// play starts the surface. A rejection is not an error; the player simply
// stays paused.
func (engine *Engine) play(ctx context.Context, b *binding) {
	if err := engine.surface.Play(ctx); err != nil {
		if errors.Is(err, player.ErrPlayRejected) {
			log.Debug("Surface rejected playback start")
		} else {
			log.Warnf("Could not start playback: %v", err)
		}
		b.playing = false
		engine.store.SetPlaying(false)
		return
	}
	b.playing = true
	engine.store.SetPlaying(true)
}

func (engine *Engine) set(property string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, player.ErrUnsupported) {
		log.Debugf("Surface does not support setting %s", property)
		return
	}
	log.Errorf("Could not set %s on surface: %v", property, err)
}

// fold applies an event reported by the surface to the store.
func (engine *Engine) fold(ctx context.Context, b *binding, event interface{}) {
	switch ev := event.(type) {
	case player.SurfaceTimeEvent:
		if ev.Source == b.url {
			engine.store.SetCurrentTime(ev.Time)
		}
	case player.SurfaceDurationEvent:
		if ev.Source == b.url {
			engine.store.SetDuration(ev.Duration)
		}
	case player.SurfaceBufferedEvent:
		if ev.Source == b.url {
			engine.store.SetBufferedEnd(ev.End)
		}
	case player.SurfacePlayingEvent:
		if ev.Source == b.url {
			b.playing = ev.Playing
			if ev.Playing {
				b.failures = 0
			}
			engine.store.SetPlaying(ev.Playing)
		}
	case player.SurfaceEndedEvent:
		if ev.Source == b.url {
			engine.ended(ctx, b)
		}
	case player.SurfaceErrorEvent:
		if ev.Source == b.url {
			engine.failed(b, ev)
		}
	}
}

func (engine *Engine) ended(ctx context.Context, b *binding) {
	state := engine.store.State()
	next := player.NextIndex(state, 1)
	switch {
	case next < 0:
		engine.store.SetPlaying(false)
	case next == state.CurrentIndex:
		if err := engine.surface.Seek(ctx, 0); err != nil {
			log.Errorf("Could not rewind surface: %v", err)
			engine.store.SetPlaying(false)
			return
		}
		engine.play(ctx, b)
	default:
		if err := engine.store.SetCurrentIndex(next); err != nil {
			log.Errorf("Could not advance playlist: %v", err)
		}
	}
}

func (engine *Engine) failed(b *binding, ev player.SurfaceErrorEvent) {
	merr := player.ErrorFromCode(ev.Code, ev.Message)
	log.WithFields(log.Fields{
		"url":  ev.Source,
		"kind": merr.Kind,
	}).Warnf("Surface reported an error: %s", merr.Message)
	engine.store.SetMediaError(merr)
	b.playing = false

	if !engine.SkipOnError {
		return
	}
	state := engine.store.State()
	b.failures++
	next := player.NextIndex(state, 1)
	if next < 0 || next == state.CurrentIndex || b.failures >= len(state.Playlist) {
		return
	}
	if err := engine.store.SetCurrentIndex(next); err != nil {
		log.Errorf("Could not skip broken entry: %v", err)
	}
}
