package upload

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// listenerBuffer is sized to hold a full simulation's events.
const listenerBuffer = 128

// Hooks are consumer callbacks. They are called without the uploader's lock
// held and may call back into the Uploader.
type Hooks struct {
	// OnComplete is called exactly once per successful simulated upload.
	OnComplete func(File)

	// OnNotice receives user-facing success and error messages.
	OnNotice func(Notice)
}

// Config wires an Uploader to its collaborators. Zero fields get defaults.
type Config struct {
	Simulator *Simulator
	Reader    PreviewReader
	Limiter   *Limiter
	Clock     clockwork.Clock
	Hooks     Hooks
	Logger    *slog.Logger
}

// Uploader is the state machine for one upload widget.
type Uploader struct {
	sim    *Simulator
	reader PreviewReader
	slots  *Limiter
	clock  clockwork.Clock
	hooks  Hooks
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	file       *File
	preview    string
	progress   int
	gen        uint64
	run        *Run
	cancelRead context.CancelFunc
	holdsSlot  bool
	touched    time.Time
	listeners  []chan Event
}

// New creates an Uploader in the Idle state.
func New(cfg Config) *Uploader {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Simulator == nil {
		cfg.Simulator = NewSimulator(cfg.Clock, DefaultDuration, DefaultTickInterval)
	}
	if cfg.Reader == nil {
		cfg.Reader = NewDataURIReader(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Uploader{
		sim:     cfg.Simulator,
		reader:  cfg.Reader,
		slots:   cfg.Limiter,
		clock:   cfg.Clock,
		hooks:   cfg.Hooks,
		logger:  cfg.Logger,
		touched: cfg.Clock.Now(),
	}
}

// SelectFile validates f and, when accepted, starts the preview read and the
// progress simulation. It is valid from Idle and Complete; while Active it
// returns ErrUploadInProgress. A rejected file yields a *ValidationError, an
// error notice, and no state change.
//
// ctx bounds only the wait for a concurrency slot. The simulation itself
// outlives the call and is stopped by Reset.
func (u *Uploader) SelectFile(ctx context.Context, f File, opts Options) error {
	opts = opts.WithDefaults()

	u.mu.Lock()
	if u.state == StateActive {
		u.mu.Unlock()
		return ErrUploadInProgress
	}
	if err := Validate(f.MediaType, f.Size, opts.AcceptedTypes, opts.MaxSizeMB); err != nil {
		var verr *ValidationError
		errors.As(err, &verr)
		notice := Notice{Level: NoticeError, Message: verr.Message()}
		u.emitNoticeLocked(notice)
		u.mu.Unlock()

		u.logger.Info("file rejected",
			"file", f.Name,
			"media_type", f.MediaType,
			"size", f.Size,
			"reason", verr.Reason,
		)
		u.notify(notice)
		return err
	}
	u.mu.Unlock()

	if u.slots != nil {
		if err := u.slots.Acquire(ctx); err != nil {
			return err
		}
	}

	u.mu.Lock()
	if u.state == StateActive {
		// Another selection won the race while we waited for a slot.
		u.mu.Unlock()
		if u.slots != nil {
			u.slots.Release()
		}
		return ErrUploadInProgress
	}

	if u.cancelRead != nil {
		u.cancelRead()
	}
	u.gen++
	gen := u.gen
	readCtx, cancelRead := context.WithCancel(context.Background())

	u.state = StateActive
	u.file = &f
	u.preview = ""
	u.progress = 0
	u.cancelRead = cancelRead
	u.holdsSlot = u.slots != nil
	u.touched = u.clock.Now()
	u.emitLocked(Event{Type: EventState, State: u.state, Progress: u.progress})
	u.mu.Unlock()

	u.logger.Debug("upload started", "file", f.Name, "size", f.Size)

	u.reader.ReadAsync(readCtx, f, func(preview string, err error) {
		u.previewDone(gen, preview, err)
	})

	run := u.sim.Start(
		func(p int) { u.progressed(gen, p) },
		func() { u.completed(gen) },
	)

	u.mu.Lock()
	stale := u.gen != gen
	if !stale && u.state == StateActive {
		u.run = run
	}
	u.mu.Unlock()

	// Reset or a read failure happened before the run was recorded.
	if stale {
		run.Stop()
	}
	return nil
}

// Reset cancels any running simulation and preview read, discards the file
// and preview, and returns to Idle. It is valid from any state.
func (u *Uploader) Reset() {
	u.mu.Lock()
	run, cancel := u.abandonLocked()
	u.emitLocked(Event{Type: EventState, State: u.state})
	u.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if run != nil {
		run.Stop()
	}
}

// Close resets the uploader and closes all subscriber channels.
func (u *Uploader) Close() {
	u.Reset()

	u.mu.Lock()
	for _, ch := range u.listeners {
		close(ch)
	}
	u.listeners = nil
	u.mu.Unlock()
}

// Status returns a snapshot of the uploader.
func (u *Uploader) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()

	st := Status{State: u.state, Progress: u.progress, Preview: u.preview}
	if u.file != nil {
		st.FileName = u.file.Name
		st.FileSize = u.file.Size
		st.MediaType = u.file.MediaType
	}
	return st
}

// State returns the current state.
func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// LastActivity returns when the uploader last changed state.
func (u *Uploader) LastActivity() time.Time {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.touched
}

// Subscribe returns a channel of events and a function that unsubscribes
// and closes it. Slow subscribers miss events rather than block the uploader.
func (u *Uploader) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, listenerBuffer)

	u.mu.Lock()
	u.listeners = append(u.listeners, ch)
	u.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			u.mu.Lock()
			defer u.mu.Unlock()
			for i, l := range u.listeners {
				if l == ch {
					u.listeners = append(u.listeners[:i], u.listeners[i+1:]...)
					close(ch)
					return
				}
			}
		})
	}
	return ch, unsubscribe
}

func (u *Uploader) progressed(gen uint64, p int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if gen != u.gen || u.state != StateActive || p < u.progress {
		return
	}
	u.progress = p
	u.emitLocked(Event{Type: EventProgress, State: u.state, Progress: p})
}

func (u *Uploader) completed(gen uint64) {
	u.mu.Lock()
	if gen != u.gen || u.state != StateActive {
		u.mu.Unlock()
		return
	}

	u.state = StateComplete
	u.progress = 100
	u.run = nil
	u.touched = u.clock.Now()
	f := *u.file

	// The slot stays held until OnComplete returns so a drain also waits
	// for the completion hook.
	held := u.holdsSlot
	u.holdsSlot = false

	notice := Notice{Level: NoticeSuccess, Message: "Successfully uploaded " + f.Name}
	u.emitLocked(Event{Type: EventState, State: u.state, Progress: u.progress})
	u.emitNoticeLocked(notice)
	u.mu.Unlock()

	u.logger.Info("upload completed", "file", f.Name, "size", f.Size)
	u.notify(notice)
	if u.hooks.OnComplete != nil {
		u.hooks.OnComplete(f)
	}
	if held {
		u.slots.Release()
	}
}

func (u *Uploader) previewDone(gen uint64, preview string, err error) {
	u.mu.Lock()
	if gen != u.gen || u.state == StateIdle {
		u.mu.Unlock()
		return
	}

	if err == nil {
		u.preview = preview
		u.emitLocked(Event{Type: EventPreview, State: u.state, Progress: u.progress})
		u.mu.Unlock()
		return
	}

	// The upload already reported success; keep it and go without a preview.
	if u.state == StateComplete {
		u.mu.Unlock()
		u.logger.Warn("preview read failed after completion", "error", err)
		return
	}

	name := u.file.Name
	run, cancel := u.abandonLocked()
	notice := Notice{Level: NoticeError, Message: "Could not read " + name}
	u.emitLocked(Event{Type: EventState, State: u.state})
	u.emitNoticeLocked(notice)
	u.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if run != nil {
		run.Stop()
	}

	u.logger.Warn("preview read failed", "file", name, "error", err)
	u.notify(notice)
}

// abandonLocked drops the current attempt and returns what the caller must
// stop once the lock is released.
func (u *Uploader) abandonLocked() (*Run, context.CancelFunc) {
	u.gen++
	run, cancel := u.run, u.cancelRead

	u.state = StateIdle
	u.file = nil
	u.preview = ""
	u.progress = 0
	u.run = nil
	u.cancelRead = nil
	u.releaseLocked()
	u.touched = u.clock.Now()

	return run, cancel
}

func (u *Uploader) releaseLocked() {
	if u.holdsSlot {
		u.holdsSlot = false
		u.slots.Release()
	}
}

func (u *Uploader) emitNoticeLocked(n Notice) {
	u.emitLocked(Event{Type: EventNotice, State: u.state, Progress: u.progress, Notice: &n})
}

func (u *Uploader) emitLocked(ev Event) {
	for _, ch := range u.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (u *Uploader) notify(n Notice) {
	if u.hooks.OnNotice != nil {
		u.hooks.OnNotice(n)
	}
}
