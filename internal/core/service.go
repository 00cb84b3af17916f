package core

import (
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/leavetrack/internal/gallery"
	"github.com/JonMunkholm/leavetrack/internal/leave"
	"github.com/JonMunkholm/leavetrack/internal/session"
	"github.com/JonMunkholm/leavetrack/internal/upload"
	"github.com/jonboulle/clockwork"
)

// DefaultSignupDelay is the simulated account-creation latency.
const DefaultSignupDelay = time.Second

// UploadSettings configures every uploader the service creates.
type UploadSettings struct {
	Options           upload.Options
	SimulatedDuration time.Duration
	TickInterval      time.Duration
	PreviewMaxWidth   int
	MaxConcurrent     int
	MaxWaitTime       time.Duration
}

// Config wires a Service. Nil stores fall back to in-memory ones.
type Config struct {
	Upload      UploadSettings
	SignupDelay time.Duration

	Gallery  gallery.Store
	Sessions session.Store
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// Service provides the application operations used by the web layer.
type Service struct {
	clock       clockwork.Clock
	logger      *slog.Logger
	uploadOpts  upload.Options
	signupDelay time.Duration

	sim     *upload.Simulator
	reader  *upload.DataURIReader
	limiter *upload.Limiter

	gallery  gallery.Store
	sessions session.Store
	leave    *leave.Service

	mu        sync.RWMutex
	uploaders map[string]*uploaderEntry
}

type uploaderEntry struct {
	id      string
	u       *upload.Uploader
	created time.Time
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Gallery == nil {
		cfg.Gallery = gallery.NewMemoryStore(cfg.Clock)
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewMemoryStore()
	}
	if cfg.SignupDelay <= 0 {
		cfg.SignupDelay = DefaultSignupDelay
	}

	up := cfg.Upload
	return &Service{
		clock:       cfg.Clock,
		logger:      cfg.Logger,
		uploadOpts:  up.Options,
		signupDelay: cfg.SignupDelay,
		sim:         upload.NewSimulator(cfg.Clock, up.SimulatedDuration, up.TickInterval),
		reader:      upload.NewDataURIReader(up.PreviewMaxWidth),
		limiter:     upload.NewLimiter(up.MaxConcurrent, up.MaxWaitTime),
		gallery:     cfg.Gallery,
		sessions:    cfg.Sessions,
		leave:       leave.NewService(),
		uploaders:   make(map[string]*uploaderEntry),
	}
}

// Sessions returns the session store used by auth middleware.
func (s *Service) Sessions() session.Store {
	return s.sessions
}

// Clock returns the service clock.
func (s *Service) Clock() clockwork.Clock {
	return s.clock
}
