package dismissal

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/course-selector/internal/logging"
)

// State is the result of evaluating the policy at startup.
type State struct {
	Visible bool    `json:"visible"`
	Record  *Record `json:"record,omitempty"`
}

// Initialize reads the persisted record and evaluates the policy. It never
// fails: storage errors and malformed records leave the banner visible.
func Initialize(ctx context.Context, s Storage, now Clock, cfg Config) State {
	rec, err := ReadRecord(ctx, s, cfg)
	if err != nil {
		logging.From(ctx).Warn("ignoring unreadable dismissal record", "error", err)
		return State{Visible: true}
	}
	return State{
		Visible: ComputeVisibility(rec, now(), cfg),
		Record:  rec,
	}
}

// Opener performs the "visit announcement" navigation.
type Opener func(ctx context.Context, url string) error

// Option configures a Banner.
type Option func(*Banner)

// WithListener registers fn to be told the visibility after initialization
// and after every dismissal.
func WithListener(fn func(visible bool)) Option {
	return func(b *Banner) { b.listener = fn }
}

// WithOpener sets how Visit navigates to the announcement target.
func WithOpener(fn Opener) Option {
	return func(b *Banner) { b.open = fn }
}

// Banner is the runtime visibility state of the announcement. It only ever
// moves from visible to hidden; a hidden banner is re-evaluated on the next
// NewBanner call.
type Banner struct {
	cfg      Config
	storage  Storage
	now      Clock
	listener func(bool)
	open     Opener

	visible bool
	record  *Record
}

// NewBanner evaluates the policy and notifies the listener once.
func NewBanner(ctx context.Context, s Storage, now Clock, cfg Config, opts ...Option) *Banner {
	if now == nil {
		now = time.Now
	}
	b := &Banner{
		cfg:     cfg,
		storage: s,
		now:     now,
	}
	for _, opt := range opts {
		opt(b)
	}

	st := Initialize(ctx, s, now, cfg)
	b.visible = st.Visible
	b.record = st.Record
	b.notify()

	return b
}

// Visible reports whether the banner is currently shown.
func (b *Banner) Visible() bool { return b.visible }

// Record returns the last record read or written, or nil.
func (b *Banner) Record() *Record { return b.record }

// Config returns the policy configuration.
func (b *Banner) Config() Config { return b.cfg }

// Dismiss hides the banner and persists a fresh record stamped with the
// current time. Repeating it overwrites the record again. A returned error
// means the record was not persisted; the banner stays hidden for this
// session regardless.
func (b *Banner) Dismiss(ctx context.Context) error {
	rec := Record{
		Dismissed:   true,
		DismissedAt: b.now().UnixMilli(),
		Version:     b.cfg.Version,
	}
	b.visible = false
	b.record = &rec
	b.notify()

	if err := WriteRecord(ctx, b.storage, b.cfg, rec); err != nil {
		logging.From(ctx).Warn("dismissal not persisted", "error", err)
		return err
	}
	logging.From(ctx).Debug("banner dismissed", "version", rec.Version, "at", rec.DismissedAt)
	return nil
}

// Visit opens the announcement target. It does not change visibility.
func (b *Banner) Visit(ctx context.Context) error {
	if b.open == nil {
		return fmt.Errorf("no opener configured")
	}
	if b.cfg.TargetURL == "" {
		return fmt.Errorf("no announcement target configured")
	}
	return b.open(ctx, b.cfg.TargetURL)
}

func (b *Banner) notify() {
	if b.listener != nil {
		b.listener(b.visible)
	}
}
