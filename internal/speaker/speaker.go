// Package speaker runs the speaking loop: on every interval it either hides
// the line on screen or picks a new one, weighting lines unlocked by the
// current date and time above general chatter.
package speaker

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/coopco/companion/internal/bus"
	"github.com/coopco/companion/internal/messages"
	"github.com/coopco/companion/internal/weighted"
)

const (
	DefaultInterval         = 10 * time.Second
	DefaultStartDelay       = 3 * time.Second
	DefaultDatetimePriority = 2.0
)

// Sources reported on utterances.
const (
	SourceGeneral  = "general"
	SourceDatetime = "datetime"
	SourceTouch    = "touch"
)

// Switcher moves to the next character and returns its merged schema,
// reporting false when there is no other character.
type Switcher interface {
	Next(ctx context.Context) (*messages.Schema, bool, error)
}

type Config struct {
	Bus              *bus.MessageBus
	Schema           *messages.Schema
	Switcher         Switcher // nil disables InputSwitch
	Interval         time.Duration
	StartDelay       time.Duration
	DatetimePriority float64
	Muted            bool // start with speaking disabled
	Now              func() time.Time
	Rand             func() float64 // uniform in [0, 1)
}

// Speaker owns the loop state: the current schema, whether a line is on
// screen, whether speaking is enabled, and the running schedule.
type Speaker struct {
	bus        *bus.MessageBus
	switcher   Switcher
	interval   time.Duration
	startDelay time.Duration
	priority   float64
	now        func() time.Time
	rand       func() float64

	mu      sync.Mutex
	schema  *messages.Schema
	visible bool
	enabled bool
	running bool
	stopCh  chan struct{}
}

func New(cfg Config) *Speaker {
	s := &Speaker{
		bus:        cfg.Bus,
		switcher:   cfg.Switcher,
		interval:   cfg.Interval,
		startDelay: cfg.StartDelay,
		priority:   cfg.DatetimePriority,
		now:        cfg.Now,
		rand:       cfg.Rand,
		schema:     cfg.Schema,
		enabled:    !cfg.Muted,
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.startDelay < 0 {
		s.startDelay = 0
	}
	if s.priority <= 0 {
		s.priority = DefaultDatetimePriority
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rand == nil {
		s.rand = rand.Float64
	}
	return s
}

// Candidate is one line eligible for the next tick.
type Candidate struct {
	Text   string
	Weight float64
	Source string
}

// Candidates returns the general lines (weight 1) followed by the datetime
// lines active at now (weight DatetimePriority).
func (s *Speaker) Candidates(now time.Time) []Candidate {
	s.mu.Lock()
	schema := s.schema
	s.mu.Unlock()
	return s.candidates(schema, now)
}

func (s *Speaker) candidates(schema *messages.Schema, now time.Time) []Candidate {
	if schema == nil {
		return nil
	}
	active := schema.Active(now)
	out := make([]Candidate, 0, len(schema.General)+len(active))
	for _, l := range schema.General {
		out = append(out, Candidate{Text: l, Weight: 1, Source: SourceGeneral})
	}
	for _, l := range active {
		out = append(out, Candidate{Text: l, Weight: s.priority, Source: SourceDatetime})
	}
	return out
}

// Tick runs one step of the loop. If a line is still on screen it is
// hidden and nothing new is said; otherwise a weighted pick is shown.
func (s *Speaker) Tick() { s.tick(nil) }

// tick publishes under s.mu so a Stop that lands while the pick is made
// cannot be followed by a Show. A closed stop makes it a no-op.
func (s *Speaker) tick(stop <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-stop:
		return
	default:
	}

	if s.visible {
		s.visible = false
		s.publish(bus.Utterance{Kind: bus.Hide, At: s.now()})
		return
	}

	now := s.now()
	cands := s.candidates(s.schema, now)
	if len(cands) == 0 {
		slog.Debug("speaker: nothing to say")
		return
	}

	weights := make([]float64, len(cands))
	for i, c := range cands {
		weights[i] = c.Weight
	}
	picked := cands[weighted.New(weights).Pick(s.rand)]
	s.visible = true

	slog.Debug("speaker: say", "source", picked.Source, "candidates", len(cands))
	s.publish(bus.Utterance{Kind: bus.Show, Text: picked.Text, Source: picked.Source, At: now})
}

// Touch shows a random line for the hit region, bypassing the weights.
// It does nothing while speaking is disabled or the region has no lines.
func (s *Speaker) Touch(region string) (string, bool) {
	s.mu.Lock()
	if !s.enabled || s.schema == nil {
		s.mu.Unlock()
		return "", false
	}
	lines := s.schema.Touch[region]
	if len(lines) == 0 {
		s.mu.Unlock()
		return "", false
	}
	i := int(s.rand() * float64(len(lines)))
	if i >= len(lines) {
		i = len(lines) - 1
	}
	text := lines[i]
	s.visible = true
	s.publish(bus.Utterance{Kind: bus.Show, Text: text, Source: SourceTouch, At: s.now()})
	s.mu.Unlock()
	return text, true
}

// Replace swaps the schema, e.g. after a language switch or a reload.
func (s *Speaker) Replace(schema *messages.Schema) {
	s.mu.Lock()
	s.schema = schema
	s.mu.Unlock()
}

// Switch moves to the next character and speaks with its lines from the
// next tick on. It reports whether the schema changed.
func (s *Speaker) Switch(ctx context.Context) bool {
	if s.switcher == nil {
		return false
	}
	schema, ok, err := s.switcher.Next(ctx)
	if err != nil {
		slog.Error("speaker: switch failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	s.Replace(schema)
	return true
}

// Start begins speaking after the start delay: one line immediately, then
// a tick every interval. It is a no-op while disabled or already running.
func (s *Speaker) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running || !s.enabled {
		s.mu.Unlock()
		return
	}
	s.running = true
	stop := make(chan struct{})
	s.stopCh = stop
	s.mu.Unlock()

	go s.run(ctx, stop)
}

func (s *Speaker) run(ctx context.Context, stop chan struct{}) {
	if s.startDelay > 0 {
		timer := time.NewTimer(s.startDelay)
		select {
		case <-timer.C:
		case <-stop:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			s.Stop()
			return
		}
	}

	job := robfigcron.FuncJob(func() { s.tick(stop) })

	scheduler := robfigcron.New()
	scheduler.Schedule(robfigcron.Every(s.interval), job)
	job()
	scheduler.Start()
	slog.Info("speaker: started", "interval", s.interval)

	select {
	case <-stop:
	case <-ctx.Done():
		s.Stop()
	}
	<-scheduler.Stop().Done()
	slog.Info("speaker: stopped")
}

// Stop ends the loop and clears the message window. The Hide it sends is
// the last utterance of the run.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	s.visible = false
	s.publish(bus.Utterance{Kind: bus.Hide, At: s.now()})
}

// SetEnabled turns speaking on (starting the loop) or off (stopping it).
func (s *Speaker) SetEnabled(ctx context.Context, on bool) {
	s.mu.Lock()
	s.enabled = on
	s.mu.Unlock()

	if on {
		s.Start(ctx)
	} else {
		s.Stop()
	}
}

// Serve applies UI input from the bus until ctx is cancelled.
func (s *Speaker) Serve(ctx context.Context) error {
	for {
		ev, err := s.bus.ConsumeInput(ctx)
		if err != nil {
			return err
		}
		switch ev.Kind {
		case bus.InputTouch:
			s.Touch(ev.Region)
		case bus.InputToggle:
			s.SetEnabled(ctx, ev.Enabled)
		case bus.InputSwitch:
			s.Switch(ctx)
		default:
			slog.Warn("speaker: unknown input", "kind", ev.Kind)
		}
	}
}

// Visible reports whether a line is currently on screen.
func (s *Speaker) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Enabled reports whether speaking is on.
func (s *Speaker) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Running reports whether the loop is scheduled.
func (s *Speaker) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Speaker) publish(u bus.Utterance) {
	if s.bus == nil {
		return
	}
	s.bus.PublishUtterance(u)
}
