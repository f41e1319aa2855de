// Package session is the control surface of one visualizer instance.
//
// A Session owns a run controller and the settings around it (array size,
// speed, number display) and turns user commands into controller calls and
// status messages. Every method is safe from any goroutine.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/roach88/sortviz/internal/arraygen"
	"github.com/roach88/sortviz/internal/config"
	"github.com/roach88/sortviz/internal/engine"
	"github.com/roach88/sortviz/internal/ir"
)

// StatusLevel colours a status message.
type StatusLevel string

const (
	LevelReady   StatusLevel = "ready"
	LevelBusy    StatusLevel = "busy"
	LevelSuccess StatusLevel = "success"
	LevelDanger  StatusLevel = "danger"
)

// Status is the one-line message shown to the user.
type Status struct {
	Message string      `json:"message"`
	Level   StatusLevel `json:"level"`
}

// Session is a visualizer instance.
//
// s.mu guards session fields only and is never held across a blocking
// controller call, because run callbacks take it too.
type Session struct {
	ctl    *engine.Controller
	logger *slog.Logger

	mu          sync.Mutex
	gen         *arraygen.Generator
	size        int
	maxValue    int
	pattern     arraygen.Pattern
	speed       int
	showNumbers bool
	status      Status
}

// New creates a session from cfg and generates the initial array.
// opts are passed to the controller after the ones derived from cfg.
func New(cfg config.Config, logger *slog.Logger, opts ...engine.Option) (*Session, error) {
	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	pattern, err := arraygen.ParsePattern(cfg.Pattern)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	gen := arraygen.New(seed)
	values, err := gen.Pattern(pattern, cfg.Size, cfg.MaxValue)
	if err != nil {
		return nil, err
	}

	s := &Session{
		logger:      logger,
		gen:         gen,
		size:        cfg.Size,
		maxValue:    cfg.MaxValue,
		pattern:     pattern,
		speed:       cfg.Speed,
		showNumbers: cfg.ShowNumbers,
		status:      Status{Message: "Ready to sort", Level: LevelReady},
	}

	base := []engine.Option{
		engine.WithDelay(cfg.Delay()),
		engine.WithLogger(logger),
		engine.WithQueueCapacity(cfg.QueueCapacity),
		engine.WithObserver(engine.ObserverFuncs{Finish: s.onFinish}),
	}
	if cfg.MaxSteps > 0 {
		base = append(base, engine.WithMaxSteps(cfg.MaxSteps))
	}
	s.ctl = engine.New(values, append(base, opts...)...)

	logger.Debug("session created", "size", cfg.Size, "speed", cfg.Speed, "seed", seed)
	return s, nil
}

// Controller returns the underlying run controller.
func (s *Session) Controller() *engine.Controller {
	return s.ctl
}

// GenerateNewArray replaces the array with a fresh one of the current size.
// Rejected while a run is active.
func (s *Session) GenerateNewArray() error {
	s.mu.Lock()
	values, err := s.gen.Pattern(s.pattern, s.size, s.maxValue)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := s.ctl.Load(values); err != nil {
		return err
	}
	s.setStatus(fmt.Sprintf("Array generated with %d elements", len(values)), LevelSuccess)
	return nil
}

// Load replaces the array with given values of any length. Rejected while a
// run is active.
func (s *Session) Load(values []int) error {
	if err := s.ctl.Load(values); err != nil {
		return err
	}
	s.setStatus(fmt.Sprintf("Array loaded with %d elements", len(values)), LevelSuccess)
	return nil
}

// Start runs alg on the current array.
//
// The busy status is set before the driver starts, so a run that finishes
// before Start returns still leaves its own final status behind.
func (s *Session) Start(ctx context.Context, alg ir.Algorithm) (string, error) {
	busy := Status{Message: "Sorting in progress...", Level: LevelBusy}
	prev := s.swapStatus(busy)
	id, err := s.ctl.Start(ctx, alg)
	if err != nil {
		s.restoreStatus(busy, prev)
		return "", err
	}
	return id, nil
}

// TogglePause pauses or resumes the active run.
func (s *Session) TogglePause() (ir.RunState, error) {
	state, err := s.ctl.TogglePause()
	if err != nil {
		return state, err
	}
	if state == ir.StatePaused {
		s.setStatus("Sorting paused", LevelBusy)
	} else {
		s.setStatus("Sorting resumed", LevelSuccess)
	}
	return state, nil
}

// Stop cancels the active run and waits for it to exit.
func (s *Session) Stop() error {
	if err := s.ctl.Stop(); err != nil {
		return err
	}
	s.setStatus("Sorting stopped", LevelDanger)
	return nil
}

// SetSpeed sets the speed slider (1..100). It applies to an active run from
// its next step.
func (s *Session) SetSpeed(speed int) error {
	if speed < config.MinSpeed || speed > config.MaxSpeed {
		return fmt.Errorf("speed must be in [%d, %d], got %d", config.MinSpeed, config.MaxSpeed, speed)
	}
	s.mu.Lock()
	s.speed = speed
	s.mu.Unlock()

	s.ctl.SetDelay(config.DelayForSpeed(speed))
	return nil
}

// SetSize sets the array size (10..200) and regenerates the array.
// Rejected while a run is active.
func (s *Session) SetSize(size int) error {
	if size < arraygen.MinSize || size > arraygen.MaxSize {
		return fmt.Errorf("size must be in [%d, %d], got %d", arraygen.MinSize, arraygen.MaxSize, size)
	}
	if state := s.ctl.State(); state.Active() {
		return fmt.Errorf("set size: %w", engine.ErrAlreadyRunning)
	}

	s.mu.Lock()
	prev := s.size
	s.size = size
	s.mu.Unlock()

	if err := s.GenerateNewArray(); err != nil {
		s.mu.Lock()
		s.size = prev
		s.mu.Unlock()
		return err
	}
	return nil
}

// ToggleShowNumbers flips value labels on bars and returns the new setting.
func (s *Session) ToggleShowNumbers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showNumbers = !s.showNumbers
	return s.showNumbers
}

// View returns the current view including display settings.
func (s *Session) View() ir.View {
	v := s.ctl.View()
	s.mu.Lock()
	v.ShowNumbers = s.showNumbers
	s.mu.Unlock()
	return v
}

// Status returns the current status message.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Speed returns the speed slider value.
func (s *Session) Speed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// Size returns the configured array size.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *Session) setStatus(msg string, level StatusLevel) {
	s.swapStatus(Status{Message: msg, Level: level})
}

// swapStatus installs st and returns the status it replaced.
func (s *Session) swapStatus(st Status) Status {
	s.mu.Lock()
	prev := s.status
	s.status = st
	s.mu.Unlock()
	s.logger.Debug("status", "message", st.Message, "level", string(st.Level))
	return prev
}

// restoreStatus puts prev back unless something replaced cur meanwhile.
func (s *Session) restoreStatus(cur, prev Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == cur {
		s.status = prev
	}
}

// onFinish runs on the controller's execution path.
func (s *Session) onFinish(res ir.Result) {
	switch res.Outcome {
	case ir.OutcomeCompleted:
		s.setStatus(fmt.Sprintf("Sorting completed in %.2f seconds", res.Stats.ElapsedSeconds()), LevelSuccess)
	case ir.OutcomeCancelled:
		s.setStatus("Sorting interrupted", LevelDanger)
	default:
		s.setStatus(fmt.Sprintf("Sorting failed: %v", res.Err), LevelDanger)
	}
}
