// Package session runs the tick-based accessory sandbox. Players connect
// over SSH and each gets a session holding a player with a mechanical core
// and a kit of accessories. A single ticker goroutine processes one queued
// action per player, drains worn cores, advances the shared scheduler that
// drives every accessory refresh, and then signals each session to
// redraw.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"mechcore/internal/accessory"
	"mechcore/internal/component"
	"mechcore/internal/config"
	"mechcore/internal/ecs"
	"mechcore/internal/factory"
	"mechcore/internal/item"
	"mechcore/internal/metrics"
	"mechcore/internal/player"
	"mechcore/internal/schedule"
	"mechcore/internal/storage"
	"mechcore/internal/system"
	"mechcore/internal/tier"
)

// TargetName names the training target.
const TargetName = "training dummy"

// Server manages the shared world and every session.
type Server struct {
	mu       sync.Mutex
	cfg      config.Config
	catalog  map[accessory.Kind]*accessory.Definition
	env      *accessory.Env
	world    *ecs.World
	target   ecs.EntityID
	sessions []*Session
	nextID   int

	logger   *slog.Logger
	metrics  *metrics.Metrics
	loadouts *storage.Loadouts
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMetrics records controller events and sessions.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Server) { s.metrics = m } }

// WithLoadouts persists each player's items across reconnects.
func WithLoadouts(l *storage.Loadouts) Option { return func(s *Server) { s.loadouts = l } }

// NewServer creates a Server with one training target. A nil cfg uses
// config.Default.
func NewServer(cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	s := &Server{
		cfg:     *cfg,
		catalog: accessory.Catalog(cfg.Balance),
		world:   ecs.NewWorld(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.env = &accessory.Env{
		Reconciler: cfg.Reconciler(),
		Classifier: tier.Classifier{Thresholds: cfg.Tiers},
		Scheduler:  schedule.New(),
		Period:     cfg.Sim.RefreshPeriod,
		Logger:     s.logger,
	}
	if s.metrics != nil {
		s.env.Observer = s.metrics
	}
	s.target = system.SpawnTarget(s.world, TargetName, cfg.Sim.TargetHealth)
	return s
}

// Run ticks the world every Sim.TickInterval until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.mu.Lock()
	interval := s.cfg.Sim.TickInterval
	s.mu.Unlock()
	if interval <= 0 {
		interval = schedule.TickDuration
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Now returns the simulated time.
func (s *Server) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Scheduler.Now()
}

// Sessions returns the number of connected sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Definition returns the live definition for k.
func (s *Server) Definition(k accessory.Kind) *accessory.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog[k]
}

// ApplyConfig swaps in a reloaded configuration. Balance and tier changes
// take effect at the next refresh of each worn accessory; the tick interval
// is read only when Run starts.
func (s *Server) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = *cfg
	// Items hold definition pointers, so update them in place.
	for k, d := range accessory.Catalog(cfg.Balance) {
		if old, ok := s.catalog[k]; ok {
			*old = *d
			continue
		}
		s.catalog[k] = d
	}
	s.env.Reconciler = cfg.Reconciler()
	s.env.Classifier = tier.Classifier{Thresholds: cfg.Tiers}
	s.env.Period = cfg.Sim.RefreshPeriod
	s.logger.Info("config applied", "reconcile", cfg.Reconcile, "tiers", cfg.Tiers)
}

// Join creates a session for name, restoring its saved loadout or handing
// out the starter kit. screen may be nil.
func (s *Server) Join(ctx context.Context, name string, screen tcell.Screen) *Session {
	var saved *storage.Loadout
	if s.loadouts != nil {
		l, err := s.loadouts.Load(ctx, name)
		switch {
		case err == nil:
			saved = &l
		case errors.Is(err, storage.ErrNotFound):
		default:
			s.logger.Warn("loadout: load failed, using starter kit", "player", name, "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := player.New(name)
	p.OnDrop = func(it *item.Item) { factory.NewDroppedItem(s.world, it, name) }
	sess := newSession(s.nextID, name, p, screen)
	s.nextID++

	p.Notify(fmt.Sprintf("🌟 Welcome, %s", name))
	if saved != nil {
		s.restoreLocked(sess, *saved)
	} else {
		s.starterKitLocked(sess)
	}
	s.sessions = append(s.sessions, sess)
	if s.metrics != nil {
		s.metrics.SessionJoined()
	}
	s.logger.Info("player joined", "player", name, "session", sess.ID, "restored", saved != nil)
	return sess
}

// Leave disposes of sess: worn accessories are detached, the player's
// items (including anything it dropped) are saved, and the session is
// removed.
func (s *Server) Leave(ctx context.Context, sess *Session) {
	s.mu.Lock()
	i := slices.Index(s.sessions, sess)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.sessions = slices.Delete(s.sessions, i, i+1)

	p := sess.Player
	for _, c := range sess.controllers {
		c.Detach(p)
	}
	l := storage.Loadout{Player: sess.Name}
	for slot := 0; slot < p.SlotCount(); slot++ {
		if it := p.Slot(slot); it != nil {
			l.Entries = append(l.Entries, storage.NewEntry(it, slot))
		}
	}
	for _, it := range p.Storage() {
		l.Entries = append(l.Entries, storage.NewEntry(it, storage.StashSlot))
	}
	for _, id := range s.world.Query(component.CDropped) {
		d := s.world.Get(id, component.CDropped).(component.Dropped)
		if d.Owner == sess.Name {
			l.Entries = append(l.Entries, storage.NewEntry(d.Item, storage.StashSlot))
			s.world.Destroy(id)
		}
	}
	if s.metrics != nil {
		s.metrics.SessionLeft()
	}
	s.logger.Info("player left", "player", sess.Name, "session", sess.ID, "items", len(l.Entries))
	s.mu.Unlock()

	if s.loadouts == nil {
		return
	}
	if err := s.loadouts.Save(ctx, l); err != nil {
		s.logger.Warn("loadout: save failed", "player", sess.Name, "error", err)
	}
}

// Do runs a immediately instead of queueing it.
func (s *Server) Do(sess *Session, a Action) {
	s.mu.Lock()
	s.processActionLocked(sess, a)
	s.mu.Unlock()
	sess.signal()
}

// ─── Tick ────────────────────────────────────────────────────────────────────

// Tick advances the sandbox by one host tick.
func (s *Server) Tick() {
	s.mu.Lock()

	// 1. Process one pending action per player.
	for _, sess := range s.sessions {
		if a := sess.TakeAction(); a.Kind != ActionNone {
			s.processActionLocked(sess, a)
		}
	}

	// 2. Worn cores spend energy; the target's window counts down.
	for _, sess := range s.sessions {
		s.drainLocked(sess)
	}
	system.TickInvulnerability(s.world)

	// 3. Accessory refreshes fall due on the simulated clock.
	s.env.Scheduler.Advance(schedule.TickDuration)

	// 4. Gear that changes the player outside the modifier set.
	for _, sess := range s.sessions {
		s.applyGearLocked(sess)
	}
	if !s.world.Alive(s.target) {
		s.target = system.SpawnTarget(s.world, TargetName, s.cfg.Sim.TargetHealth)
	}

	sessions := slices.Clone(s.sessions)
	s.mu.Unlock()

	// Signal outside the lock so slow SSH writes don't hold up the next tick.
	for _, sess := range sessions {
		sess.signal()
	}
}

func (s *Server) now() time.Duration { return s.env.Scheduler.Now() }

// controllerLocked returns the controller bound to it, creating one on
// first use. It returns nil for items that are not accessories.
func (s *Server) controllerLocked(sess *Session, it *item.Item) *accessory.Controller {
	if c, ok := sess.controllers[it.ID]; ok {
		return c
	}
	d, ok := factory.DefinitionOf(it)
	if !ok {
		return nil
	}
	c := accessory.NewController(d, it, s.env)
	sess.controllers[it.ID] = c
	return c
}

// wornLocked returns the controller of the first validly worn accessory of
// kind k.
func (s *Server) wornLocked(sess *Session, k accessory.Kind) *accessory.Controller {
	for _, it := range sess.Player.Slots() {
		c := s.controllerLocked(sess, it)
		if c != nil && c.Def.Kind == k && c.State() == accessory.EquippedValid {
			return c
		}
	}
	return nil
}

// kindInSlotLocked reports whether any slot holds an accessory of kind k,
// whatever its state. Bonuses are keyed per kind, so a second copy would
// overwrite the first one's modifier and take it away on removal.
func (s *Server) kindInSlotLocked(sess *Session, k accessory.Kind) bool {
	for _, it := range sess.Player.Slots() {
		if c := s.controllerLocked(sess, it); c != nil && c.Def.Kind == k {
			return true
		}
	}
	return false
}

func (s *Server) starterKitLocked(sess *Session) {
	p := sess.Player
	kit := factory.StarterKit(s.cfg.Core, s.catalog)
	p.PutSlot(0, kit[0])
	for _, it := range kit[1:] {
		s.stashOrDropLocked(p, it)
	}
}

// restoreLocked puts saved items back where they were. Accessories are
// re-checked against the restored core before they are worn again, since
// modifiers are never saved.
func (s *Server) restoreLocked(sess *Session, l storage.Loadout) {
	p := sess.Player
	type worn struct {
		it   *item.Item
		slot int
	}
	var accessories []worn
	for _, e := range l.Entries {
		it := e.Item()
		factory.Rehydrate(it, s.cfg.Core, s.catalog)
		switch {
		case e.Slot == storage.StashSlot:
			s.stashOrDropLocked(p, it)
		case s.controllerLocked(sess, it) != nil:
			accessories = append(accessories, worn{it, e.Slot})
		case !p.PutSlot(e.Slot, it):
			s.stashOrDropLocked(p, it)
		}
	}
	for _, w := range accessories {
		c := s.controllerLocked(sess, w.it)
		dec := accessory.Check(c.Def, p, s.env)
		if !dec.Allowed {
			p.Notify(accessory.EjectNotice(c.Def, dec))
			s.stashOrDropLocked(p, w.it)
			continue
		}
		if !p.PutSlot(w.slot, w.it) {
			s.stashOrDropLocked(p, w.it)
			continue
		}
		c.OnEquipped(p, s.now())
	}
}

func (s *Server) stashOrDropLocked(p *player.Player, it *item.Item) {
	if !p.Stash(it) {
		p.Drop(it)
	}
}
