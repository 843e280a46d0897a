package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"farmsim/internal/app/environment"
	"farmsim/internal/app/ports"
	"farmsim/internal/domain/weather"
	"farmsim/internal/domain/world"
)

var (
	ErrWorldHalted    = errors.New("world halted after an integrity failure")
	ErrInvalidRequest = errors.New("invalid simulation request")
)

// MaxAdvance bounds the ticks a single Advance call may run.
const MaxAdvance = 1000

type Config struct {
	Grid   *world.Grid
	Clouds []weather.Cloud
	// StartYearTick is the year tick of the first simulated tick.
	StartYearTick int
	Seed          int64
	Width         int
	Height        int
	RunID         string
	Schedule      []Incident

	// Journal collects the events of each tick for EventRepo. Events, when
	// set, must include Journal; it lets callers fan out to logs or metrics.
	Journal   ports.EventJournal
	Events    ports.CloudEventSink
	EventRepo ports.EventRepository
	RunRepo   ports.RunRepository
	TxManager ports.TxManager
	Metrics   ports.TickMetrics
	Now       func() time.Time
}

// Runner serialises every mutation of one world: ticks, scheduled incidents
// and direct cloud or village requests.
type Runner struct {
	mu         sync.Mutex
	runID      string
	controller *environment.Controller
	info       world.TickInfo
	schedule   []Incident
	halted     error

	journal   ports.EventJournal
	eventRepo ports.EventRepository
	runRepo   ports.RunRepository
	tx        ports.TxManager
	metrics   ports.TickMetrics
	now       func() time.Time
}

func NewRunner(ctx context.Context, cfg Config) (*Runner, error) {
	if cfg.Journal == nil || cfg.EventRepo == nil || cfg.RunRepo == nil || cfg.TxManager == nil {
		return nil, fmt.Errorf("%w: journal and repositories are required", ErrInvalidRequest)
	}
	if cfg.Events == nil {
		cfg.Events = cfg.Journal
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.StartYearTick == 0 {
		cfg.StartYearTick = 1
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	controller, err := environment.NewController(environment.Config{
		Grid:   cfg.Grid,
		Events: cfg.Events,
		Clouds: cfg.Clouds,
	})
	if err != nil {
		return nil, err
	}

	r := &Runner{
		runID:      cfg.RunID,
		controller: controller,
		info:       world.NewTickInfo(cfg.StartYearTick - 1),
		journal:    cfg.Journal,
		eventRepo:  cfg.EventRepo,
		runRepo:    cfg.RunRepo,
		tx:         cfg.TxManager,
		metrics:    cfg.Metrics,
		now:        cfg.Now,
	}
	for _, inc := range cfg.Schedule {
		if err := r.validateIncident(inc); err != nil {
			return nil, err
		}
	}
	r.schedule = append(r.schedule, cfg.Schedule...)
	sortIncidents(r.schedule)

	err = r.runRepo.Create(ctx, ports.RunRecord{
		RunID:         r.runID,
		Seed:          cfg.Seed,
		Width:         cfg.Width,
		Height:        cfg.Height,
		StartYearTick: cfg.StartYearTick,
		Status:        ports.RunStatusRunning,
		StartedAt:     r.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("register run: %w", err)
	}
	return r, nil
}

func (r *Runner) RunID() string {
	return r.runID
}

// Advance runs n ticks. A fatal error halts the world; every later mutation
// fails with ErrWorldHalted.
func (r *Runner) Advance(ctx context.Context, n int) (AdvanceResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := AdvanceResult{FromTick: r.info.Tick, ToTick: r.info.Tick, YearTick: r.info.YearTick}
	if err := r.checkHalted(); err != nil {
		return res, err
	}
	if n <= 0 || n > MaxAdvance {
		return res, fmt.Errorf("%w: ticks must be in 1..%d, got %d", ErrInvalidRequest, MaxAdvance, n)
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		next := r.info.Next()
		r.journal.SetTick(next.Tick)
		start := r.now()

		err := r.controller.RunTick(next)
		if err == nil {
			err = r.applyDue(next.Tick, &res)
		}
		if err != nil {
			res.Events += r.halt(ctx, next, err)
			return res, err
		}

		r.info = next
		r.metrics.RecordTick(r.now().Sub(start))
		written, err := r.flush(ctx, ports.RunStatusRunning)
		res.Events += written
		res.ToTick = next.Tick
		res.YearTick = next.YearTick
		if err != nil {
			return res, err
		}
	}
	res.Clouds = len(r.controller.Clouds())
	return res, nil
}

// CreateCloud places a cloud between ticks, merging with any occupant.
func (r *Runner) CreateCloud(ctx context.Context, tileID, duration, amount int) (weather.Cloud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkHalted(); err != nil {
		return weather.Cloud{}, err
	}
	if _, err := r.controller.Tile(tileID); err != nil {
		return weather.Cloud{}, err
	}

	r.journal.SetTick(r.info.Tick)
	cloud, err := r.controller.CreateCloud(tileID, duration, amount)
	if err != nil {
		if errors.Is(err, environment.ErrIntegrity) {
			r.halt(ctx, r.info, err)
		}
		return weather.Cloud{}, err
	}
	if _, err := r.flush(ctx, ports.RunStatusRunning); err != nil {
		return cloud, err
	}
	return cloud, nil
}

// ExpandVillage turns a tile into a village between ticks.
func (r *Runner) ExpandVillage(ctx context.Context, tileID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkHalted(); err != nil {
		return err
	}
	if _, err := r.controller.Tile(tileID); err != nil {
		return err
	}

	r.journal.SetTick(r.info.Tick)
	if err := r.controller.VillageCreatedAt(tileID); err != nil {
		r.halt(ctx, r.info, err)
		return err
	}
	_, err := r.flush(ctx, ports.RunStatusRunning)
	return err
}

// Schedule queues an incident for a future tick.
func (r *Runner) Schedule(inc Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkHalted(); err != nil {
		return err
	}
	if inc.DueTick() <= r.info.Tick {
		return fmt.Errorf("%w: incident %d due at tick %d, world is at %d", ErrInvalidRequest, inc.IncidentID(), inc.DueTick(), r.info.Tick)
	}
	if err := r.validateIncident(inc); err != nil {
		return err
	}
	for _, queued := range r.schedule {
		if queued.IncidentID() == inc.IncidentID() {
			return fmt.Errorf("%w: incident %d already scheduled", ports.ErrConflict, inc.IncidentID())
		}
	}
	r.schedule = append(r.schedule, inc)
	sortIncidents(r.schedule)
	return nil
}

func (r *Runner) Clouds() []weather.Cloud {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.controller.Clouds()
}

func (r *Runner) Tile(tileID int) (TileView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tile, err := r.controller.Tile(tileID)
	if err != nil {
		return TileView{}, err
	}
	view := TileView{Tile: tile}
	if cloud, ok := r.controller.CloudAt(tileID); ok {
		view.Cloud = &cloud
	}
	return view, nil
}

// Events lists the journal of this run, newest first.
func (r *Runner) Events(ctx context.Context, limit int) ([]weather.Event, error) {
	return r.eventRepo.ListByRunID(ctx, r.runID, limit)
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Status{
		RunID:       r.runID,
		Tick:        r.info.Tick,
		YearTick:    r.info.YearTick,
		Clouds:      len(r.controller.Clouds()),
		NextCloudID: r.controller.NextCloudID(),
		Pending:     len(r.schedule),
		Halted:      r.halted != nil,
	}
	if r.halted != nil {
		s.HaltReason = r.halted.Error()
	}
	return s
}

func (r *Runner) checkHalted() error {
	if r.halted != nil {
		return fmt.Errorf("%w: %v", ErrWorldHalted, r.halted)
	}
	return nil
}

func (r *Runner) validateIncident(inc Incident) error {
	switch v := inc.(type) {
	case CloudCreation:
		if len(v.TileIDs) == 0 {
			return fmt.Errorf("%w: incident %d has no tiles", ErrInvalidRequest, v.ID)
		}
		for _, tileID := range v.TileIDs {
			if _, err := r.controller.Tile(tileID); err != nil {
				return fmt.Errorf("%w: incident %d: %w", ErrInvalidRequest, v.ID, err)
			}
		}
	case CityExpansion:
		if _, err := r.controller.Tile(v.TileID); err != nil {
			return fmt.Errorf("%w: incident %d: %w", ErrInvalidRequest, v.ID, err)
		}
	default:
		return fmt.Errorf("%w: unsupported incident %T", ErrInvalidRequest, inc)
	}
	return nil
}

// applyDue runs the incidents due at tick in ascending id and drops them from
// the schedule.
func (r *Runner) applyDue(tick int, res *AdvanceResult) error {
	i := 0
	for ; i < len(r.schedule) && r.schedule[i].DueTick() <= tick; i++ {
		if err := r.schedule[i].apply(r, res); err != nil {
			r.schedule = r.schedule[i+1:]
			return err
		}
	}
	r.schedule = r.schedule[i:]
	return nil
}

// halt records the fatal error and journals whatever the failed tick emitted.
func (r *Runner) halt(ctx context.Context, at world.TickInfo, cause error) int {
	r.halted = cause
	r.metrics.RecordHalt()
	r.info = at
	written, _ := r.flush(ctx, ports.RunStatusHalted)
	return written
}

func (r *Runner) flush(ctx context.Context, status string) (int, error) {
	events := r.journal.Drain()
	for i := range events {
		events[i].RunID = r.runID
	}
	err := r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if len(events) > 0 {
			if err := r.eventRepo.Append(txCtx, r.runID, events); err != nil {
				return err
			}
		}
		return r.runRepo.UpdateProgress(txCtx, r.runID, r.info.Tick, status)
	})
	if err != nil {
		return 0, fmt.Errorf("journal tick %d: %w", r.info.Tick, err)
	}
	return len(events), nil
}

type nopMetrics struct{}

func (nopMetrics) RecordTick(time.Duration) {}
func (nopMetrics) RecordHalt()              {}
