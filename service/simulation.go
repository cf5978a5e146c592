package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/gridnav/domain"
	"github.com/beka-birhanu/gridnav/grid"
	logger "github.com/beka-birhanu/gridnav/infrastruture/log"
	"github.com/beka-birhanu/gridnav/navigator"
	"github.com/beka-birhanu/gridnav/service/i"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultQueueKey  = "gridnav:queue:runs"
	defaultWorkers   = 4
	defaultBatchSize = 8
	defaultInterval  = 500 * time.Millisecond
)

var (
	ErrMissingDependency = errors.New("simulation service is missing a dependency")
)

// SimulationConfig holds the dependencies and knobs of a Simulation service.
type SimulationConfig struct {
	Grid     *grid.Grid
	Oracle   navigator.Oracle
	Queue    i.SortedQueue
	Repo     i.RunRepo
	Logger   *log.Logger
	Sensing  navigator.Sensing
	QueueKey string
	// Workers bounds the simulations run at once by Process.
	Workers   int
	BatchSize int64
	// MaxSteps is handed to every navigator; <= 0 derives it from the grid size.
	MaxSteps int
	// Probability is the blocking probability the grid was generated with, copied into every result.
	Probability float64
}

// Simulation queues navigation requests against one shared grid and runs them in the background.
type Simulation struct {
	grid        *grid.Grid
	oracle      navigator.Oracle
	queue       i.SortedQueue
	repo        i.RunRepo
	logger      *log.Logger
	sensing     navigator.Sensing
	queueKey    string
	workers     int
	batchSize   int64
	maxSteps    int
	probability float64
}

// NewSimulation creates a Simulation from c, filling defaults for the queue key, workers and batch size.
func NewSimulation(c SimulationConfig) (*Simulation, error) {
	if c.Grid == nil || c.Oracle == nil || c.Queue == nil || c.Repo == nil || c.Logger == nil {
		return nil, ErrMissingDependency
	}

	if c.QueueKey == "" {
		c.QueueKey = defaultQueueKey
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}

	return &Simulation{
		grid:        c.Grid,
		oracle:      c.Oracle,
		queue:       c.Queue,
		repo:        c.Repo,
		logger:      c.Logger,
		sensing:     c.Sensing,
		queueKey:    c.QueueKey,
		workers:     c.Workers,
		batchSize:   c.BatchSize,
		maxSteps:    c.MaxSteps,
		probability: c.Probability,
	}, nil
}

// Submit validates the endpoints, stores a pending run and queues it.
// Out of bounds endpoints fail with grid.ErrOutOfBounds and blocked ones with navigator.ErrBlockedEndpoint.
func (s *Simulation) Submit(ctx context.Context, start, goal grid.Coordinate) (uuid.UUID, error) {
	if _, err := s.navigator(start, goal); err != nil {
		return uuid.Nil, err
	}

	run := dmn.NewRun(uuid.New(), start, goal)
	if err := s.repo.Save(ctx, run); err != nil {
		logger.Error(s.logger, "Failed to store run %s: %s", run.ID, err)
		return uuid.Nil, err
	}

	score := float64(time.Now().UnixNano())
	if err := s.queue.Enqueue(ctx, s.queueKey, score, run.ID.String()); err != nil {
		logger.Error(s.logger, "Failed to enqueue run %s: %s", run.ID, err)
		return uuid.Nil, err
	}

	logger.Info(s.logger, "Run queued: ID=%s start=%s goal=%s", run.ID, start, goal)
	return run.ID, nil
}

// Process takes up to one batch of queued runs and simulates them, at most Workers at a time.
// It returns how many runs were completed. Failed simulations are stored as failed runs.
// Runs interrupted by ctx, or whose outcome could not be stored, go back on the queue;
// storage errors are joined into the returned error.
func (s *Simulation) Process(ctx context.Context) (int, error) {
	raw, err := s.queue.DequeTops(ctx, s.queueKey, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("dequeuing runs: %w", err)
	}

	var ids []uuid.UUID
	for _, r := range raw {
		if id, err := uuid.Parse(r); err == nil {
			ids = append(ids, id)
		} else {
			logger.Warn(s.logger, "Non-UUID value in queue: %s", r)
		}
	}

	var (
		mu        sync.Mutex
		completed int
		errs      []error
	)
	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, id := range ids {
		g.Go(func() error {
			done, err := s.process(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if done {
				completed++
			}
			if err != nil {
				errs = append(errs, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return completed, errors.Join(errs...)
}

// process runs one queued job and reports whether its outcome was stored.
func (s *Simulation) process(ctx context.Context, id uuid.UUID) (bool, error) {
	if ctx.Err() != nil {
		return false, s.requeue(ctx, id, time.Now())
	}

	run, err := s.repo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, dmn.ErrRunNotFound) {
			logger.Warn(s.logger, "Queued run %s has no record", id)
			return false, nil
		}
		return false, errors.Join(err, s.requeue(ctx, id, time.Now()))
	}

	result, simErr := s.simulate(ctx, run)
	if simErr != nil && ctx.Err() != nil && errors.Is(simErr, ctx.Err()) {
		logger.Warn(s.logger, "Run %s interrupted, returning it to the queue", id)
		return false, s.requeue(ctx, id, run.CreatedAt)
	}

	run.Complete(result, simErr)
	run.Stats.Probability = s.probability

	if simErr != nil {
		logger.Warn(s.logger, "Run %s failed: %s", id, simErr)
	} else {
		logger.Info(s.logger, "Run %s reached the goal: %s", id, run.Stats)
	}

	if err := s.repo.Save(context.WithoutCancel(ctx), run); err != nil {
		logger.Error(s.logger, "Failed to store run %s: %s", id, err)
		return false, errors.Join(fmt.Errorf("storing run %s: %w", id, err), s.requeue(ctx, id, run.CreatedAt))
	}
	return true, nil
}

// requeue puts id back on the queue, scored by at so it keeps its place in line.
// It does not give up when ctx is already cancelled.
func (s *Simulation) requeue(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := s.queue.Enqueue(context.WithoutCancel(ctx), s.queueKey, float64(at.UnixNano()), id.String())
	if err != nil {
		logger.Error(s.logger, "Failed to requeue run %s: %s", id, err)
		return fmt.Errorf("requeuing run %s: %w", id, err)
	}
	return nil
}

func (s *Simulation) simulate(ctx context.Context, run *dmn.Run) (*navigator.Run, error) {
	nav, err := s.navigator(run.Start.Coordinate(), run.Goal.Coordinate())
	if err != nil {
		return nil, err
	}
	return nav.Simulate(ctx)
}

func (s *Simulation) navigator(start, goal grid.Coordinate) (*navigator.Navigator, error) {
	return navigator.New(navigator.Config{
		Grid:     s.grid,
		Oracle:   s.oracle,
		Start:    start,
		Goal:     goal,
		Sensing:  s.sensing,
		MaxSteps: s.maxSteps,
	})
}

// Run polls the queue every interval until ctx is done.
func (s *Simulation) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.Process(ctx)
			if err != nil {
				logger.Error(s.logger, "Processing batch: %s", err)
				continue
			}
			if n > 0 {
				logger.Info(s.logger, "Processed %d runs, %d still queued", n, s.queue.Count(ctx, s.queueKey))
			}
		}
	}
}

// Result returns the stored run with the given ID.
func (s *Simulation) Result(ctx context.Context, id uuid.UUID) (*dmn.Run, error) {
	return s.repo.ByID(ctx, id)
}

// Grid returns the composition and rendering of the shared grid.
func (s *Simulation) Grid() (grid.Stats, string) {
	return s.grid.Stats(), s.grid.String()
}
