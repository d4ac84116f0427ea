package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/log"
	"golang.org/x/sync/errgroup"
)

var (
	errRunNotFound         = errors.New("run not found")
	errRunAlreadyMonitored = errors.New("run already monitored")
	errAlreadyRan          = errors.New("run already ran")
	errRunIsRunning        = errors.New("run is already running")
	errCannotClear         = errors.New("cannot clear run")
)

// SetupRunManager creates a run manager executing at most limit runs at once,
// a limit below one means unbounded
func SetupRunManager(limit int) *RunManager {
	return &RunManager{limit: limit}
}

// AddRun queues bars for a pair against bt and returns the run ID
func (r *RunManager) AddRun(bt *BackTest, pair, strategy string, bars []data.Bar) (uuid.UUID, error) {
	if r == nil {
		return uuid.Nil, fmt.Errorf("%w RunManager", common.ErrNilPointer)
	}
	if bt == nil {
		return uuid.Nil, fmt.Errorf("%w BackTest", common.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	for i := range r.runs {
		if strings.EqualFold(r.runs[i].MetaData.Pair, pair) && strings.EqualFold(r.runs[i].MetaData.Strategy, strategy) {
			return uuid.Nil, fmt.Errorf("%w %s %s", errRunAlreadyMonitored, pair, strategy)
		}
	}
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	r.runs = append(r.runs, &PairRun{
		MetaData: RunMetaData{
			ID:         id,
			Pair:       pair,
			Strategy:   strategy,
			DateLoaded: time.Now(),
		},
		bt:   bt,
		bars: bars,
	})
	return id, nil
}

func (p *PairRun) summary() *RunSummary {
	s := &RunSummary{
		MetaData: p.MetaData,
		Running:  p.running,
		HasRan:   p.hasRan,
		Result:   p.result,
	}
	if p.err != nil {
		s.Error = p.err.Error()
	}
	return s
}

// List details all runs
func (r *RunManager) List() ([]*RunSummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w RunManager", common.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	resp := make([]*RunSummary, len(r.runs))
	for i := range r.runs {
		resp[i] = r.runs[i].summary()
	}
	return resp, nil
}

// GetSummary returns details about a run
func (r *RunManager) GetSummary(id uuid.UUID) (*RunSummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w RunManager", common.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	for i := range r.runs {
		if r.runs[i].MetaData.ID == id {
			return r.runs[i].summary(), nil
		}
	}
	return nil, fmt.Errorf("%s %w", id, errRunNotFound)
}

// StartRun executes a single queued run synchronously
func (r *RunManager) StartRun(id uuid.UUID) (*Result, error) {
	if r == nil {
		return nil, fmt.Errorf("%w RunManager", common.ErrNilPointer)
	}
	r.m.Lock()
	var run *PairRun
	for i := range r.runs {
		if r.runs[i].MetaData.ID == id {
			run = r.runs[i]
			break
		}
	}
	if run == nil {
		r.m.Unlock()
		return nil, fmt.Errorf("%s %w", id, errRunNotFound)
	}
	if err := run.claim(); err != nil {
		r.m.Unlock()
		return nil, err
	}
	r.m.Unlock()
	return r.execute(run)
}

// claim marks the run as running, callers hold the manager lock
func (p *PairRun) claim() error {
	switch {
	case p.running:
		return fmt.Errorf("%w %v", errRunIsRunning, p.MetaData.ID)
	case p.hasRan:
		return fmt.Errorf("%w %v", errAlreadyRan, p.MetaData.ID)
	}
	p.running = true
	p.MetaData.DateStarted = time.Now()
	return nil
}

func (r *RunManager) execute(p *PairRun) (*Result, error) {
	res, err := p.bt.Run(p.bars)
	r.m.Lock()
	p.running = false
	p.hasRan = true
	p.MetaData.DateEnded = time.Now()
	p.result = res
	p.err = err
	r.m.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", p.MetaData.Pair, p.MetaData.Strategy, err)
	}
	return res, nil
}

// StartAllRuns executes every run that has not ran yet, in parallel up to the
// manager limit. The first failure stops runs that have not started.
func (r *RunManager) StartAllRuns(ctx context.Context) (map[uuid.UUID]*Result, error) {
	if r == nil {
		return nil, fmt.Errorf("%w RunManager", common.ErrNilPointer)
	}
	r.m.Lock()
	pending := make([]*PairRun, 0, len(r.runs))
	for i := range r.runs {
		if r.runs[i].hasRan || r.runs[i].running {
			continue
		}
		pending = append(pending, r.runs[i])
	}
	r.m.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	results := make([]*Result, len(pending))
	for i := range pending {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.m.Lock()
			err := pending[i].claim()
			r.m.Unlock()
			if err != nil {
				return err
			}
			log.Debugf(log.BackTester, "starting run %v %s %s", pending[i].MetaData.ID, pending[i].MetaData.Pair, pending[i].MetaData.Strategy)
			res, err := r.execute(pending[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	resp := make(map[uuid.UUID]*Result, len(pending))
	for i := range pending {
		resp[pending[i].MetaData.ID] = results[i]
	}
	return resp, nil
}

// ClearRun removes a run from memory
func (r *RunManager) ClearRun(id uuid.UUID) error {
	if r == nil {
		return fmt.Errorf("%w RunManager", common.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	for i := range r.runs {
		if r.runs[i].MetaData.ID != id {
			continue
		}
		if r.runs[i].running {
			return fmt.Errorf("%w %v, currently running", errCannotClear, id)
		}
		r.runs = append(r.runs[:i], r.runs[i+1:]...)
		return nil
	}
	return fmt.Errorf("%s %w", id, errRunNotFound)
}

// ClearAllRuns removes every run which is not currently running
func (r *RunManager) ClearAllRuns() (clearedRuns, remainingRuns []*RunSummary, err error) {
	if r == nil {
		return nil, nil, fmt.Errorf("%w RunManager", common.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	kept := r.runs[:0]
	for i := range r.runs {
		if r.runs[i].running {
			remainingRuns = append(remainingRuns, r.runs[i].summary())
			kept = append(kept, r.runs[i])
			continue
		}
		clearedRuns = append(clearedRuns, r.runs[i].summary())
	}
	r.runs = kept
	return clearedRuns, remainingRuns, nil
}
