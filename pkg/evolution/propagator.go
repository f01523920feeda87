// Package evolution assigns persistent identities to communities across a
// chronological sequence of snapshots.
//
// Two namespaces are maintained. A plain id is inherited by any community
// matched to a predecessor. A stable id is inherited only when the matched
// pair is closer than the stability threshold; otherwise a new one is
// minted even though the plain id carries on.
package evolution

import (
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-evolution/pkg/logging"
	"github.com/dd0wney/cluso-evolution/pkg/matching"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// ErrFinished is returned by Step after Result has been taken
var ErrFinished = errors.New("propagator already finished")

// ErrMatchingCount is returned by Propagate when there is not exactly one
// matching per consecutive snapshot pair
var ErrMatchingCount = errors.New("matching count does not fit snapshot count")

// DisjointDistance is the Jaccard distance of two communities with no
// common member. The assignment may still pair them when one side has
// leftover communities; such pairs do not pass identities on.
const DisjointDistance = 1.0

// Propagator folds snapshots in date order. It is strictly sequential:
// each step reads the identities written by the previous one.
type Propagator struct {
	cfg    Config
	logger logging.Logger

	prevDate   time.Time
	started    bool
	finished   bool
	prevPlain  map[int]int // local index at t-1 -> plain id
	prevStable map[int]int // local index at t-1 -> stable id
	nextPlain  int
	nextStable int

	result *Result
}

// NewPropagator validates cfg and returns a propagator whose counters
// start at zero.
func NewPropagator(cfg Config, logger logging.Logger) (*Propagator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Propagator{
		cfg:    cfg,
		logger: logger.With(logging.Component("propagator")),
		result: &Result{
			Plain:  make(map[Key]int),
			Stable: make(map[Key]int),
			Sizes:  make(map[int]map[time.Time]int),
		},
	}, nil
}

// Step assigns identities to every community of snap. The first call takes
// no matching; every later call needs the matching from the previous
// snapshot to snap, otherwise a *snapshot.SequenceGapError is returned.
func (p *Propagator) Step(snap *snapshot.Snapshot, m *matching.Matching) error {
	if p.finished {
		return ErrFinished
	}

	if !p.started {
		p.first(snap)
		return nil
	}

	if m == nil || !m.Connects(p.prevDate, snap.Date()) {
		return &snapshot.SequenceGapError{Prev: p.prevDate, Next: snap.Date(), Period: snapshot.PeriodNone}
	}

	if len(p.prevPlain) == 0 {
		p.logger.Warn("previous snapshot has no communities, all communities are new",
			logging.Date(p.prevDate), logging.Count(len(snap.Communities())))
	}

	plain := make(map[int]int, len(snap.Communities()))
	stable := make(map[int]int, len(snap.Communities()))

	for _, c := range snap.Communities() {
		idx := c.Index()
		pair, matched := m.Predecessor(idx)
		// An assigned pair sharing no member is not a continuation
		if matched && pair.Cost >= DisjointDistance {
			matched = false
			p.result.DisjointPairs++
		}
		if !matched {
			plain[idx] = p.mintPlain()
			stable[idx] = p.mintStable()
			p.logger.Debug("new community", logging.Date(snap.Date()), logging.CommunityIndex(idx),
				logging.PlainID(plain[idx]), logging.StableID(stable[idx]))
			p.record(snap, c, plain[idx], stable[idx])
			continue
		}

		plain[idx] = p.prevPlain[pair.Row]
		if pair.Cost < p.cfg.StabilityThreshold {
			stable[idx] = p.prevStable[pair.Row]
		} else {
			stable[idx] = p.mintStable()
			p.result.StableBreaks++
		}

		p.logger.Debug("matched community", logging.Date(snap.Date()), logging.CommunityIndex(idx),
			logging.Int("predecessor", pair.Row), logging.Distance(pair.Cost),
			logging.PlainID(plain[idx]), logging.StableID(stable[idx]))
		p.record(snap, c, plain[idx], stable[idx])
	}

	p.result.Matchings = append(p.result.Matchings, m)
	p.advance(snap, plain, stable)
	return nil
}

// first mints fresh identities for every community of the earliest snapshot
func (p *Propagator) first(snap *snapshot.Snapshot) {
	plain := make(map[int]int, len(snap.Communities()))
	stable := make(map[int]int, len(snap.Communities()))

	for _, c := range snap.Communities() {
		plain[c.Index()] = p.mintPlain()
		stable[c.Index()] = p.mintStable()
		p.record(snap, c, plain[c.Index()], stable[c.Index()])
	}

	p.started = true
	p.advance(snap, plain, stable)
}

func (p *Propagator) advance(snap *snapshot.Snapshot, plain, stable map[int]int) {
	p.prevDate = snap.Date()
	p.prevPlain = plain
	p.prevStable = stable
	p.result.Dates = append(p.result.Dates, snap.Date())

	p.logger.Info("processed clusters", logging.Date(snap.Date()),
		logging.Count(len(snap.Communities())),
		logging.Int("plain_ids", p.nextPlain), logging.Int("stable_ids", p.nextStable))
}

func (p *Propagator) record(snap *snapshot.Snapshot, c snapshot.Community, plainID, stableID int) {
	key := Key{Date: snap.Date(), Index: c.Index()}
	p.result.Plain[key] = plainID
	p.result.Stable[key] = stableID

	sizes, ok := p.result.Sizes[plainID]
	if !ok {
		sizes = make(map[time.Time]int)
		p.result.Sizes[plainID] = sizes
	}
	sizes[snap.Date()] = c.Size()
}

func (p *Propagator) mintPlain() int {
	id := p.nextPlain
	p.nextPlain++
	return id
}

func (p *Propagator) mintStable() int {
	id := p.nextStable
	p.nextStable++
	return id
}

// Result finalises the run. Further Step calls fail with ErrFinished.
func (p *Propagator) Result() *Result {
	p.finished = true
	p.result.PlainCount = p.nextPlain
	p.result.StableCount = p.nextStable
	return p.result
}

// Propagate folds every snapshot of store in order. matchings[i] must
// connect the i-th snapshot to the next one.
func Propagate(store *snapshot.Store, matchings []*matching.Matching, cfg Config, logger logging.Logger) (*Result, error) {
	if want := max(store.Len()-1, 0); len(matchings) != want {
		return nil, fmt.Errorf("%w: %d matchings for %d snapshots", ErrMatchingCount, len(matchings), store.Len())
	}

	p, err := NewPropagator(cfg, logger)
	if err != nil {
		return nil, err
	}

	for i, snap := range store.Snapshots() {
		var m *matching.Matching
		if i > 0 {
			m = matchings[i-1]
		}
		if err := p.Step(snap, m); err != nil {
			return nil, err
		}
	}

	return p.Result(), nil
}
