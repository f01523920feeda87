// Package pipeline runs a full evolution batch: community detection on
// every snapshot graph, optimal matching of consecutive snapshots, identity
// propagation and timeline aggregation. A run either succeeds as a whole or
// returns an error; there is no partial output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-evolution/pkg/algorithms"
	"github.com/dd0wney/cluso-evolution/pkg/config"
	"github.com/dd0wney/cluso-evolution/pkg/edgelist"
	"github.com/dd0wney/cluso-evolution/pkg/evolution"
	"github.com/dd0wney/cluso-evolution/pkg/export"
	"github.com/dd0wney/cluso-evolution/pkg/logging"
	"github.com/dd0wney/cluso-evolution/pkg/matching"
	"github.com/dd0wney/cluso-evolution/pkg/metrics"
	"github.com/dd0wney/cluso-evolution/pkg/parallel"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
	"github.com/dd0wney/cluso-evolution/pkg/timeline"
)

// ErrNoSnapshots is returned when the input holds no graph at all
var ErrNoSnapshots = errors.New("no snapshot to process")

// Output is the complete outcome of a run
type Output struct {
	*export.Report
	Elapsed time.Duration
}

// Pipeline carries the collaborators of a run
type Pipeline struct {
	cfg         *config.Config
	partitioner algorithms.Partitioner
	logger      logging.Logger
	metrics     *metrics.Registry
}

// New validates cfg and wires a pipeline. A nil logger discards output and
// a nil registry gets a private one.
func New(cfg *config.Config, partitioner algorithms.Partitioner, logger logging.Logger, reg *metrics.Registry) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if partitioner == nil {
		p, err := algorithms.NewPartitioner(cfg.Algorithm, cfg.MaxIterations)
		if err != nil {
			return nil, err
		}
		partitioner = p
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	return &Pipeline{
		cfg:         cfg,
		partitioner: partitioner,
		logger:      logger.With(logging.Component("pipeline")),
		metrics:     reg,
	}, nil
}

// Run is a convenience for New followed by Pipeline.Run
func Run(ctx context.Context, cfg *config.Config, set *edgelist.Set, partitioner algorithms.Partitioner, logger logging.Logger, reg *metrics.Registry) (*Output, error) {
	p, err := New(cfg, partitioner, logger, reg)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, set)
}

// Run processes every graph in set
func (p *Pipeline) Run(ctx context.Context, set *edgelist.Set) (*Output, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With(logging.RunID(runID))

	p.metrics.MarkRunStart(start)
	p.metrics.RecordSnapshotCounts(len(set.Graphs), len(set.Empty))

	report, err := p.run(ctx, logger, runID, set)
	p.metrics.UpdateSystemMetrics()
	if err != nil {
		p.metrics.RecordRun("error")
		logger.Error("run failed", logging.Error(err))
		return nil, err
	}
	p.metrics.RecordRun("success")

	elapsed := time.Since(start)
	logger.Info("run complete",
		logging.Int("snapshots", report.Store.Len()),
		logging.Int("plain_ids", report.Result.PlainCount),
		logging.Int("stable_ids", report.Result.StableCount),
		logging.Latency(elapsed))

	return &Output{Report: report, Elapsed: elapsed}, nil
}

func (p *Pipeline) run(ctx context.Context, logger logging.Logger, runID string, set *edgelist.Set) (*export.Report, error) {
	if len(set.Graphs) == 0 {
		return nil, ErrNoSnapshots
	}

	var (
		snaps      []*snapshot.Snapshot
		centrality []export.CentralityRow
		store      *snapshot.Store
		matchings  []*matching.Matching
		result     *evolution.Result
	)

	err := p.phase(logger, metrics.PhasePartition, func() error {
		var err error
		snaps, centrality, err = p.partition(ctx, logger, set.Graphs)
		return err
	})
	if err != nil {
		return nil, err
	}

	store = snapshot.NewStore()
	for _, s := range snaps {
		if err := store.Add(s); err != nil {
			return nil, err
		}
	}
	if err := store.CheckContiguous(p.cfg.SnapshotPeriod()); err != nil {
		return nil, err
	}

	err = p.phase(logger, metrics.PhaseMatch, func() error {
		var err error
		matchings, err = p.match(ctx, logger, store)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.phase(logger, metrics.PhasePropagate, func() error {
		var err error
		result, err = evolution.Propagate(store, matchings, p.cfg.Evolution(), logger)
		if err != nil {
			return err
		}
		p.metrics.RecordIdentities(result.PlainCount, result.StableCount, result.StableBreaks, result.DisjointPairs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := &export.Report{
		RunID:      runID,
		Store:      store,
		Result:     result,
		Centrality: centrality,
	}
	err = p.phase(logger, metrics.PhaseAggregate, func() error {
		report.Index = snapshot.BuildVertexIndex(store)
		report.Timelines = timeline.NodeTimelines(store, result, report.Index)
		report.Sizes = timeline.SizeSeries(store, result)
		report.Stats = timeline.ComputeAllNodeStats(report.Timelines, p.cfg.StableWindow)
		report.Counts = timeline.CommunityCounts(store)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// partition runs community detection on every graph concurrently. Results
// keep input order. An empty graph becomes a snapshot with no communities.
func (p *Pipeline) partition(ctx context.Context, logger logging.Logger, graphs []*snapshot.Graph) ([]*snapshot.Snapshot, []export.CentralityRow, error) {
	snaps := make([]*snapshot.Snapshot, len(graphs))
	scores := make([][]export.CentralityRow, len(graphs))

	err := parallel.ForEach(ctx, p.cfg.Workers, len(graphs), func(_ context.Context, i int) error {
		g := graphs[i]

		var part [][]snapshot.VertexName
		if !g.Empty() {
			var err error
			part, err = p.partitioner.Partition(g)
			if err != nil {
				return fmt.Errorf("partition %s: %w", g.Date.Format(snapshot.DateLayout), err)
			}
		}
		snap, err := snapshot.NewSnapshot(g.Date, g.Vertices, part)
		if err != nil {
			return err
		}
		snaps[i] = snap

		sizes := make([]int, len(part))
		for c, members := range part {
			sizes[c] = len(members)
		}
		p.metrics.RecordSnapshot(len(g.Vertices), sizes)
		logger.Debug("snapshot partitioned",
			logging.Date(g.Date),
			logging.String("algorithm", p.partitioner.Name()),
			logging.Int("vertices", len(g.Vertices)),
			logging.Int("communities", len(part)))

		if snap.Degenerate() {
			logger.Warn("snapshot has no communities", logging.Date(g.Date))
		}

		if p.cfg.Centrality && !g.Empty() {
			scores[i] = centralityRows(g, logger)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var rows []export.CentralityRow
	for _, s := range scores {
		rows = append(rows, s...)
	}
	return snaps, rows, nil
}

// match solves the assignment for every consecutive pair in order
func (p *Pipeline) match(ctx context.Context, logger logging.Logger, store *snapshot.Store) ([]*matching.Matching, error) {
	pairs := store.Pairs()
	matchings := make([]*matching.Matching, 0, len(pairs))

	for _, pair := range pairs {
		m, _, err := matching.Match(ctx, pair.Prev, pair.Next, matching.Options{Workers: p.cfg.Workers})
		if err != nil {
			return nil, err
		}

		distances := make([]float64, len(m.Pairs))
		for i, mp := range m.Pairs {
			distances[i] = mp.Cost
		}
		p.metrics.RecordMatching(distances)
		logger.Debug("snapshots matched",
			logging.DatePair(m.From, m.To),
			logging.Int("pairs", len(m.Pairs)),
			logging.Float64("total_distance", matching.TotalCost(m.Pairs)))

		matchings = append(matchings, m)
	}

	return matchings, nil
}

func centralityRows(g *snapshot.Graph, logger logging.Logger) []export.CentralityRow {
	degree := algorithms.DegreeCentrality(g)
	closeness := algorithms.ClosenessCentrality(g)
	rank := algorithms.PageRank(g, algorithms.DefaultPageRankOptions())

	if top := rank.Scores.Top(1); len(top) > 0 {
		logger.Debug("centrality computed",
			logging.Date(g.Date),
			logging.String("top_vertex", top[0].Vertex),
			logging.Float64("top_pagerank", top[0].Score),
			logging.Bool("pagerank_converged", rank.Converged))
	}

	rows := make([]export.CentralityRow, 0, len(g.Vertices))
	for _, v := range g.Vertices {
		rows = append(rows, export.CentralityRow{
			Date:      g.Date,
			Vertex:    v,
			Degree:    degree[v],
			Closeness: closeness[v],
			PageRank:  rank.Rank(v),
		})
	}
	return rows
}

// phase times fn, logging and recording its duration under name
func (p *Pipeline) phase(logger logging.Logger, name string, fn func() error) error {
	timer := logging.StartTimer(logger, "phase "+name, logging.String("phase", name))
	if err := fn(); err != nil {
		p.metrics.RecordPhase(name, "error", timer.EndError(err))
		return err
	}
	p.metrics.RecordPhase(name, "success", timer.End())
	return nil
}

// Write exports a finished run to sink
func (p *Pipeline) Write(ctx context.Context, out *Output, sink export.Sink) error {
	return p.phase(p.logger, metrics.PhaseExport, func() error {
		return sink.Write(ctx, out.Report)
	})
}

// Metrics returns the registry the pipeline records into
func (p *Pipeline) Metrics() *metrics.Registry {
	return p.metrics
}
