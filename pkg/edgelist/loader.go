package edgelist

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dd0wney/cluso-evolution/pkg/logging"
	"github.com/dd0wney/cluso-evolution/pkg/parallel"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// Set is the outcome of loading a batch of edge lists
type Set struct {
	// Graphs holds every graph sorted by date, empty ones included
	Graphs []*snapshot.Graph
	// Empty lists the dates of graphs with no vertices
	Empty []time.Time
}

// Loader reads many edge lists concurrently
type Loader struct {
	Workers int
	Logger  logging.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(workers int, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{Workers: workers, Logger: logger.With(logging.Component("edgelist"))}
}

// LoadAll reads every path and sorts the graphs by date. Empty graphs are
// kept so the date sequence has no holes. Two files with the same date are
// an error.
func (l *Loader) LoadAll(ctx context.Context, paths []string) (*Set, error) {
	graphs := make([]*snapshot.Graph, len(paths))

	err := parallel.ForEach(ctx, l.Workers, len(paths), func(_ context.Context, i int) error {
		l.Logger.Debug("loading edge list", logging.Path(paths[i]))
		g, err := Read(paths[i])
		if err != nil {
			return err
		}
		graphs[i] = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(graphs, func(i, j int) bool { return graphs[i].Date.Before(graphs[j].Date) })

	set := &Set{}
	for i, g := range graphs {
		if i > 0 && g.Date.Equal(graphs[i-1].Date) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, g.Date.Format(snapshot.DateLayout))
		}
		if g.Empty() {
			l.Logger.Info("empty graph", logging.Date(g.Date))
			set.Empty = append(set.Empty, g.Date)
		}
		set.Graphs = append(set.Graphs, g)
	}

	l.Logger.Info("loaded all graphs",
		logging.Count(len(set.Graphs)),
		logging.Int("empty", len(set.Empty)))

	return set, nil
}
