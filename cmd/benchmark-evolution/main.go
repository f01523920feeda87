package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/dd0wney/cluso-evolution/pkg/algorithms"
	"github.com/dd0wney/cluso-evolution/pkg/config"
	"github.com/dd0wney/cluso-evolution/pkg/edgelist"
	"github.com/dd0wney/cluso-evolution/pkg/pipeline"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

func main() {
	nodes := flag.Int("nodes", 2000, "Number of vertices")
	groups := flag.Int("groups", 20, "Number of planted communities")
	degree := flag.Int("degree", 8, "Intra-community edges per vertex")
	months := flag.Int("months", 12, "Number of monthly snapshots")
	churn := flag.Float64("churn", 0.05, "Fraction of vertices that change community each month")
	workers := flag.Int("workers", 4, "Concurrent workers")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	fmt.Printf("🔥 Community Evolution Benchmark\n")
	fmt.Printf("================================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Vertices: %d\n", *nodes)
	fmt.Printf("  Planted communities: %d\n", *groups)
	fmt.Printf("  Months: %d\n", *months)
	fmt.Printf("  Churn: %.2f\n\n", *churn)

	rng := rand.New(rand.NewSource(*seed))

	fmt.Printf("📝 Generating snapshots...\n")
	start := time.Now()
	graphs := generate(rng, *nodes, *groups, *degree, *months, *churn)
	fmt.Printf("✅ Generated %d snapshots in %v\n", len(graphs), time.Since(start))

	// Benchmark 1: community detection per algorithm
	for i, name := range []string{algorithms.AlgorithmComponents, algorithms.AlgorithmLabelPropagation, algorithms.AlgorithmLouvain} {
		fmt.Printf("\n📊 Benchmark %d: %s\n", i+1, name)

		p, err := algorithms.NewPartitioner(name, algorithms.DefaultMaxIterations)
		if err != nil {
			log.Fatalf("Failed to create partitioner: %v", err)
		}

		start = time.Now()
		communities := 0
		modularity := 0.0
		for _, g := range graphs {
			part, err := p.Partition(g)
			if err != nil {
				log.Fatalf("%s failed: %v", name, err)
			}
			communities += len(part)
			modularity += algorithms.Modularity(g, part)
		}

		fmt.Printf("✅ %s completed in %v\n", name, time.Since(start))
		fmt.Printf("  Mean communities per snapshot: %.1f\n", float64(communities)/float64(len(graphs)))
		fmt.Printf("  Mean modularity: %.4f\n", modularity/float64(len(graphs)))
	}

	// Benchmark 4: full pipeline
	fmt.Printf("\n📊 Benchmark 4: Full pipeline (louvain)\n")
	cfg := config.Default()
	cfg.Workers = *workers

	start = time.Now()
	out, err := pipeline.Run(context.Background(), cfg, &edgelist.Set{Graphs: graphs}, nil, nil, nil)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	fmt.Printf("✅ Pipeline completed in %v\n", time.Since(start))
	fmt.Printf("  Plain identities: %d\n", out.Result.PlainCount)
	fmt.Printf("  Stable identities: %d\n", out.Result.StableCount)
	fmt.Printf("  Stable breaks: %d\n", out.Result.StableBreaks)
	fmt.Printf("  Disjoint pairs: %d\n", out.Result.DisjointPairs)

	fmt.Printf("\n✅ Benchmark complete!\n")
}

// generate builds monthly planted-partition graphs. Each month a churn
// fraction of vertices moves to a random community before edges are drawn.
func generate(rng *rand.Rand, nodes, groups, degree, months int, churn float64) []*snapshot.Graph {
	if groups < 1 {
		groups = 1
	}

	group := make([]int, nodes)
	for v := range group {
		group[v] = v % groups
	}

	base := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	graphs := make([]*snapshot.Graph, 0, months)

	for m := 0; m < months; m++ {
		if m > 0 {
			for v := range group {
				if rng.Float64() < churn {
					group[v] = rng.Intn(groups)
				}
			}
		}

		members := make([][]int, groups)
		for v, g := range group {
			members[g] = append(members[g], v)
		}

		var edges []snapshot.Edge
		for _, ms := range members {
			if len(ms) < 2 {
				continue
			}
			for _, v := range ms {
				for k := 0; k < degree/2; k++ {
					w := ms[rng.Intn(len(ms))]
					if w == v {
						continue
					}
					edges = append(edges, snapshot.Edge{From: vertexName(v), To: vertexName(w)})
				}
			}
		}

		// a sprinkle of inter-community noise
		for k := 0; k < nodes/20; k++ {
			edges = append(edges, snapshot.Edge{From: vertexName(rng.Intn(nodes)), To: vertexName(rng.Intn(nodes))})
		}

		graphs = append(graphs, snapshot.NewGraph(base.AddDate(0, m, 0), edges))
	}

	return graphs
}

func vertexName(v int) string {
	return fmt.Sprintf("v%05d", v)
}
