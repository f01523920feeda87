package evolution

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-evolution/pkg/matching"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// Key identifies a community by snapshot date and local index
type Key struct {
	Date  time.Time
	Index int
}

// String renders the key as "date_index"
func (k Key) String() string {
	return fmt.Sprintf("%s_%d", k.Date.Format(snapshot.DateLayout), k.Index)
}

// Result is the final identity assignment of a run
type Result struct {
	// Dates lists every processed snapshot date in order
	Dates []time.Time
	// Plain and Stable map each community to its identity in the
	// respective namespace
	Plain  map[Key]int
	Stable map[Key]int
	// Sizes maps plain id -> date -> member count
	Sizes map[int]map[time.Time]int
	// Matchings holds one matching per consecutive pair, in order
	Matchings []*matching.Matching

	// PlainCount and StableCount are the number of ids minted per namespace
	PlainCount  int
	StableCount int
	// StableBreaks counts matched communities that kept their plain id but
	// minted a new stable id
	StableBreaks int
	// DisjointPairs counts assigned pairs ignored because they share no member
	DisjointPairs int
}

// PlainID returns the plain identity of a community
func (r *Result) PlainID(date time.Time, index int) (int, bool) {
	id, ok := r.Plain[Key{Date: date, Index: index}]
	return id, ok
}

// StableID returns the stable identity of a community
func (r *Result) StableID(date time.Time, index int) (int, bool) {
	id, ok := r.Stable[Key{Date: date, Index: index}]
	return id, ok
}

// Size returns the member count of plain id at date, or 0
func (r *Result) Size(plainID int, date time.Time) int {
	return r.Sizes[plainID][date]
}
