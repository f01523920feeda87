package logging

import (
	"time"
)

// DateLayout is the layout used for every date rendered into a log field
const DateLayout = "2006-01-02"

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

func Date(t time.Time) Field {
	return String("date", t.Format(DateLayout))
}

// DatePair renders two consecutive snapshot dates as "from_to"
func DatePair(from, to time.Time) Field {
	return String("pair", from.Format(DateLayout)+"_"+to.Format(DateLayout))
}

func CommunityIndex(i int) Field {
	return Int("community", i)
}

func PlainID(id int) Field {
	return Int("plain_id", id)
}

func StableID(id int) Field {
	return Int("stable_id", id)
}

func Distance(d float64) Field {
	return Float64("distance", d)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
