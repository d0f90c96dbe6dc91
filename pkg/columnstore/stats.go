package columnstore

import (
	"github.com/axiomhq/hyperloglog"
	"github.com/willf/bloom"

	"github.com/grafana/columnio/pkg/columnio"
)

// Statistics summarize the triples of one leaf column.
type Statistics struct {
	Triples int64
	Nulls   int64
	Min     columnio.Value
	Max     columnio.Value

	// Records counts triples with repetition level 0.
	Records int64

	// for cardinality
	hll *hyperloglog.Sketch
	// for membership
	bloom *bloom.BloomFilter
	buf   []byte
}

const (
	bloomEstimatedValues = 10_000
	bloomFP              = 0.01
)

// Standard error with 2^12 registers is 1.04/sqrt(2^12) ~ 1.6%, at 4KB per
// column.
func newStatistics() *Statistics {
	hll, err := hyperloglog.NewSketch(12, true)
	if err != nil {
		panic(err) // never happens, error is only returned on a wrong precision.
	}
	return &Statistics{
		hll:   hll,
		bloom: bloom.NewWithEstimates(bloomEstimatedValues, bloomFP),
	}
}

func (s *Statistics) update(t columnio.Triple) {
	s.Triples++
	if t.RepetitionLevel == 0 {
		s.Records++
	}
	if t.Value.IsNull() {
		s.Nulls++
		return
	}

	if s.Min.IsNull() || columnio.CompareValues(t.Value, s.Min) < 0 {
		s.Min = t.Value.Clone()
	}
	if s.Max.IsNull() || columnio.CompareValues(t.Value, s.Max) > 0 {
		s.Max = t.Value.Clone()
	}

	s.buf = appendValue(s.buf[:0], t.Value)
	s.hll.Insert(s.buf)
	s.bloom.Add(s.buf)
}

// Values is the number of present values.
func (s *Statistics) Values() int64 {
	return s.Triples - s.Nulls
}

// Distinct estimates the number of distinct present values.
func (s *Statistics) Distinct() uint64 {
	return s.hll.Estimate()
}

// MayContain reports whether v may be one of the present values. False
// positives are possible, false negatives are not. A null value is never
// contained.
func (s *Statistics) MayContain(v columnio.Value) bool {
	if v.IsNull() {
		return false
	}
	return s.bloom.Test(appendValue(nil, v))
}
