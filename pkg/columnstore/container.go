package columnstore

import (
	"context"
	"encoding/binary"
	"io"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/grafana/columnio/pkg/columnio"
)

var (
	metricBytesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "columnio",
		Name:      "columnstore_bytes_written_total",
		Help:      "Total number of container bytes written.",
	})
	metricBytesRead = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "columnio",
		Name:      "columnstore_bytes_read_total",
		Help:      "Total number of container bytes read.",
	})
	metricFlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "columnio",
		Name:      "columnstore_flush_duration_seconds",
		Help:      "Records the amount of time to encode and write a container.",
		Buckets:   prometheus.ExponentialBuckets(.001, 4, 8),
	})
)

// ErrSchemaMismatch is returned by Open when the container was written for
// another schema.
var ErrSchemaMismatch = errors.New("container schema does not match")

var magic = [4]byte{'C', 'L', 'I', 'O'}

const formatVersion = 1

/*
  | magic   | version | encoding | schema fingerprint | leaf count | pages...
  | 4 bytes | 8 bits  | 8 bits   | 64 bits            | 32 bits    |
*/
type header struct {
	Magic       [4]byte
	Version     uint8
	Encoding    Encoding
	Fingerprint uint64
	Leaves      uint32
}

// Flush writes all columns to w as a container: a header followed by one
// compressed page per leaf. Pages are encoded concurrently. It returns the
// number of bytes written.
func (s *Store) Flush(ctx context.Context, w io.Writer) (int64, error) {
	if err := s.cfg.Validate(); err != nil {
		return 0, err
	}
	start := time.Now()

	pages := make([]page, len(s.columns))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, c := range s.columns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var raw []byte
			for _, t := range c.triples {
				raw = appendTriple(raw, t)
			}
			data, err := compress(s.cfg.Encoding, raw)
			if err != nil {
				return errors.Wrapf(err, "compressing column %s", c.path)
			}
			pages[i] = page{triples: uint32(len(c.triples)), data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	h := header{
		Magic:       magic,
		Version:     formatVersion,
		Encoding:    s.cfg.Encoding,
		Fingerprint: s.tree.Fingerprint(),
		Leaves:      uint32(len(s.columns)),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return 0, errors.Wrap(err, "writing container header")
	}
	total := int64(binary.Size(h))

	for i, p := range pages {
		n, err := marshalPageToWriter(p, w)
		total += int64(n)
		if err != nil {
			return total, errors.Wrapf(err, "writing column %s", s.columns[i].path)
		}
	}

	metricBytesWritten.Add(float64(total))
	metricFlushDuration.Observe(time.Since(start).Seconds())
	level.Info(s.logger).Log("msg", "flushed column store", "columns", len(pages), "records", s.Records(), "bytes", total, "encoding", s.cfg.Encoding)
	return total, nil
}

// Open reads a container written by Flush for the same schema. Pages are
// decoded with up to cfg.Concurrency goroutines; the encoding is taken from
// the container.
func Open(ctx context.Context, tree *columnio.Tree, r io.Reader, cfg Config, logger log.Logger) (*Store, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "reading container header")
	}
	switch {
	case h.Magic != magic:
		return nil, errors.Errorf("not a column container, magic %q", h.Magic[:])
	case h.Version != formatVersion:
		return nil, errors.Errorf("unsupported container version %d", h.Version)
	case h.Fingerprint != tree.Fingerprint():
		return nil, errors.Wrapf(ErrSchemaMismatch, "container %016x, schema %s %016x", h.Fingerprint, tree.Name(), tree.Fingerprint())
	case int(h.Leaves) != tree.NumLeaves():
		return nil, errors.Wrapf(ErrSchemaMismatch, "container has %d columns, schema %s has %d", h.Leaves, tree.Name(), tree.NumLeaves())
	}

	cfg.Encoding = h.Encoding
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := NewStore(tree, cfg, logger)

	pages := make([]page, h.Leaves)
	total := int64(binary.Size(h))
	for i := range pages {
		p, n, err := unmarshalPageFromReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "reading column %s", s.columns[i].path)
		}
		pages[i] = p
		total += int64(n)
	}
	metricBytesRead.Add(float64(total))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, p := range pages {
		c := s.columns[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := decodePage(c, p, cfg.Encoding); err != nil {
				return errors.Wrapf(err, "decoding column %s", c.path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	level.Debug(s.logger).Log("msg", "opened column store", "columns", len(pages), "records", s.Records(), "bytes", total, "encoding", cfg.Encoding)
	return s, nil
}

func decodePage(c *Column, p page, enc Encoding) error {
	data, err := decompress(enc, p.data)
	if err != nil {
		return err
	}

	dec := pageDecoder{b: data}
	c.triples = make([]columnio.Triple, 0, min(int(p.triples), len(data)))
	for i := uint32(0); i < p.triples; i++ {
		t, err := dec.triple()
		if err != nil {
			return err
		}
		if err := c.WriteTriple(t); err != nil {
			return err
		}
	}
	if dec.off != len(data) {
		return errors.Errorf("%d trailing bytes after %d triples", len(data)-dec.off, p.triples)
	}
	return nil
}

// UncompressedSize returns the container size Flush would produce with the
// current columns and no compression.
func (s *Store) UncompressedSize() int64 {
	total := int64(binary.Size(header{}))
	var raw []byte
	for _, c := range s.columns {
		raw = raw[:0]
		for _, t := range c.triples {
			raw = appendTriple(raw, t)
		}
		total += uint32Size + uint16Size + pageHeaderLength + int64(len(raw))
	}
	return total
}
