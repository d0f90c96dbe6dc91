package columnio

import (
	"context"
	"io"
	"sync"

	"go.uber.org/atomic"
)

var prefetchBufferPool = sync.Pool{
	New: func() interface{} {
		return &prefetchBuffer{}
	},
}

type prefetchBuffer struct {
	triples []Triple
}

func prefetchBufferPoolGet(capacity int) *prefetchBuffer {
	b := prefetchBufferPool.Get().(*prefetchBuffer)
	if cap(b.triples) < capacity {
		b.triples = make([]Triple, 0, capacity)
	}
	b.triples = b.triples[:0]
	return b
}

func prefetchBufferPoolPut(b *prefetchBuffer) {
	b.triples = b.triples[:cap(b.triples)]
	for i := range b.triples {
		b.triples[i] = Triple{}
	}
	prefetchBufferPool.Put(b)
}

// PrefetchReader reads triples from an underlying reader on a background
// goroutine, in batches, so that decoding a column overlaps with assembling
// records from it. Close must be called when the reader is abandoned before
// reaching io.EOF.
type PrefetchReader struct {
	quit      chan struct{}
	ch        chan *prefetchBuffer
	closeOnce sync.Once

	curr  *prefetchBuffer
	currN int
	err   *atomic.Error

	read *atomic.Int64
}

var _ ColumnReader = (*PrefetchReader)(nil)

// NewPrefetchReader starts reading r ahead in batches of bufferSize triples.
func NewPrefetchReader(ctx context.Context, r ColumnReader, bufferSize int) *PrefetchReader {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	p := &PrefetchReader{
		quit: make(chan struct{}),
		ch:   make(chan *prefetchBuffer, 1),
		err:  atomic.NewError(nil),
		read: atomic.NewInt64(0),
	}

	go p.iterate(ctx, r, bufferSize)
	return p
}

func (p *PrefetchReader) iterate(ctx context.Context, r ColumnReader, bufferSize int) {
	defer close(p.ch)

	for {
		buf := prefetchBufferPoolGet(bufferSize)

		var err error
		for len(buf.triples) < bufferSize {
			var t Triple
			t, err = r.ReadTriple()
			if err != nil {
				break
			}
			buf.triples = append(buf.triples, t)
		}
		p.read.Add(int64(len(buf.triples)))

		if len(buf.triples) > 0 {
			select {
			case p.ch <- buf:
			case <-p.quit:
				prefetchBufferPoolPut(buf)
				return
			case <-ctx.Done():
				prefetchBufferPoolPut(buf)
				p.err.Store(ctx.Err())
				return
			}
		} else {
			prefetchBufferPoolPut(buf)
		}

		// Error checks MUST occur after handing over any read data
		// following io.Reader behavior.
		if err == io.EOF {
			return
		}
		if err != nil {
			p.err.Store(err)
			return
		}
	}
}

// ReadTriple returns the next prefetched triple.
func (p *PrefetchReader) ReadTriple() (Triple, error) {
	// Consume current buffer until exhausted
	// then read another one from the channel.
	if p.curr != nil {
		if p.currN++; p.currN < len(p.curr.triples) {
			return p.curr.triples[p.currN], nil
		}
		prefetchBufferPoolPut(p.curr)
		p.curr = nil
	}

	if b, ok := <-p.ch; ok {
		// guaranteed to have at least 1 element
		p.curr = b
		p.currN = 0
		return b.triples[0], nil
	}

	if err := p.err.Load(); err != nil {
		return Triple{}, err
	}
	return Triple{}, io.EOF
}

// Prefetched is the number of triples read from the underlying reader so far.
func (p *PrefetchReader) Prefetched() int64 {
	return p.read.Load()
}

// Close stops the background goroutine. It is safe to call more than once.
func (p *PrefetchReader) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
		// drain so the producer can observe quit and exit
		for b := range p.ch {
			prefetchBufferPoolPut(b)
		}
		if p.curr != nil {
			prefetchBufferPoolPut(p.curr)
			p.curr = nil
		}
	})
}
