// Package intake decodes dropped files concurrently and hands the results to
// the stack in the order the files were dropped.
package intake

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	imgsrc "image-stacker/internal/image"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Source is one file waiting to be decoded.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSource returns a Source reading the file at path.
func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// DeliverFunc receives decoded images, one at a time, in drop order.
type DeliverFunc func(*imgsrc.Source)

// result is a finished decode waiting for its turn.
type result struct {
	src   *imgsrc.Source
	err   error
	batch *Batch
}

// Queue assigns every submitted file a sequence number and releases decoded
// images strictly in sequence order, whatever order the decodes finish in.
// Failed or cancelled decodes release their slot without a delivery.
type Queue struct {
	log     *zap.Logger
	deliver DeliverFunc

	mu      sync.Mutex
	next    uint64 // sequence number for the next submitted file
	release uint64 // sequence number waiting to be delivered
	pending map[uint64]result

	wg sync.WaitGroup
}

// New creates a queue that calls deliver for each decoded image. deliver is
// called with the queue locked and must not submit to the same queue.
func New(log *zap.Logger, deliver DeliverFunc) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{
		log:     log.Named("intake"),
		deliver: deliver,
		pending: make(map[uint64]result),
	}
}

// Batch tracks the files of one Submit call.
type Batch struct {
	wg  sync.WaitGroup
	mu  sync.Mutex
	err error
}

// Wait blocks until every file of the batch has been delivered or dropped
// and returns the combined decode errors.
func (b *Batch) Wait() error {
	b.wg.Wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Batch) fail(err error) {
	b.mu.Lock()
	b.err = multierr.Append(b.err, err)
	b.mu.Unlock()
}

// Submit starts decoding sources, one goroutine per file. Sequence numbers
// are assigned before Submit returns, so a later Submit never overtakes an
// earlier one.
func (q *Queue) Submit(ctx context.Context, sources []Source) *Batch {
	b := &Batch{}

	q.mu.Lock()
	first := q.next
	q.next += uint64(len(sources))
	q.mu.Unlock()

	b.wg.Add(len(sources))
	q.wg.Add(len(sources))
	for i, src := range sources {
		seq := first + uint64(i)
		go func() {
			img, err := decode(ctx, src)
			if err != nil {
				q.log.Warn("Skipping file", zap.String("name", src.Name), zap.Uint64("seq", seq), zap.Error(err))
				b.fail(err)
			} else {
				q.log.Debug("Decoded", zap.String("name", src.Name), zap.Uint64("seq", seq),
					zap.String("format", img.Format), zap.Int("width", img.Width()), zap.Int("height", img.Height()))
			}
			q.complete(seq, result{src: img, err: err, batch: b})
		}()
	}
	return b
}

// Wait blocks until every submitted file has been delivered or dropped.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// complete stores r and delivers every result that is now at the head of
// the sequence.
func (q *Queue) complete(seq uint64, r result) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending[seq] = r
	for {
		head, ok := q.pending[q.release]
		if !ok {
			return
		}
		delete(q.pending, q.release)
		q.release++
		if head.err == nil && q.deliver != nil {
			q.deliver(head.src)
		}
		head.batch.wg.Done()
		q.wg.Done()
	}
}

// waiting returns the number of finished decodes held back for ordering.
func (q *Queue) waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func decode(ctx context.Context, src Source) (*imgsrc.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}
	if src.Open == nil {
		return nil, fmt.Errorf("%s: no reader", src.Name)
	}
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", src.Name, err)
	}
	defer rc.Close()

	img, err := imgsrc.Decode(src.Name, rc)
	if err != nil {
		return nil, err
	}
	// A cancellation that arrived during decoding still drops the file.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}
	return img, nil
}

// DecodeAll decodes sources concurrently and returns the images that decoded
// successfully, in input order, together with the combined errors.
func DecodeAll(ctx context.Context, log *zap.Logger, sources []Source) ([]*imgsrc.Source, error) {
	var out []*imgsrc.Source
	q := New(log, func(s *imgsrc.Source) { out = append(out, s) })
	err := q.Submit(ctx, sources).Wait()
	q.Wait()
	return out, err
}
