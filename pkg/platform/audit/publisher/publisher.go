package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "ebirth/pkg/platform/audit"
)

// Publisher stamps and forwards audit events to an Appender. Synchronous by
// default; WithAsyncBuffer moves appends onto a background goroutine so the
// request path never waits on the sink.
type Publisher struct {
	sink audit.Appender

	inbox  chan audit.Event
	wg     sync.WaitGroup
	closed chan struct{}
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous publishing with the given inbox size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

func NewPublisher(sink audit.Appender, opts ...Option) *Publisher {
	p := &Publisher{
		sink:   sink,
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event, filling ID and Timestamp when the caller left them
// zero. In async mode a full inbox falls back to a synchronous append rather
// than dropping the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if p.inbox == nil {
		return p.sink.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		return p.sink.Append(ctx, event)
	}
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.inbox:
			// Sink failures are the sink's concern; the drain loop must
			// keep consuming so Close can finish.
			_ = p.sink.Append(context.Background(), event)
		case <-p.closed:
			for {
				select {
				case event := <-p.inbox:
					_ = p.sink.Append(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

// Close drains any buffered events and stops the background goroutine.
func (p *Publisher) Close() {
	p.once.Do(func() {
		close(p.closed)
		if p.inbox != nil {
			p.wg.Wait()
		}
	})
}
