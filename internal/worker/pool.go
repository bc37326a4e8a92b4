package worker

import (
	"sync"

	"voxelforge/internal/protocol"
)

// Pool fans requests out over several independent workers so multiple
// chunk requests can be in flight at once. Each worker keeps its own
// unshared task registry; the pool only remembers which worker owns which
// requestId so cancels reach the right one.
type Pool struct {
	workers []*Worker
	out     chan protocol.Response
	wg      sync.WaitGroup

	mu    sync.Mutex
	owner map[string]*Worker
	next  int
}

// NewPool starts n workers and merges their responses into one stream.
// Only the first worker's ready signal is forwarded; the pool is ready
// when any worker is.
func NewPool(n int, opts Options) *Pool {
	if n <= 0 {
		n = 1
	}
	qs := opts.QueueSize
	if qs <= 0 {
		qs = 64
	}
	p := &Pool{
		workers: make([]*Worker, n),
		out:     make(chan protocol.Response, n*(qs+1)),
		owner:   make(map[string]*Worker),
	}
	for i := range p.workers {
		w := New(opts)
		w.Start()
		p.workers[i] = w

		first := i == 0
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for resp := range w.Out() {
				if resp.MessageType() == protocol.TypeReady && !first {
					continue
				}
				if id := resp.CorrelationID(); id != "" {
					p.mu.Lock()
					delete(p.owner, id)
					p.mu.Unlock()
				}
				p.out <- resp
			}
		}()
	}
	return p
}

// Submit routes a request to a worker. Cancels follow the original
// request's worker; everything else round-robins.
func (p *Pool) Submit(req protocol.Request) bool {
	if c, ok := req.(*protocol.CancelMsg); ok {
		p.mu.Lock()
		w := p.owner[c.ID]
		delete(p.owner, c.ID)
		p.mu.Unlock()
		if w != nil {
			return w.Submit(req)
		}
		return true
	}

	p.mu.Lock()
	w := p.workers[p.next%len(p.workers)]
	p.next++
	p.owner[req.RequestID()] = w
	p.mu.Unlock()

	if !w.Submit(req) {
		p.mu.Lock()
		delete(p.owner, req.RequestID())
		p.mu.Unlock()
		return false
	}
	return true
}

// Out is the merged response stream. It is closed after Shutdown.
func (p *Pool) Out() <-chan protocol.Response {
	return p.out
}

// Shutdown stops all workers and closes the merged stream.
func (p *Pool) Shutdown() {
	for _, w := range p.workers {
		w.Close()
	}
	p.wg.Wait()
	close(p.out)
}
