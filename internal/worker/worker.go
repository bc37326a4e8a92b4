package worker

import (
	"fmt"
	"log/slog"
	"sync"

	"voxelforge/internal/meshing"
	"voxelforge/internal/profiling"
	"voxelforge/internal/protocol"
	"voxelforge/internal/world"
)

// Options configures one worker instance.
type Options struct {
	Logger    *slog.Logger
	Worldgen  world.GenConfig
	QueueSize int

	// Optional regeneration-cache hooks consulted by the generate phase.
	// Lookup must return a fresh buffer the worker may hand off.
	Lookup func(seed int32, chunkX, chunkZ int) (world.Grid, bool)
	Store  func(seed int32, chunkX, chunkZ int, blocks world.Grid)
}

// task is the bookkeeping record for one in-flight request.
type task struct {
	cancelled bool
}

// Worker runs generation and meshing requests on a single goroutine and
// reports results on its output channel. The calling side and the worker
// share no mutable state beyond the task registry, which is only ever
// touched under the mutex; result buffers are handed off, never retained.
type Worker struct {
	opts Options

	requests chan protocol.Request
	out      chan protocol.Response
	done     chan struct{}
	wg       sync.WaitGroup

	mu    sync.Mutex
	tasks map[string]*task
}

// New creates a worker. Call Start to begin processing.
func New(opts Options) *Worker {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Worldgen == (world.GenConfig{}) {
		opts.Worldgen = world.DefaultGenConfig()
	}
	return &Worker{
		opts:     opts,
		requests: make(chan protocol.Request, opts.QueueSize),
		out:      make(chan protocol.Response, opts.QueueSize),
		done:     make(chan struct{}),
		tasks:    make(map[string]*task),
	}
}

// Start launches the worker goroutine. The first message on Out is the
// unsolicited ready signal.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Out is the response stream. It is closed after Close.
func (w *Worker) Out() <-chan protocol.Response {
	return w.out
}

// Submit enqueues a request. Cancel messages take effect immediately, even
// against a task that is already running; other requests are registered
// and queued. Returns false if the queue is full, in which case no task
// record remains.
func (w *Worker) Submit(req protocol.Request) bool {
	if c, ok := req.(*protocol.CancelMsg); ok {
		w.cancelTask(c.ID)
		return true
	}

	id := req.RequestID()
	w.mu.Lock()
	w.tasks[id] = &task{}
	w.mu.Unlock()

	select {
	case w.requests <- req:
		return true
	default:
		w.removeTask(id)
		return false
	}
}

// Close stops the worker and closes the output channel once the current
// request finishes.
func (w *Worker) Close() {
	close(w.done)
	w.wg.Wait()
	close(w.out)
}

func (w *Worker) run() {
	defer w.wg.Done()
	w.send(&protocol.ReadyMsg{Type: protocol.TypeReady})
	for {
		select {
		case req := <-w.requests:
			w.handle(req)
		case <-w.done:
			return
		}
	}
}

func (w *Worker) cancelTask(id string) {
	w.mu.Lock()
	if t, ok := w.tasks[id]; ok {
		t.cancelled = true
	}
	w.mu.Unlock()
}

func (w *Worker) removeTask(id string) {
	w.mu.Lock()
	delete(w.tasks, id)
	w.mu.Unlock()
}

func (w *Worker) isCancelled(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.tasks[id]
	return !ok || t.cancelled
}

func (w *Worker) send(resp protocol.Response) {
	select {
	case w.out <- resp:
	case <-w.done:
	}
}

func (w *Worker) sendError(id string, err error) {
	w.opts.Logger.Error("request failed", "requestId", id, "error", err)
	w.send(&protocol.ErrorMsg{Type: protocol.TypeError, ID: id, Error: err.Error()})
}

// handle runs one request to completion, error, or cancellation. All exit
// paths converge on task-registry removal, and a panic inside generation
// or meshing becomes an error response instead of killing the worker.
func (w *Worker) handle(req protocol.Request) {
	id := req.RequestID()
	defer w.removeTask(id)
	defer func() {
		if r := recover(); r != nil {
			w.sendError(id, fmt.Errorf("%v", r))
		}
	}()

	// Cancelled before the first phase started: dropped, no response.
	if w.isCancelled(id) {
		return
	}

	switch r := req.(type) {
	case *protocol.GenerateTerrainMsg:
		blocks := w.generate(r.ChunkX, r.ChunkZ, r.Seed)
		if w.isCancelled(id) {
			return
		}
		w.send(&protocol.TerrainCompleteMsg{
			Type:   protocol.TypeTerrainComplete,
			ID:     id,
			ChunkX: r.ChunkX,
			ChunkZ: r.ChunkZ,
			Blocks: blocks,
		})

	case *protocol.BuildMeshMsg:
		mesh, err := w.buildMesh(r.Blocks, r.NeighborNorth, r.NeighborSouth, r.NeighborEast, r.NeighborWest, r.LODLevel)
		if err != nil {
			w.sendError(id, err)
			return
		}
		if w.isCancelled(id) {
			return
		}
		w.send(&protocol.MeshCompleteMsg{
			Type:        protocol.TypeMeshComplete,
			ID:          id,
			MeshPayload: meshPayload(mesh),
		})

	case *protocol.GenerateAndBuildMeshMsg:
		blocks := w.generate(r.ChunkX, r.ChunkZ, r.Seed)
		// A cancel issued mid-generation must prevent the mesh phase.
		if w.isCancelled(id) {
			return
		}
		mesh, err := w.buildMesh(blocks, r.NeighborNorth, r.NeighborSouth, r.NeighborEast, r.NeighborWest, r.LODLevel)
		if err != nil {
			w.sendError(id, err)
			return
		}
		if w.isCancelled(id) {
			return
		}
		w.send(&protocol.GenerateAndMeshCompleteMsg{
			Type:        protocol.TypeGenerateAndMeshComplete,
			ID:          id,
			ChunkX:      r.ChunkX,
			ChunkZ:      r.ChunkZ,
			Blocks:      blocks,
			MeshPayload: meshPayload(mesh),
		})

	default:
		w.sendError(id, &protocol.UnknownTypeError{Type: req.MessageType()})
	}
}

func (w *Worker) generate(chunkX, chunkZ int, seed int32) world.Grid {
	defer profiling.Track("worker.generate")()
	if w.opts.Lookup != nil {
		if blocks, ok := w.opts.Lookup(seed, chunkX, chunkZ); ok {
			return blocks
		}
	}
	blocks := world.GenerateChunk(chunkX, chunkZ, seed, w.opts.Worldgen)
	if w.opts.Store != nil {
		w.opts.Store(seed, chunkX, chunkZ, blocks)
	}
	return blocks
}

func (w *Worker) buildMesh(blocks, north, south, east, west []byte, lodLevel int) (meshing.Mesh, error) {
	defer profiling.Track("worker.mesh")()

	grid := world.Grid(blocks)
	if !grid.Valid() {
		return meshing.Mesh{}, fmt.Errorf("blocks buffer length %d, want %d", len(blocks), world.ChunkVolume)
	}
	for name, nb := range map[string][]byte{
		"neighborNorth": north, "neighborSouth": south,
		"neighborEast": east, "neighborWest": west,
	} {
		if nb != nil && !world.Grid(nb).Valid() {
			return meshing.Mesh{}, fmt.Errorf("%s buffer length %d, want %d", name, len(nb), world.ChunkVolume)
		}
	}

	if lodLevel > 0 {
		return meshing.BuildLODMesh(grid, lodLevel), nil
	}
	return meshing.BuildChunkMesh(meshing.ChunkInput{
		Blocks:        grid,
		NeighborNorth: world.Grid(north),
		NeighborSouth: world.Grid(south),
		NeighborEast:  world.Grid(east),
		NeighborWest:  world.Grid(west),
	}), nil
}

func meshPayload(m meshing.Mesh) protocol.MeshPayload {
	return protocol.MeshPayload{
		Positions:   m.Positions,
		Normals:     m.Normals,
		Colors:      m.Colors,
		Indices:     m.Indices,
		VertexCount: m.VertexCount,
		FaceCount:   m.FaceCount,
	}
}
