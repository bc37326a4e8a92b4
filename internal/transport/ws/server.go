// Package ws exposes the chunk worker protocol over a websocket endpoint.
// Each connection owns a private worker pool, so one slow client never
// stalls another.
package ws

import (
	"log"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voxelforge/internal/protocol"
	"voxelforge/internal/worker"
	"voxelforge/internal/world"
)

const writeTimeout = 10 * time.Second

// Cache is the optional chunk cache consulted before generation.
type Cache interface {
	Get(seed int32, chunkX, chunkZ int) (blocks world.Grid, ok bool)
	Put(seed int32, chunkX, chunkZ int, blocks world.Grid) error
}

type Options struct {
	Workers int
	Worker  worker.Options
	Cache   Cache
	Logger  *log.Logger
	Slog    *slog.Logger
}

type Server struct {
	opts     Options
	upgrader websocket.Upgrader
}

func NewServer(opts Options) *Server {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Slog == nil {
		opts.Slog = slog.Default()
	}
	return &Server{
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler upgrades the request and services the connection until the peer
// goes away.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		session := uuid.NewString()
		s.opts.Logger.Printf("session %s connected from %s", session, r.RemoteAddr)
		defer s.opts.Logger.Printf("session %s closed", session)

		wopts := s.opts.Worker
		if wopts.Logger == nil {
			wopts.Logger = s.opts.Slog.With("session", session)
		}
		if s.opts.Cache != nil {
			wopts.Lookup = s.opts.Cache.Get
			wopts.Store = s.store
		}
		pool := worker.NewPool(s.opts.Workers, wopts)
		defer pool.Shutdown()

		// The reader loop and the pool drainer both answer on the socket,
		// so writes go through one mutex-guarded path.
		var wmu sync.Mutex
		send := func(resp protocol.Response) bool {
			b, err := protocol.EncodeResponse(resp)
			if err != nil {
				s.opts.Logger.Printf("session %s: encode %s: %v", session, resp.MessageType(), err)
				return true
			}
			wmu.Lock()
			defer wmu.Unlock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			return conn.WriteMessage(websocket.TextMessage, b) == nil
		}

		go func() {
			for resp := range pool.Out() {
				if !send(resp) {
					// Peer is gone; drain so Shutdown can finish.
					for range pool.Out() {
					}
					return
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			req, err := protocol.DecodeRequest(msg)
			if err != nil {
				// Malformed input answers in-band and keeps the session up.
				base, _ := protocol.DecodeBase(msg)
				send(&protocol.ErrorMsg{Type: protocol.TypeError, ID: base.ID, Error: err.Error()})
				continue
			}
			if !pool.Submit(req) {
				send(&protocol.ErrorMsg{Type: protocol.TypeError, ID: req.RequestID(), Error: "worker queue full"})
			}
		}
	}
}

func (s *Server) store(seed int32, chunkX, chunkZ int, blocks world.Grid) {
	if err := s.opts.Cache.Put(seed, chunkX, chunkZ, blocks); err != nil {
		s.opts.Slog.Warn("chunk cache write failed", "error", err)
	}
}
