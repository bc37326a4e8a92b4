// chunkprobe is a small client for poking a running chunkd: it requests a
// chunk, waits for the fused response, and prints mesh stats.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voxelforge/internal/protocol"
)

func main() {
	var (
		url    = flag.String("url", "ws://localhost:8642/v1/ws", "chunkd ws url")
		seed   = flag.Int("seed", 42, "world seed")
		chunkX = flag.Int("cx", 0, "chunk x")
		chunkZ = flag.Int("cz", 0, "chunk z")
		lod    = flag.Int("lod", 0, "lod level (0 = full detail)")
		cancel = flag.Bool("cancel", false, "cancel the request right after sending it")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[chunkprobe] ", log.LstdFlags|log.Lmicroseconds)

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	id := uuid.NewString()
	req := protocol.GenerateAndBuildMeshMsg{
		Type:     protocol.TypeGenerateAndBuildMesh,
		ID:       id,
		ChunkX:   *chunkX,
		ChunkZ:   *chunkZ,
		Seed:     int32(*seed),
		LODLevel: *lod,
	}

	start := time.Now()
	if err := conn.WriteJSON(req); err != nil {
		logger.Fatalf("send request: %v", err)
	}
	if *cancel {
		c := protocol.CancelMsg{Type: protocol.TypeCancel, ID: id}
		if err := conn.WriteJSON(c); err != nil {
			logger.Fatalf("send cancel: %v", err)
		}
		logger.Printf("sent %s then cancel, waiting 2s for any stray response", id)
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	} else {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if *cancel {
				logger.Printf("no response for cancelled request (good)")
				return
			}
			logger.Fatalf("read: %v", err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeReady:
			logger.Printf("worker ready")
			continue
		case protocol.TypeError:
			var em protocol.ErrorMsg
			if err := json.Unmarshal(msg, &em); err != nil {
				logger.Fatalf("decode error message: %v", err)
			}
			logger.Fatalf("request %s failed: %s", em.ID, em.Error)
		case protocol.TypeGenerateAndMeshComplete:
			if base.ID != id {
				continue
			}
			var gm protocol.GenerateAndMeshCompleteMsg
			if err := json.Unmarshal(msg, &gm); err != nil {
				logger.Fatalf("decode response: %v", err)
			}
			if *cancel {
				logger.Fatalf("got a response for a cancelled request")
			}
			logger.Printf("chunk (%d,%d) seed %d lod %d: %d faces, %d vertices, %d block bytes in %s",
				gm.ChunkX, gm.ChunkZ, *seed, *lod,
				gm.FaceCount, gm.VertexCount, len(gm.Blocks),
				time.Since(start).Round(time.Millisecond))
			return
		}
	}
}
