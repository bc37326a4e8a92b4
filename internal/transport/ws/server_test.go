package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"voxelforge/internal/protocol"
	"voxelforge/internal/world"
)

func dialTest(t *testing.T, opts Options) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewServer(opts).Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readBase(t *testing.T, conn *websocket.Conn) (protocol.BaseMessage, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		t.Fatal(err)
	}
	return base, msg
}

func TestSessionRoundTrip(t *testing.T) {
	conn := dialTest(t, Options{Workers: 2})

	if base, _ := readBase(t, conn); base.Type != protocol.TypeReady {
		t.Fatalf("first message = %s, want ready", base.Type)
	}

	req := `{"type":"generateTerrain","requestId":"t1","chunkX":1,"chunkZ":2,"seed":42}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatal(err)
	}

	base, msg := readBase(t, conn)
	if base.Type != protocol.TypeTerrainComplete || base.ID != "t1" {
		t.Fatalf("got %s/%s, want terrainComplete/t1", base.Type, base.ID)
	}
	var tc protocol.TerrainCompleteMsg
	if err := json.Unmarshal(msg, &tc); err != nil {
		t.Fatal(err)
	}
	if len(tc.Blocks) != world.ChunkVolume {
		t.Fatalf("blocks decoded to %d bytes", len(tc.Blocks))
	}
}

func TestMalformedMessageAnswersInBand(t *testing.T) {
	conn := dialTest(t, Options{})
	readBase(t, conn) // ready

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport","requestId":"x1"}`)); err != nil {
		t.Fatal(err)
	}
	base, msg := readBase(t, conn)
	if base.Type != protocol.TypeError || base.ID != "x1" {
		t.Fatalf("got %s/%s, want error/x1", base.Type, base.ID)
	}
	var em protocol.ErrorMsg
	if err := json.Unmarshal(msg, &em); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(em.Error, "teleport") {
		t.Fatalf("error %q does not name the type", em.Error)
	}

	// The session survives and still serves requests.
	req := `{"type":"generateTerrain","requestId":"x2","chunkX":0,"chunkZ":0,"seed":1}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatal(err)
	}
	if base, _ := readBase(t, conn); base.ID != "x2" {
		t.Fatalf("session dead after malformed message, got %+v", base)
	}
}

type mapCache struct {
	grids map[[3]int32]world.Grid
	puts  int
}

func (c *mapCache) key(seed int32, cx, cz int) [3]int32 {
	return [3]int32{seed, int32(cx), int32(cz)}
}

func (c *mapCache) Get(seed int32, cx, cz int) (world.Grid, bool) {
	g, ok := c.grids[c.key(seed, cx, cz)]
	return g, ok
}

func (c *mapCache) Put(seed int32, cx, cz int, blocks world.Grid) error {
	c.grids[c.key(seed, cx, cz)] = blocks
	c.puts++
	return nil
}

func TestCacheWriteThrough(t *testing.T) {
	cache := &mapCache{grids: make(map[[3]int32]world.Grid)}
	conn := dialTest(t, Options{Cache: cache})
	readBase(t, conn) // ready

	req := `{"type":"generateTerrain","requestId":"c1","chunkX":4,"chunkZ":4,"seed":9}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatal(err)
	}
	readBase(t, conn)

	if cache.puts != 1 {
		t.Fatalf("cache puts = %d, want 1", cache.puts)
	}
	if _, ok := cache.Get(9, 4, 4); !ok {
		t.Fatal("generated chunk not written through")
	}
}
