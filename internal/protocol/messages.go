package protocol

import (
	"encoding/json"
	"fmt"
)

// Request message types (caller -> worker).
const (
	TypeGenerateTerrain      = "generateTerrain"
	TypeBuildMesh            = "buildMesh"
	TypeGenerateAndBuildMesh = "generateAndBuildMesh"
	TypeCancel               = "cancel"
)

// Response message types (worker -> caller).
const (
	TypeReady                   = "ready"
	TypeTerrainComplete         = "terrainComplete"
	TypeMeshComplete            = "meshComplete"
	TypeGenerateAndMeshComplete = "generateAndMeshComplete"
	TypeError                   = "error"
)

// Request is the closed set of messages a worker accepts. The requestId is
// an opaque caller-supplied token used to correlate responses and to cancel.
type Request interface {
	RequestID() string
	MessageType() string
}

// Response is the closed set of messages a worker emits. CorrelationID
// returns the originating requestId, empty for the unsolicited ready signal.
type Response interface {
	CorrelationID() string
	MessageType() string
}

// BaseMessage routes raw JSON messages by type before full decoding.
type BaseMessage struct {
	Type string `json:"type"`
	ID   string `json:"requestId,omitempty"`
}

// DecodeBase extracts the routing envelope from a raw message.
func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// UnknownTypeError reports an unrecognized message type by name. It is a
// per-request error, never fatal to the worker.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Type)
}

// GenerateTerrainMsg requests one chunk's block grid.
type GenerateTerrainMsg struct {
	Type   string `json:"type"`
	ID     string `json:"requestId"`
	ChunkX int    `json:"chunkX"`
	ChunkZ int    `json:"chunkZ"`
	Seed   int32  `json:"seed"`
}

func (m *GenerateTerrainMsg) RequestID() string   { return m.ID }
func (m *GenerateTerrainMsg) MessageType() string { return TypeGenerateTerrain }

// BuildMeshMsg requests a mesh for a caller-supplied block grid. Any absent
// neighbor buffer is treated as all-air. A LODLevel above zero selects the
// downsampled mesh path, which ignores neighbor buffers.
type BuildMeshMsg struct {
	Type          string `json:"type"`
	ID            string `json:"requestId"`
	Blocks        []byte `json:"blocks"`
	NeighborNorth []byte `json:"neighborNorth,omitempty"`
	NeighborSouth []byte `json:"neighborSouth,omitempty"`
	NeighborEast  []byte `json:"neighborEast,omitempty"`
	NeighborWest  []byte `json:"neighborWest,omitempty"`
	LODLevel      int    `json:"lodLevel,omitempty"`
}

func (m *BuildMeshMsg) RequestID() string   { return m.ID }
func (m *BuildMeshMsg) MessageType() string { return TypeBuildMesh }

// GenerateAndBuildMeshMsg is the fused path: generate a chunk and mesh it
// within one task, avoiding a round-trip. Neighbor buffers, when present,
// are used only for the mesh phase.
type GenerateAndBuildMeshMsg struct {
	Type          string `json:"type"`
	ID            string `json:"requestId"`
	ChunkX        int    `json:"chunkX"`
	ChunkZ        int    `json:"chunkZ"`
	Seed          int32  `json:"seed"`
	NeighborNorth []byte `json:"neighborNorth,omitempty"`
	NeighborSouth []byte `json:"neighborSouth,omitempty"`
	NeighborEast  []byte `json:"neighborEast,omitempty"`
	NeighborWest  []byte `json:"neighborWest,omitempty"`
	LODLevel      int    `json:"lodLevel,omitempty"`
}

func (m *GenerateAndBuildMeshMsg) RequestID() string   { return m.ID }
func (m *GenerateAndBuildMeshMsg) MessageType() string { return TypeGenerateAndBuildMesh }

// CancelMsg flags the task with the given requestId. Cancellation is
// cooperative: the flag is polled between phases, never mid-loop.
type CancelMsg struct {
	Type string `json:"type"`
	ID   string `json:"requestId"`
}

func (m *CancelMsg) RequestID() string   { return m.ID }
func (m *CancelMsg) MessageType() string { return TypeCancel }

// ReadyMsg is sent once, unsolicited, when a worker becomes available.
type ReadyMsg struct {
	Type string `json:"type"`
}

func (m *ReadyMsg) CorrelationID() string { return "" }
func (m *ReadyMsg) MessageType() string   { return TypeReady }

// TerrainCompleteMsg carries a generated block grid. Ownership of the
// buffer moves to the receiver.
type TerrainCompleteMsg struct {
	Type   string `json:"type"`
	ID     string `json:"requestId"`
	ChunkX int    `json:"chunkX"`
	ChunkZ int    `json:"chunkZ"`
	Blocks []byte `json:"blocks"`
}

func (m *TerrainCompleteMsg) CorrelationID() string { return m.ID }
func (m *TerrainCompleteMsg) MessageType() string   { return TypeTerrainComplete }

// MeshPayload is the four parallel mesh buffers shared by the two mesh
// completion messages.
type MeshPayload struct {
	Positions   []float32 `json:"positions"`
	Normals     []float32 `json:"normals"`
	Colors      []float32 `json:"colors"`
	Indices     []uint32  `json:"indices"`
	VertexCount int       `json:"vertexCount"`
	FaceCount   int       `json:"faceCount"`
}

// MeshCompleteMsg carries built mesh buffers. Ownership moves to the receiver.
type MeshCompleteMsg struct {
	Type string `json:"type"`
	ID   string `json:"requestId"`
	MeshPayload
}

func (m *MeshCompleteMsg) CorrelationID() string { return m.ID }
func (m *MeshCompleteMsg) MessageType() string   { return TypeMeshComplete }

// GenerateAndMeshCompleteMsg carries both the block grid and the mesh for
// the fused path.
type GenerateAndMeshCompleteMsg struct {
	Type   string `json:"type"`
	ID     string `json:"requestId"`
	ChunkX int    `json:"chunkX"`
	ChunkZ int    `json:"chunkZ"`
	Blocks []byte `json:"blocks"`
	MeshPayload
}

func (m *GenerateAndMeshCompleteMsg) CorrelationID() string { return m.ID }
func (m *GenerateAndMeshCompleteMsg) MessageType() string   { return TypeGenerateAndMeshComplete }

// ErrorMsg reports a per-request failure. The worker stays alive.
type ErrorMsg struct {
	Type  string `json:"type"`
	ID    string `json:"requestId"`
	Error string `json:"error"`
}

func (m *ErrorMsg) CorrelationID() string { return m.ID }
func (m *ErrorMsg) MessageType() string   { return TypeError }

// DecodeRequest parses a raw message into its typed request. Unrecognized
// types return UnknownTypeError naming the type.
func DecodeRequest(b []byte) (Request, error) {
	base, err := DecodeBase(b)
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch base.Type {
	case TypeGenerateTerrain:
		var m GenerateTerrainMsg
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", base.Type, err)
		}
		return &m, nil
	case TypeBuildMesh:
		var m BuildMeshMsg
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", base.Type, err)
		}
		return &m, nil
	case TypeGenerateAndBuildMesh:
		var m GenerateAndBuildMeshMsg
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", base.Type, err)
		}
		return &m, nil
	case TypeCancel:
		var m CancelMsg
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", base.Type, err)
		}
		return &m, nil
	default:
		return nil, &UnknownTypeError{Type: base.Type}
	}
}

// EncodeResponse serializes a response for the wire.
func EncodeResponse(r Response) ([]byte, error) {
	return json.Marshal(r)
}
