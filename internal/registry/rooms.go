package registry

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/linguasigna/signaling-server/internal/types"
	"github.com/teris-io/shortid"
)

const (
	// DefaultMaxParticipants matches the capacity enforced when joining a room.
	DefaultMaxParticipants = 10

	roomCodeLength   = 6
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RoomRegistry owns the mapping from room code to room state. All
// membership changes go through it, so it is the single source of
// truth for who belongs to which room.
type RoomRegistry interface {
	CreateRoom(creatorId string) (types.Room, error)
	JoinRoom(code, userId string) (types.Room, error)
	LeaveRoom(code, userId string)
	GetRoom(code string) (types.Room, error)
	ListActive() []types.Room
}

type InMemoryRoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*types.Room
}

func NewRoomRegistry() *InMemoryRoomRegistry {
	return &InMemoryRoomRegistry{
		rooms: make(map[string]*types.Room),
	}
}

// generateRoomCode produces a short, human-enterable room code.
func generateRoomCode() (string, error) {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}

	return string(buf), nil
}

func (r *InMemoryRoomRegistry) CreateRoom(creatorId string) (types.Room, error) {
	if creatorId == "" {
		return types.Room{}, fmt.Errorf("creator id is required: %w", ErrInvalidArgument)
	}

	id, err := shortid.Generate()
	if err != nil {
		return types.Room{}, fmt.Errorf("generate room id: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var code string
	for {
		code, err = generateRoomCode()
		if err != nil {
			return types.Room{}, err
		}
		// the code space is small, regenerate until unused
		if _, exists := r.rooms[code]; !exists {
			break
		}
	}

	room := &types.Room{
		Id:        id,
		Code:      code,
		CreatorId: creatorId,
		Participants: []types.Participant{{
			UserId:   creatorId,
			Role:     types.RoleCreator,
			JoinedAt: time.Now().UTC(),
		}},
		MaxParticipants: DefaultMaxParticipants,
		Active:          true,
		CreatedAt:       time.Now().UTC(),
	}

	r.rooms[code] = room
	return cloneRoom(room), nil
}

func (r *InMemoryRoomRegistry) JoinRoom(code, userId string) (types.Room, error) {
	if code == "" || userId == "" {
		return types.Room{}, fmt.Errorf("room code and user id are required: %w", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok || !room.Active {
		return types.Room{}, fmt.Errorf("room %q: %w", code, ErrRoomNotFound)
	}

	for _, p := range room.Participants {
		if p.UserId == userId {
			// re-joins return the room unchanged
			return cloneRoom(room), nil
		}
	}

	if len(room.Participants) >= room.MaxParticipants {
		return types.Room{}, fmt.Errorf("room %q: %w", code, ErrRoomFull)
	}

	room.Participants = append(room.Participants, types.Participant{
		UserId:   userId,
		Role:     types.RoleParticipant,
		JoinedAt: time.Now().UTC(),
	})

	return cloneRoom(room), nil
}

// LeaveRoom removes the participant record for userId. It is a no-op
// if the room or the participant is already gone, since disconnect
// handling can arrive out of order. An empty room stays active and
// joinable.
func (r *InMemoryRoomRegistry) LeaveRoom(code, userId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return
	}

	for i, p := range room.Participants {
		if p.UserId == userId {
			room.Participants = append(room.Participants[:i], room.Participants[i+1:]...)
			return
		}
	}
}

func (r *InMemoryRoomRegistry) GetRoom(code string) (types.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	if !ok || !room.Active {
		return types.Room{}, fmt.Errorf("room %q: %w", code, ErrRoomNotFound)
	}

	return cloneRoom(room), nil
}

// ListActive returns a snapshot of all active rooms, recomputed on
// each call.
func (r *InMemoryRoomRegistry) ListActive() []types.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]types.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		if room.Active {
			rooms = append(rooms, cloneRoom(room))
		}
	}

	return rooms
}

// cloneRoom copies the room so callers never share the registry's
// participant slice.
func cloneRoom(room *types.Room) types.Room {
	clone := *room
	clone.Participants = make([]types.Participant, len(room.Participants))
	copy(clone.Participants, room.Participants)
	return clone
}
