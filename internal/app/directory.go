package app

import (
	"sort"
	"sync"

	"github.com/dkeye/Poll/internal/core"
	"github.com/dkeye/Poll/internal/domain"
	"github.com/dkeye/Poll/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Directory maps room names to rooms and refuses to create more than
// maxRooms of them. Its lock is independent of any room's lock.
type Directory struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomName]core.RoomService
	maxRooms int
}

func NewDirectory(maxRooms int) *Directory {
	return &Directory{
		rooms:    make(map[domain.RoomName]core.RoomService),
		maxRooms: maxRooms,
	}
}

// GetOrCreate returns the named room, creating it while below capacity.
func (d *Directory) GetOrCreate(name domain.RoomName) (core.RoomService, error) {
	d.mu.RLock()
	room, ok := d.rooms[name]
	d.mu.RUnlock()
	if ok {
		return room, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if room, ok = d.rooms[name]; ok {
		return room, nil
	}
	if len(d.rooms) >= d.maxRooms {
		log.Warn().Str("module", "app.directory").Str("room", string(name)).Int("max_rooms", d.maxRooms).Msg("room capacity exceeded")
		return nil, domain.ErrCapacityExceeded
	}
	room = core.NewRoomService(domain.NewRoom(name))
	d.rooms[name] = room
	metrics.RoomsActive.Set(float64(len(d.rooms)))
	log.Info().Str("module", "app.directory").Str("room", string(name)).Str("room_id", string(room.Room().ID)).Msg("room created")
	return room, nil
}

func (d *Directory) Get(name domain.RoomName) (core.RoomService, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[name]
	return room, ok
}

// List returns rooms sorted by name.
func (d *Directory) List() []core.RoomInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(d.rooms))
	for name, r := range d.rooms {
		out = append(out, core.RoomInfo{Name: name, MemberCount: r.SubscriberCount()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
