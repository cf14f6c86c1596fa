package gateway

import "sync"

// RoomMap tracks which users have joined which conversation rooms on
// this instance. Membership is per user, not per connection: a user
// with several sockets occupies the room once and every socket gets
// the room's frames.
type RoomMap struct {
	mu    sync.RWMutex
	rooms map[int64]map[string]struct{} // conversationId -> userIds
	byUsr map[string]map[int64]struct{} // userId -> conversationIds
}

// NewRoomMap creates a new RoomMap
func NewRoomMap() *RoomMap {
	return &RoomMap{
		rooms: make(map[int64]map[string]struct{}),
		byUsr: make(map[string]map[int64]struct{}),
	}
}

// Join adds a user to a conversation room
func (m *RoomMap) Join(conversationId int64, userId string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[conversationId]
	if !ok {
		room = make(map[string]struct{}, 2)
		m.rooms[conversationId] = room
	}
	room[userId] = struct{}{}

	userRooms, ok := m.byUsr[userId]
	if !ok {
		userRooms = make(map[int64]struct{}, 2)
		m.byUsr[userId] = userRooms
	}
	userRooms[conversationId] = struct{}{}
}

// Leave removes a user from a conversation room
func (m *RoomMap) Leave(conversationId int64, userId string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if room, ok := m.rooms[conversationId]; ok {
		delete(room, userId)
		if len(room) == 0 {
			delete(m.rooms, conversationId)
		}
	}
	if userRooms, ok := m.byUsr[userId]; ok {
		delete(userRooms, conversationId)
		if len(userRooms) == 0 {
			delete(m.byUsr, userId)
		}
	}
}

// RemoveUser removes a user from every room, returning the rooms left
func (m *RoomMap) RemoveUser(userId string) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	userRooms, ok := m.byUsr[userId]
	if !ok {
		return nil
	}

	left := make([]int64, 0, len(userRooms))
	for conversationId := range userRooms {
		left = append(left, conversationId)
		if room, ok := m.rooms[conversationId]; ok {
			delete(room, userId)
			if len(room) == 0 {
				delete(m.rooms, conversationId)
			}
		}
	}
	delete(m.byUsr, userId)
	return left
}

// Members returns the users currently in a room
func (m *RoomMap) Members(conversationId int64) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[conversationId]
	if !ok {
		return nil
	}

	members := make([]string, 0, len(room))
	for userId := range room {
		members = append(members, userId)
	}
	return members
}

// Contains reports whether a user is in a room
func (m *RoomMap) Contains(conversationId int64, userId string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[conversationId]
	if !ok {
		return false
	}
	_, in := room[userId]
	return in
}

// RoomCount returns the number of active rooms
func (m *RoomMap) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
