package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomMapJoinLeave(t *testing.T) {
	m := NewRoomMap()

	m.Join(1, "cu__42")
	m.Join(1, "pr__7")
	m.Join(2, "cu__42")

	assert.True(t, m.Contains(1, "cu__42"))
	assert.True(t, m.Contains(1, "pr__7"))
	assert.True(t, m.Contains(2, "cu__42"))
	assert.False(t, m.Contains(2, "pr__7"))
	assert.ElementsMatch(t, []string{"cu__42", "pr__7"}, m.Members(1))
	assert.Equal(t, 2, m.RoomCount())

	m.Leave(1, "cu__42")
	assert.False(t, m.Contains(1, "cu__42"))
	assert.ElementsMatch(t, []string{"pr__7"}, m.Members(1))

	// Leaving the last member drops the room
	m.Leave(1, "pr__7")
	assert.Equal(t, 1, m.RoomCount())
	assert.Nil(t, m.Members(1))
}

func TestRoomMapJoinIdempotent(t *testing.T) {
	m := NewRoomMap()

	m.Join(1, "cu__42")
	m.Join(1, "cu__42")

	assert.Len(t, m.Members(1), 1)
}

func TestRoomMapRemoveUser(t *testing.T) {
	m := NewRoomMap()

	m.Join(1, "cu__42")
	m.Join(2, "cu__42")
	m.Join(1, "pr__7")

	left := m.RemoveUser("cu__42")
	assert.ElementsMatch(t, []int64{1, 2}, left)
	assert.False(t, m.Contains(1, "cu__42"))
	assert.False(t, m.Contains(2, "cu__42"))
	assert.True(t, m.Contains(1, "pr__7"))

	assert.Nil(t, m.RemoveUser("cu__42"))
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, OriginAllowed("", nil))
	assert.False(t, OriginAllowed("https://app.example.com", nil))
	assert.True(t, OriginAllowed("https://app.example.com", []string{"*"}))
	assert.True(t, OriginAllowed("https://app.example.com", []string{"https://app.example.com"}))
	assert.True(t, OriginAllowed("https://APP.example.com", []string{"https://app.example.com"}))
	assert.False(t, OriginAllowed("https://evil.example.com", []string{"https://app.example.com"}))
}
