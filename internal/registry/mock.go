package registry

import (
	"github.com/linguasigna/signaling-server/internal/types"
	"github.com/stretchr/testify/mock"
)

type MockRoomRegistry struct {
	mock.Mock
}

func (m *MockRoomRegistry) CreateRoom(creatorId string) (types.Room, error) {
	args := m.Called(creatorId)
	return args.Get(0).(types.Room), args.Error(1)
}
func (m *MockRoomRegistry) JoinRoom(code, userId string) (types.Room, error) {
	args := m.Called(code, userId)
	return args.Get(0).(types.Room), args.Error(1)
}
func (m *MockRoomRegistry) LeaveRoom(code, userId string) {
	m.Called(code, userId)
}
func (m *MockRoomRegistry) GetRoom(code string) (types.Room, error) {
	args := m.Called(code)
	return args.Get(0).(types.Room), args.Error(1)
}
func (m *MockRoomRegistry) ListActive() []types.Room {
	args := m.Called()
	return args.Get(0).([]types.Room)
}

type MockSessionRegistry struct {
	mock.Mock
}

func (m *MockSessionRegistry) StartSession(userId, language string) (types.Session, error) {
	args := m.Called(userId, language)
	return args.Get(0).(types.Session), args.Error(1)
}
func (m *MockSessionRegistry) GetSession(sessionId string) (types.Session, error) {
	args := m.Called(sessionId)
	return args.Get(0).(types.Session), args.Error(1)
}
func (m *MockSessionRegistry) ListSessionsFor(userId string) []types.Session {
	args := m.Called(userId)
	return args.Get(0).([]types.Session)
}
func (m *MockSessionRegistry) RecordTranslationEvent(sessionId string) error {
	args := m.Called(sessionId)
	return args.Error(0)
}
func (m *MockSessionRegistry) CountActive() int {
	args := m.Called()
	return args.Int(0)
}

type MockUserRegistry struct {
	mock.Mock
}

func (m *MockUserRegistry) CreateUser(email, passwordHash string) (types.User, error) {
	args := m.Called(email, passwordHash)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockUserRegistry) GetUser(userId string) (types.User, error) {
	args := m.Called(userId)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockUserRegistry) GetUserByEmail(email string) (types.User, error) {
	args := m.Called(email)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockUserRegistry) Count() int {
	args := m.Called()
	return args.Int(0)
}
