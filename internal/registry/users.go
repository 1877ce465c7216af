package registry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/linguasigna/signaling-server/internal/types"
)

// UserRegistry backs the auth collaborator. Users are created on
// first login and live for the lifetime of the process.
type UserRegistry interface {
	CreateUser(email, passwordHash string) (types.User, error)
	GetUser(userId string) (types.User, error)
	GetUserByEmail(email string) (types.User, error)
	Count() int
}

type InMemoryUserRegistry struct {
	mu      sync.RWMutex
	users   map[string]*types.User
	byEmail map[string]string
}

func NewUserRegistry() *InMemoryUserRegistry {
	return &InMemoryUserRegistry{
		users:   make(map[string]*types.User),
		byEmail: make(map[string]string),
	}
}

func (u *InMemoryUserRegistry) CreateUser(email, passwordHash string) (types.User, error) {
	if email == "" {
		return types.User{}, fmt.Errorf("email is required: %w", ErrInvalidArgument)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if id, ok := u.byEmail[email]; ok {
		return *u.users[id], nil
	}

	user := &types.User{
		Id:           uuid.NewString(),
		Username:     strings.SplitN(email, "@", 2)[0],
		EmailAddress: email,
		Password:     passwordHash,
		Settings: types.UserSettings{
			SelectedLanguage:    "asl",
			AutoTranslate:       true,
			TranslationTextSize: 16.0,
		},
		CreatedAt: time.Now().UTC(),
	}

	u.users[user.Id] = user
	u.byEmail[email] = user.Id

	return *user, nil
}

func (u *InMemoryUserRegistry) GetUser(userId string) (types.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	user, ok := u.users[userId]
	if !ok {
		return types.User{}, fmt.Errorf("user %q: %w", userId, ErrUserNotFound)
	}

	return *user, nil
}

func (u *InMemoryUserRegistry) GetUserByEmail(email string) (types.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	id, ok := u.byEmail[email]
	if !ok {
		return types.User{}, fmt.Errorf("user %q: %w", email, ErrUserNotFound)
	}

	return *u.users[id], nil
}

func (u *InMemoryUserRegistry) Count() int {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return len(u.users)
}
