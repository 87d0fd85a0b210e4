// AngelaMos | 2026
// memory_repository_test.go

package user

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/usermgmt/internal/core"
)

// memoryRepository mimics the users table, including its unique
// constraints, for lifecycle tests that span several requests.
type memoryRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{nextID: 1, rows: map[int64]User{}}
}

func (m *memoryRepository) FindAll(_ context.Context, includeDeleted bool) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := []User{}
	for _, u := range m.rows {
		if !includeDeleted && u.IsDeleted() {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *memoryRepository) FindByID(_ context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return &u, nil
}

func (m *memoryRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	return m.findBy(func(u User) bool { return u.Username == username })
}

func (m *memoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	return m.findBy(func(u User) bool { return u.Email == email })
}

func (m *memoryRepository) findBy(match func(User) bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.rows {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("find user: %w", core.ErrNotFound)
}

func (m *memoryRepository) checkUnique(user *User) error {
	for id, u := range m.rows {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return &DuplicateError{Field: FieldUsername, Constraint: constraintUsername}
		}
		if u.Email == user.Email {
			return &DuplicateError{Field: FieldEmail, Constraint: constraintEmail}
		}
	}
	return nil
}

func (m *memoryRepository) Insert(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkUnique(user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	user.ID = m.nextID
	m.nextID++
	m.rows[user.ID] = *user
	return nil
}

func (m *memoryRepository) Update(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[user.ID]; !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err := m.checkUnique(user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	m.rows[user.ID] = *user
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

func (m *memoryRepository) SoftDelete(_ context.Context, id int64, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.rows[id]
	if !ok || u.IsDeleted() {
		return 0, nil
	}
	u.DeletedOn = &at
	u.UpdatedOn = at
	m.rows[id] = u
	return 1, nil
}

func (m *memoryRepository) Restore(_ context.Context, id int64, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.rows[id]
	if !ok || !u.IsDeleted() {
		return 0, nil
	}
	u.DeletedOn = nil
	u.UpdatedOn = at
	m.rows[id] = u
	return 1, nil
}

var _ Repository = (*memoryRepository)(nil)
