// AngelaMos | 2026
// mock_repository_test.go

package user

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockRepository struct {
	mock.Mock
}

func newMockRepository() *mockRepository {
	return &mockRepository{}
}

func (m *mockRepository) FindAll(ctx context.Context, includeDeleted bool) ([]User, error) {
	args := m.Called(ctx, includeDeleted)
	users, _ := args.Get(0).([]User)
	return users, args.Error(1)
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *mockRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *mockRepository) Insert(ctx context.Context, user *User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockRepository) Update(ctx context.Context, user *User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository) SoftDelete(ctx context.Context, id int64, at time.Time) (int64, error) {
	args := m.Called(ctx, id, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository) Restore(ctx context.Context, id int64, at time.Time) (int64, error) {
	args := m.Called(ctx, id, at)
	return args.Get(0).(int64), args.Error(1)
}

var _ Repository = (*mockRepository)(nil)
