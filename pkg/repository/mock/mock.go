package mock

import (
	"context"

	"github.com/samuelralak/Emurgis/internal/models"
)

// Test helpers and mocks
type Mocks struct {
	UserRepo  *mockUserRepo
	NotifRepo *MockNotificationRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		UserRepo:  &mockUserRepo{},
		NotifRepo: &MockNotificationRepo{},
	}
}

type mockUserRepo struct {
	Stored    *models.User
	CreateErr error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.Stored = &models.User{ID: 1, Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash}
	return 1, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.Stored != nil && m.Stored.Email == email {
		return m.Stored, nil
	}
	return nil, nil
}

// MockNotificationRepo records created notifications in memory.
type MockNotificationRepo struct {
	Created   []models.Notification
	CreateErr error
}

func (m *MockNotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	id := int64(len(m.Created) + 1)
	c := *n
	c.ID = id
	m.Created = append(m.Created, c)
	return id, nil
}

func (m *MockNotificationRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.Created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MockNotificationRepo) CountUnreadByUser(ctx context.Context, userID int64) (int64, error) {
	var cnt int64
	for _, n := range m.Created {
		if n.UserID == userID && !n.Read {
			cnt++
		}
	}
	return cnt, nil
}

func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, userID int64) error {
	for i := range m.Created {
		if m.Created[i].UserID == userID {
			m.Created[i].Read = true
		}
	}
	return nil
}
