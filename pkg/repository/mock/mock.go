package mock

import (
	"context"

	"github.com/zmikicdroin/jobtracker/pkg/models"
	"github.com/zmikicdroin/jobtracker/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	UserRepo *mockUserRepo
	AppRepo  *mockApplicationRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		UserRepo: &mockUserRepo{},
		AppRepo:  &mockApplicationRepo{apps: make(map[int64]*models.Application), nextID: 1},
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
	if m.Stored != nil {
		if m.Stored.Username == u.Username {
			return 0, repository.ErrDuplicateUsername
		}
		if m.Stored.Email == u.Email {
			return 0, repository.ErrDuplicateEmail
		}
	}
	m.Stored = &models.User{ID: 1, Username: u.Username, Email: u.Email, PasswordHash: u.PasswordHash}
	return 1, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.Stored != nil && m.Stored.Username == username {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

type mockApplicationRepo struct {
	apps   map[int64]*models.Application
	nextID int64

	// Err, when set, is returned by every operation.
	Err error
}

// Seed inserts an application directly, assigning an id.
func (m *mockApplicationRepo) Seed(a models.Application) int64 {
	id := m.nextID
	m.nextID++
	a.ID = id
	m.apps[id] = &a
	return id
}

// Get returns the stored application by raw id, ignoring ownership.
func (m *mockApplicationRepo) Get(id int64) *models.Application {
	return m.apps[id]
}

func (m *mockApplicationRepo) CreateApplication(ctx context.Context, a *models.Application) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Seed(*a), nil
}

func (m *mockApplicationRepo) ListByUser(ctx context.Context, userID int64) ([]models.Application, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Application
	for _, a := range m.apps {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, userID, id int64) (*models.Application, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if a, ok := m.apps[id]; ok && a.UserID == userID {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *mockApplicationRepo) UpdateApplication(ctx context.Context, a *models.Application, replaceCV bool) error {
	if m.Err != nil {
		return m.Err
	}
	cur, ok := m.apps[a.ID]
	if !ok || cur.UserID != a.UserID {
		return repository.ErrNotFound
	}
	cv := cur.CVFilename
	if replaceCV {
		cv = a.CVFilename
	}
	upd := *a
	upd.CVFilename = cv
	upd.CreatedAt = cur.CreatedAt
	m.apps[a.ID] = &upd
	return nil
}

func (m *mockApplicationRepo) SetStatus(ctx context.Context, userID, id int64, status string) error {
	if m.Err != nil {
		return m.Err
	}
	a, ok := m.apps[id]
	if !ok || a.UserID != userID {
		return repository.ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *mockApplicationRepo) DeleteApplication(ctx context.Context, userID, id int64) (*string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	a, ok := m.apps[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrNotFound
	}
	delete(m.apps, id)
	return a.CVFilename, nil
}

func (m *mockApplicationRepo) GetCVFilename(ctx context.Context, userID, id int64) (*string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	a, ok := m.apps[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return a.CVFilename, nil
}

func (m *mockApplicationRepo) OwnsCV(ctx context.Context, userID int64, filename string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	for _, a := range m.apps {
		if a.UserID == userID && a.CVFilename != nil && *a.CVFilename == filename {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockApplicationRepo) Stats(ctx context.Context, userID int64) (*models.Stats, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var s models.Stats
	for _, a := range m.apps {
		if a.UserID != userID {
			continue
		}
		s.Total++
		switch a.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusAccepted:
			s.Accepted++
		case models.StatusRejected:
			s.Rejected++
		case models.StatusInterview:
			s.Interview++
		}
	}
	return &s, nil
}
