// Package memory implements storage.Storage on in-process maps. It mirrors
// the relational semantics the service layer relies on (unique token
// columns, conditioned updates) and backs the service test suites.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/storage"
)

type Storage struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	sessions   map[int64]*models.Session
	tasks      map[int64]*models.Task
	nextUserID int64
	nextSessID int64
	nextTaskID int64
}

func NewStorage() *Storage {
	return &Storage{
		users:    make(map[int64]*models.User),
		sessions: make(map[int64]*models.Session),
		tasks:    make(map[int64]*models.Task),
	}
}

func (s *Storage) CreateUser(_ context.Context, fullName, username, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return nil, storage.ErrUsernameTaken
		}
	}

	s.nextUserID++
	user := &models.User{
		ID:           s.nextUserID,
		Username:     username,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Active:       true,
	}
	s.users[user.ID] = user

	copied := *user
	return &copied, nil
}

func (s *Storage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (s *Storage) IncrementLoginAttempts(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	user.LoginAttempts++
	return nil
}

// SetUserActive flips the active flag; test hook standing in for the
// out-of-band admin action.
func (s *Storage) SetUserActive(userID int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[userID]; ok {
		user.Active = active
	}
}

// UserLoginAttempts reads the persisted attempt counter; test hook.
func (s *Storage) UserLoginAttempts(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[userID]; ok {
		return user.LoginAttempts
	}
	return 0
}

func (s *Storage) CreateLoginSessionTx(_ context.Context, userID int64, pair models.TokenPair) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return 0, storage.ErrUserNotFound
	}
	if err := s.checkTokenUnique(pair.AccessToken, pair.RefreshToken, 0); err != nil {
		return 0, err
	}

	user.LoginAttempts = 0

	s.nextSessID++
	session := &models.Session{
		ID:                 s.nextSessID,
		UserID:             userID,
		AccessToken:        pair.AccessToken,
		AccessTokenExpiry:  pair.AccessTokenExpiry,
		RefreshToken:       pair.RefreshToken,
		RefreshTokenExpiry: pair.RefreshTokenExpiry,
	}
	s.sessions[session.ID] = session

	return session.ID, nil
}

func (s *Storage) GetSessionWithUser(
	_ context.Context,
	sessionID int64,
	accessToken, refreshToken string,
) (*models.SessionUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.AccessToken != accessToken || session.RefreshToken != refreshToken {
		return nil, storage.ErrSessionNotFound
	}
	return s.joinUser(session)
}

func (s *Storage) GetSessionByAccessToken(_ context.Context, accessToken string) (*models.SessionUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		if session.AccessToken == accessToken {
			return s.joinUser(session)
		}
	}
	return nil, storage.ErrSessionNotFound
}

func (s *Storage) RotateSessionTokens(
	_ context.Context,
	sessionID, userID int64,
	oldAccessToken, oldRefreshToken string,
	pair models.TokenPair,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID ||
		session.AccessToken != oldAccessToken || session.RefreshToken != oldRefreshToken {
		return storage.ErrSessionNotFound
	}
	if err := s.checkTokenUnique(pair.AccessToken, pair.RefreshToken, sessionID); err != nil {
		return err
	}

	session.AccessToken = pair.AccessToken
	session.AccessTokenExpiry = pair.AccessTokenExpiry
	session.RefreshToken = pair.RefreshToken
	session.RefreshTokenExpiry = pair.RefreshTokenExpiry
	return nil
}

func (s *Storage) DeleteSession(_ context.Context, sessionID int64, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.AccessToken != accessToken {
		return storage.ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *Storage) CreateTask(_ context.Context, task models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTaskID++
	task.ID = s.nextTaskID
	stored := task
	s.tasks[task.ID] = &stored

	copied := stored
	return &copied, nil
}

func (s *Storage) GetTask(_ context.Context, userID, taskID int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, storage.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *Storage) ListTasks(_ context.Context, userID int64, completed *bool) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]models.Task, 0)
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if completed != nil && task.Completed != *completed {
			continue
		}
		tasks = append(tasks, *task)
	}
	sortTasks(tasks)
	return tasks, nil
}

func (s *Storage) CountTasks(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, task := range s.tasks {
		if task.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *Storage) ListTasksPage(_ context.Context, userID int64, limit, offset int64) ([]models.Task, error) {
	all, err := s.ListTasks(context.Background(), userID, nil)
	if err != nil {
		return nil, err
	}
	if offset >= int64(len(all)) {
		return []models.Task{}, nil
	}
	end := offset + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[offset:end], nil
}

func (s *Storage) UpdateTask(_ context.Context, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return storage.ErrTaskNotFound
	}
	stored := task
	s.tasks[task.ID] = &stored
	return nil
}

func (s *Storage) DeleteTask(_ context.Context, userID, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return storage.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

func (s *Storage) joinUser(session *models.Session) (*models.SessionUser, error) {
	user, ok := s.users[session.UserID]
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	return &models.SessionUser{
		Session:       *session,
		Username:      user.Username,
		FullName:      user.FullName,
		Active:        user.Active,
		LoginAttempts: user.LoginAttempts,
	}, nil
}

func (s *Storage) checkTokenUnique(accessToken, refreshToken string, exceptID int64) error {
	for id, session := range s.sessions {
		if id == exceptID {
			continue
		}
		if session.AccessToken == accessToken || session.RefreshToken == refreshToken {
			return storage.ErrTokenConflict
		}
	}
	return nil
}

func sortTasks(tasks []models.Task) {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
}

var _ storage.Storage = (*Storage)(nil)
