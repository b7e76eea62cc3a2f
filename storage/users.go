package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"ctiscope/core"

	"golang.org/x/crypto/bcrypt"
)

// userRecord is the on-disk shape of one user inside users.json.
type userRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserStore keeps dashboard users in a JSON document mapping string ids to
// records. The static admin account lives in configuration, never in the
// file, and always authenticates with id "0".
type UserStore struct {
	mu   sync.Mutex
	path string

	adminUsername     string
	adminPasswordHash string
	bcryptCost        int
}

// NewUserStore creates a user store backed by users.json under dataDir.
func NewUserStore(dataDir, adminUsername, adminPasswordHash string, bcryptCost int) *UserStore {
	return &UserStore{
		path:              filepath.Join(dataDir, "users.json"),
		adminUsername:     adminUsername,
		adminPasswordHash: adminPasswordHash,
		bcryptCost:        bcryptCost,
	}
}

func (s *UserStore) load() (map[string]userRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]userRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read user store: %w", err)
	}

	users := map[string]userRecord{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode user store: %w", err)
	}
	return users, nil
}

func (s *UserStore) save(users map[string]userRecord) error {
	data, err := json.MarshalIndent(users, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode user store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write user store: %w", err)
	}
	return nil
}

func (s *UserStore) adminUser() *core.User {
	return &core.User{
		ID:       core.AdminUserID,
		Username: s.adminUsername,
		Role:     core.RoleAdmin,
	}
}

// Authenticate verifies a username/password pair against the static admin
// account first, then the stored users.
func (s *UserStore) Authenticate(username, password string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if username == s.adminUsername {
		if bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)) == nil {
			return s.adminUser(), nil
		}
		return nil, ErrInvalidCredentials
	}

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	for id, rec := range users {
		if rec.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(rec.Password), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return &core.User{ID: id, Username: rec.Username, PasswordHash: rec.Password, Role: rec.Role}, nil
	}
	return nil, ErrInvalidCredentials
}

// Create adds a new user. Usernames must be unique, at least
// core.MinUsernameLength long and not the reserved admin name; passwords
// must be at least core.MinPasswordLength long. Unknown roles fall back to
// analyst. Ids are assigned as max existing id + 1.
func (s *UserStore) Create(username, password, role string) (*core.User, error) {
	if len(username) < core.MinUsernameLength {
		return nil, fmt.Errorf("username must be at least %d characters", core.MinUsernameLength)
	}
	if len(password) < core.MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", core.MinPasswordLength)
	}
	if role != core.RoleAdmin && role != core.RoleAnalyst {
		role = core.RoleAnalyst
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if username == s.adminUsername {
		return nil, ErrReservedUsername
	}

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range users {
		if rec.Username == username {
			return nil, ErrDuplicateUsername
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	maxID := 0
	for id := range users {
		if n, err := strconv.Atoi(id); err == nil && n > maxID {
			maxID = n
		}
	}
	id := strconv.Itoa(maxID + 1)

	users[id] = userRecord{Username: username, Password: string(hash), Role: role}
	if err := s.save(users); err != nil {
		return nil, err
	}
	return &core.User{ID: id, Username: username, PasswordHash: string(hash), Role: role}, nil
}

// SetPassword replaces a stored user's password hash. The static admin
// password is configuration, not data, so id "0" is rejected.
func (s *UserStore) SetPassword(id, newPassword string) error {
	if len(newPassword) < core.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", core.MinPasswordLength)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	rec, ok := users[id]
	if !ok {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	rec.Password = string(hash)
	users[id] = rec
	return s.save(users)
}

// Delete removes a stored user. The static admin cannot be deleted.
func (s *UserStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := users[id]; !ok {
		return ErrUserNotFound
	}
	delete(users, id)
	return s.save(users)
}

// GetByID resolves a user id, including the static admin id "0".
func (s *UserStore) GetByID(id string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == core.AdminUserID {
		return s.adminUser(), nil
	}

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	rec, ok := users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &core.User{ID: id, Username: rec.Username, PasswordHash: rec.Password, Role: rec.Role}, nil
}

// List returns the static admin followed by all stored users ordered by id.
func (s *UserStore) List() ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	out := []core.User{*s.adminUser()}
	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
	for _, id := range ids {
		rec := users[id]
		out = append(out, core.User{ID: id, Username: rec.Username, PasswordHash: rec.Password, Role: rec.Role})
	}
	return out, nil
}
