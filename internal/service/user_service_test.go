package service

import (
	"errors"
	"testing"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
)

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.New("record not found")
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, errors.New("record not found")
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, errors.New("record not found")
}

func (m *MockUserRepository) Update(user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) UpdateOnlineStatus(userID uint, isOnline bool) error {
	if user, ok := m.users[userID]; ok {
		user.IsOnline = isOnline
		return nil
	}
	return errors.New("record not found")
}

func (m *MockUserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	var results []models.User
	count := 0
	for _, user := range m.users {
		if count >= limit {
			break
		}
		results = append(results, *user)
		count++
	}
	return results, nil
}

// Tests for UserService

func TestUsernameAvailable(t *testing.T) {
	mockRepo := NewMockUserRepository()
	userService := NewUserService(mockRepo)

	testUser := &models.User{
		Username: "existinguser",
		Email:    "test@example.com",
	}
	mockRepo.Create(testUser)

	tests := []struct {
		name      string
		username  string
		expected  bool
		shouldErr bool
	}{
		{"Available username", "newuser", true, false},
		{"Existing username", "existinguser", false, false},
		{"Empty username", "", false, true},
		{"Username with spaces", "  ", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := userService.UsernameAvailable(tt.username)
			if (err != nil) != tt.shouldErr {
				t.Errorf("UsernameAvailable(%q) error = %v, wantErr %v", tt.username, err, tt.shouldErr)
			}
			if result != tt.expected {
				t.Errorf("UsernameAvailable(%q) = %v, want %v", tt.username, result, tt.expected)
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	mockRepo := NewMockUserRepository()
	userService := NewUserService(mockRepo)

	testUser := &models.User{
		Username: "profileuser",
		Email:    "profile@example.com",
		FullName: "Old Name",
	}
	mockRepo.Create(testUser)

	newName := "New Name"
	newAvatar := "https://cdn.example.com/a.png"

	updated, err := userService.UpdateProfile(testUser.ID, UpdateProfileInput{
		FullName: &newName,
		Avatar:   &newAvatar,
	})
	if err != nil {
		t.Fatalf("UpdateProfile error = %v", err)
	}
	if updated.FullName != newName {
		t.Errorf("FullName = %q, want %q", updated.FullName, newName)
	}
	if updated.Avatar != newAvatar {
		t.Errorf("Avatar = %q, want %q", updated.Avatar, newAvatar)
	}

	// Fields left nil are untouched.
	updated, err = userService.UpdateProfile(testUser.ID, UpdateProfileInput{})
	if err != nil {
		t.Fatalf("UpdateProfile error = %v", err)
	}
	if updated.FullName != newName {
		t.Errorf("FullName changed unexpectedly: %q", updated.FullName)
	}

	if _, err := userService.UpdateProfile(999, UpdateProfileInput{FullName: &newName}); err == nil {
		t.Error("UpdateProfile for missing user should fail")
	}
}

func TestGetUser(t *testing.T) {
	mockRepo := NewMockUserRepository()
	userService := NewUserService(mockRepo)

	testUser := &models.User{
		Username: "lookupuser",
		Email:    "lookup@example.com",
	}
	mockRepo.Create(testUser)

	// Numeric identifier resolves by ID.
	byID, err := userService.GetUser("1")
	if err != nil {
		t.Fatalf("GetUser by id error = %v", err)
	}
	if byID.Username != "lookupuser" {
		t.Errorf("GetUser by id = %q, want lookupuser", byID.Username)
	}

	// Non-numeric identifier resolves by username.
	byName, err := userService.GetUser("lookupuser")
	if err != nil {
		t.Fatalf("GetUser by username error = %v", err)
	}
	if byName.ID != testUser.ID {
		t.Errorf("GetUser by username id = %d, want %d", byName.ID, testUser.ID)
	}

	if _, err := userService.GetUser("missing"); err == nil {
		t.Error("GetUser for unknown identifier should fail")
	}
}

func TestSetOnline(t *testing.T) {
	mockRepo := NewMockUserRepository()
	userService := NewUserService(mockRepo)

	testUser := &models.User{Username: "presence", Email: "presence@example.com"}
	mockRepo.Create(testUser)

	if err := userService.SetOnline(testUser.ID, true); err != nil {
		t.Fatalf("SetOnline error = %v", err)
	}
	if !mockRepo.users[testUser.ID].IsOnline {
		t.Error("user should be online")
	}

	if err := userService.SetOnline(testUser.ID, false); err != nil {
		t.Fatalf("SetOnline error = %v", err)
	}
	if mockRepo.users[testUser.ID].IsOnline {
		t.Error("user should be offline")
	}
}
