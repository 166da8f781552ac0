package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(id uint, username, email string) *models.User {
	if id == 0 {
		id = 1
	}
	if username == "" {
		username = "testuser"
	}
	if email == "" {
		email = "test@example.com"
	}

	return &models.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "hashed_password_123",
		FullName:     "Test User",
		Role:         models.PlatformUser,
		IsOnline:     false,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// CreateTestServer creates a test server owned by ownerID
func (h *TestHelper) CreateTestServer(id, ownerID uint, name string) *models.Server {
	if id == 0 {
		id = 1
	}
	if ownerID == 0 {
		ownerID = 1
	}
	if name == "" {
		name = "Test Server"
	}

	return &models.Server{
		ID:          id,
		Name:        name,
		Description: "A test server",
		OwnerID:     ownerID,
		IsPublic:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// CreateTestMessage creates a test server message with default values
func (h *TestHelper) CreateTestMessage(id, serverID, authorID uint, content string) *models.ServerMessage {
	if id == 0 {
		id = 1
	}
	if serverID == 0 {
		serverID = 1
	}
	if authorID == 0 {
		authorID = 1
	}
	if content == "" {
		content = "Test message"
	}

	return &models.ServerMessage{
		ID:        id,
		ClientID:  fmt.Sprintf("client-%d", id),
		ServerID:  serverID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Author: models.User{
			ID:       authorID,
			Username: "author",
			Email:    "author@example.com",
		},
	}
}

// SetupTestEnv sets up required environment variables for testing
func (h *TestHelper) SetupTestEnv() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	os.Setenv("DATABASE_URL", "")
	os.Setenv("PASSWORD_MIN_LENGTH", "10")
}

// TeardownTestEnv cleans up environment variables after testing
func (h *TestHelper) TeardownTestEnv() {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("PASSWORD_MIN_LENGTH")
}

// AssertError checks if an error occurred when it should (or shouldn't)
func (h *TestHelper) AssertError(err error, shouldErr bool, testName string) {
	if (err != nil) != shouldErr {
		if shouldErr {
			h.t.Errorf("%s: expected error but got nil", testName)
		} else {
			h.t.Errorf("%s: unexpected error: %v", testName, err)
		}
	}
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(got, want interface{}, testName string) {
	if got != want {
		h.t.Errorf("%s: got %v, want %v", testName, got, want)
	}
}
