package service

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// MockRefreshTokenRepository is a mock implementation for testing
type MockRefreshTokenRepository struct {
	tokens map[string]*models.RefreshToken
}

func NewMockRefreshTokenRepository() *MockRefreshTokenRepository {
	return &MockRefreshTokenRepository{
		tokens: make(map[string]*models.RefreshToken),
	}
}

func (m *MockRefreshTokenRepository) Create(token *models.RefreshToken) error {
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *MockRefreshTokenRepository) FindValidByHash(hash string) (*models.RefreshToken, error) {
	token, ok := m.tokens[hash]
	if !ok {
		return nil, errors.New("record not found")
	}
	if time.Now().After(token.ExpiresAt) {
		return nil, errors.New("token expired")
	}
	return token, nil
}

func (m *MockRefreshTokenRepository) RevokeByHash(hash string) error {
	delete(m.tokens, hash)
	return nil
}

// Tests for AuthService

func TestRegister(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key-12345")

	mockUserRepo := NewMockUserRepository()
	mockRefreshTokenRepo := NewMockRefreshTokenRepository()
	authService := NewAuthService(mockUserRepo, mockRefreshTokenRepo)

	existing := &models.User{
		Username:     "taken",
		Email:        "duplicate@example.com",
		PasswordHash: "x",
	}
	mockUserRepo.Create(existing)

	tests := []struct {
		name      string
		input     RegisterInput
		shouldErr bool
	}{
		{
			name: "Valid registration",
			input: RegisterInput{
				Username: "john_doe",
				Email:    "john@example.com",
				Password: "securepassword123",
				FullName: "John Doe",
			},
			shouldErr: false,
		},
		{
			name: "Duplicate email",
			input: RegisterInput{
				Username: "jane_doe",
				Email:    "duplicate@example.com",
				Password: "securepassword123",
			},
			shouldErr: true,
		},
		{
			name: "Duplicate username",
			input: RegisterInput{
				Username: "taken",
				Email:    "fresh@example.com",
				Password: "securepassword123",
			},
			shouldErr: true,
		},
		{
			name: "Invalid email",
			input: RegisterInput{
				Username: "someone",
				Email:    "not-an-email",
				Password: "securepassword123",
			},
			shouldErr: true,
		},
		{
			name: "Short password",
			input: RegisterInput{
				Username: "someone",
				Email:    "someone@example.com",
				Password: "short",
			},
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Register(tt.input)
			if (err != nil) != tt.shouldErr {
				t.Fatalf("Register() error = %v, wantErr %v", err, tt.shouldErr)
			}
			if err != nil {
				return
			}
			if result.Token == "" || result.RefreshToken == "" {
				t.Error("Register() should issue both tokens")
			}
			if result.User.Role != models.PlatformUser {
				t.Errorf("new user role = %q, want %q", result.User.Role, models.PlatformUser)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key-12345")

	mockUserRepo := NewMockUserRepository()
	mockRefreshTokenRepo := NewMockRefreshTokenRepository()
	authService := NewAuthService(mockUserRepo, mockRefreshTokenRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correcthorse123"), bcrypt.DefaultCost)
	mockUserRepo.Create(&models.User{
		Username:     "trader",
		Email:        "trader@example.com",
		PasswordHash: string(hash),
		Role:         models.PlatformUser,
	})

	tests := []struct {
		name      string
		input     LoginInput
		shouldErr bool
	}{
		{"Valid login", LoginInput{Email: "trader@example.com", Password: "correcthorse123"}, false},
		{"Wrong password", LoginInput{Email: "trader@example.com", Password: "wrong"}, true},
		{"Unknown email", LoginInput{Email: "nobody@example.com", Password: "correcthorse123"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Login(tt.input)
			if (err != nil) != tt.shouldErr {
				t.Fatalf("Login() error = %v, wantErr %v", err, tt.shouldErr)
			}
			if err == nil && result.Token == "" {
				t.Error("Login() should issue an access token")
			}
		})
	}
}

func TestRefreshSession(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key-12345")

	mockUserRepo := NewMockUserRepository()
	mockRefreshTokenRepo := NewMockRefreshTokenRepository()
	authService := NewAuthService(mockUserRepo, mockRefreshTokenRepo)

	session, err := authService.Register(RegisterInput{
		Username: "refresher",
		Email:    "refresher@example.com",
		Password: "securepassword123",
	})
	if err != nil {
		t.Fatalf("Register error = %v", err)
	}

	rotated, err := authService.Refresh(session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh error = %v", err)
	}
	if rotated.RefreshToken == session.RefreshToken {
		t.Error("Refresh should rotate the refresh token")
	}

	// The presented token is single-use.
	if _, err := authService.Refresh(session.RefreshToken); err == nil {
		t.Error("reused refresh token should be rejected")
	}

	if _, err := authService.Refresh("garbage"); err == nil {
		t.Error("unknown refresh token should be rejected")
	}
}

func TestLogout(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key-12345")

	mockUserRepo := NewMockUserRepository()
	mockRefreshTokenRepo := NewMockRefreshTokenRepository()
	authService := NewAuthService(mockUserRepo, mockRefreshTokenRepo)

	session, err := authService.Register(RegisterInput{
		Username: "leaver",
		Email:    "leaver@example.com",
		Password: "securepassword123",
	})
	if err != nil {
		t.Fatalf("Register error = %v", err)
	}

	if err := authService.Logout(session.RefreshToken); err != nil {
		t.Fatalf("Logout error = %v", err)
	}

	if _, err := authService.Refresh(session.RefreshToken); err == nil {
		t.Error("refresh after logout should be rejected")
	}

	// Logging out with no token is a no-op.
	if err := authService.Logout(""); err != nil {
		t.Errorf("empty logout error = %v", err)
	}
}
