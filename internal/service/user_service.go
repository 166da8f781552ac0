package service

import (
	"errors"
	"strconv"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/repository"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepositoryInterface
}

func NewUserService(userRepo repository.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUser resolves a numeric id or a username to a profile.
func (s *UserService) GetUser(identifier string) (*models.User, error) {
	if id, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		return s.userRepo.FindByID(uint(id))
	}
	return s.userRepo.FindByUsername(identifier)
}

func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

type UpdateProfileInput struct {
	FullName *string `json:"full_name"`
	Avatar   *string `json:"avatar"`
}

func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = validation.TrimAndLimit(*input.FullName, 100)
	}
	if input.Avatar != nil {
		user.Avatar = validation.TrimAndLimit(*input.Avatar, 255)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SearchUsers(query string, limit int) ([]models.User, error) {
	if query == "" {
		return nil, errors.New("query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.userRepo.SearchUsers(query, limit)
}

// UsernameAvailable reports whether a username is valid and unclaimed.
func (s *UserService) UsernameAvailable(username string) (bool, error) {
	if !validation.ValidateUsername(username) {
		return false, errors.New("invalid username")
	}
	if _, err := s.userRepo.FindByUsername(validation.NormalizeUsername(username)); err == nil {
		return false, nil
	}
	return true, nil
}

func (s *UserService) SetOnline(userID uint, online bool) error {
	return s.userRepo.UpdateOnlineStatus(userID, online)
}
