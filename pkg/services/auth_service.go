package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatd/pkg/models"
	"chatd/pkg/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

type AuthService interface {
	Signup(input models.CreateUser) (models.User, string, error)
	Signin(input models.SigninUser) (models.User, string, error)
	ListWorkspaceUsers(wsID int64) ([]models.ChatUser, error)
}

type authService struct {
	users     repository.AuthRepository
	ws        repository.WorkspaceRepository
	jwtSecret string
}

func NewAuthService(users repository.AuthRepository, ws repository.WorkspaceRepository, jwtSecret string) AuthService {
	return &authService{users: users, ws: ws, jwtSecret: jwtSecret}
}

// Signup creates the user, creating the workspace on first use. The first
// user of a workspace becomes its owner.
func (s *authService) Signup(input models.CreateUser) (models.User, string, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Fullname = strings.TrimSpace(input.Fullname)
	input.Workspace = strings.TrimSpace(input.Workspace)

	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return models.User{}, "", fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if input.Fullname == "" || input.Workspace == "" {
		return models.User{}, "", fmt.Errorf("%w: fullname and workspace are required", ErrInvalidInput)
	}
	if len(input.Password) < 6 {
		return models.User{}, "", fmt.Errorf("%w: password too short", ErrInvalidInput)
	}

	if _, err := s.users.FindByEmail(input.Email); err == nil {
		return models.User{}, "", ErrEmailExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", err
	}

	ws, err := s.ws.FindByName(input.Workspace)
	if errors.Is(err, sql.ErrNoRows) {
		ws, err = s.ws.Create(input.Workspace, 0)
	}
	if err != nil {
		return models.User{}, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", err
	}

	user, err := s.users.CreateUser(ws.ID, input.Fullname, input.Email, string(hashed))
	if err != nil {
		return models.User{}, "", err
	}

	if ws.OwnerID == 0 {
		if _, err := s.ws.UpdateOwner(ws.ID, user.ID); err != nil {
			return models.User{}, "", err
		}
	}

	token, err := s.issueToken(user)
	return user, token, err
}

func (s *authService) Signin(input models.SigninUser) (models.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	user, err := s.users.FindByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", ErrBadCredentials
	}
	if err != nil {
		return models.User{}, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return models.User{}, "", ErrBadCredentials
	}

	token, err := s.issueToken(user)
	return user, token, err
}

func (s *authService) ListWorkspaceUsers(wsID int64) ([]models.ChatUser, error) {
	return s.users.FetchAllByWorkspace(wsID)
}

func (s *authService) issueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"ws_id":    user.WsID,
		"fullname": user.Fullname,
		"exp":      time.Now().Add(tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
