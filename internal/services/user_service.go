package services

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/policy"
	"github.com/gigboard/engine/internal/repository"
	appErr "github.com/gigboard/engine/pkg/errors"
	"github.com/gigboard/engine/pkg/logger"
)

const invalidCredentials = "invalid username or password"

type UserService interface {
	Register(ctx context.Context, username, password string, role models.Role) (*models.User, error)
	// Login fails with the same unauthorized error for an unknown user and a wrong password.
	Login(ctx context.Context, username, password string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, userID uint, input *UserUpdate) error
	Delete(ctx context.Context, userID uint) error
	// EnsureSuperadmin creates the superadmin account if none exists. An empty
	// password is replaced by a generated one, which is returned.
	EnsureSuperadmin(ctx context.Context, username, password string) (*models.User, string, error)
	// ResolveActor loads the account behind a token. A deleted account is unauthorized.
	ResolveActor(ctx context.Context, userID uint) (policy.Actor, error)
}

// UserUpdate lists the fields to change. Nil or blank fields are left alone.
type UserUpdate struct {
	Username *string
	Password *string
	Role     *models.Role
}

type userService struct {
	userRepo repository.UserRepository
	cost     int
	dummy    func() []byte
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return newUserService(userRepo, bcrypt.DefaultCost)
}

func newUserService(userRepo repository.UserRepository, cost int) *userService {
	return &userService{
		userRepo: userRepo,
		cost:     cost,
		dummy: sync.OnceValue(func() []byte {
			h, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
			return h
		}),
	}
}

var _ UserService = (*userService)(nil)

func (s *userService) Register(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || role == "" {
		return nil, appErr.New(appErr.CodeInvalid, "username, password and role are required")
	}
	if err := checkAssignableRole(role); err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     username,
		Email:        models.EmailFor(username),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if appErr.IsCode(err, appErr.CodeConflict) {
			return nil, appErr.Wrap(err, appErr.CodeConflict, "username or email already exists")
		}
		return nil, err
	}
	logger.Ctx(ctx).Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, appErr.New(appErr.CodeInvalid, "username and password are required")
	}
	var user models.User
	if err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username), &user); err != nil {
		if !appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, err
		}
		// Spend the same work as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, appErr.New(appErr.CodeUnauthorized, invalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, appErr.New(appErr.CodeUnauthorized, invalidCredentials)
	}
	return &user, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) Update(ctx context.Context, userID uint, input *UserUpdate) error {
	if err := s.loadMutable(ctx, userID); err != nil {
		return err
	}
	changes, err := s.changes(input)
	if err != nil {
		return err
	}
	n, err := s.userRepo.UpdateUnprotected(ctx, userID, *changes)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.loadMutable(ctx, userID)
	}
	logger.Ctx(ctx).Info("user updated", zap.Uint("user_id", userID))
	return nil
}

func (s *userService) Delete(ctx context.Context, userID uint) error {
	if err := s.loadMutable(ctx, userID); err != nil {
		return err
	}
	owned, err := s.userRepo.CountProjectsOwned(ctx, userID)
	if err != nil {
		return err
	}
	if owned > 0 {
		return appErr.Newf(appErr.CodeConflict, "user still owns %d project(s)", owned)
	}
	n, err := s.userRepo.DeleteUnprotected(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.loadMutable(ctx, userID)
	}
	logger.Ctx(ctx).Info("user deleted", zap.Uint("user_id", userID))
	return nil
}

func (s *userService) EnsureSuperadmin(ctx context.Context, username, password string) (*models.User, string, error) {
	existing, err := s.userRepo.FindSuperadmin(ctx)
	if err == nil {
		return existing, "", nil
	}
	if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, "", err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = string(models.RoleSuperadmin)
	}
	generated := ""
	if password == "" {
		generated = strings.ReplaceAll(uuid.NewString(), "-", "")
		password = generated
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, "", err
	}
	user := &models.User{
		Username:     username,
		Email:        models.EmailFor(username),
		PasswordHash: hash,
		Role:         models.RoleSuperadmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}
	logger.Ctx(ctx).Info("superadmin created", zap.Uint("user_id", user.ID), zap.String("username", username))
	return user, generated, nil
}

func (s *userService) ResolveActor(ctx context.Context, userID uint) (policy.Actor, error) {
	var u models.User
	if err := s.userRepo.GetByID(ctx, userID, &u); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return policy.Actor{}, appErr.New(appErr.CodeUnauthorized, "account no longer exists")
		}
		return policy.Actor{}, err
	}
	return policy.Actor{ID: u.ID, Role: u.Role}, nil
}

// loadMutable resolves not found before the superadmin guard.
func (s *userService) loadMutable(ctx context.Context, userID uint) error {
	var target models.User
	if err := s.userRepo.GetByID(ctx, userID, &target); err != nil {
		return err
	}
	return policy.CheckUserMutable(&target)
}

func (s *userService) changes(in *UserUpdate) (*repository.UserChanges, error) {
	var c repository.UserChanges
	if in == nil {
		return nil, appErr.New(appErr.CodeInvalid, "no fields to update")
	}
	if in.Username != nil {
		if u := strings.TrimSpace(*in.Username); u != "" {
			c.Username = &u
		}
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		c.PasswordHash = &hash
	}
	if in.Role != nil && *in.Role != "" {
		if err := checkAssignableRole(*in.Role); err != nil {
			return nil, err
		}
		role := *in.Role
		c.Role = &role
	}
	if c.Username == nil && c.PasswordHash == nil && c.Role == nil {
		return nil, appErr.New(appErr.CodeInvalid, "no fields to update")
	}
	return &c, nil
}

func (s *userService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInvalid, "password cannot be used")
	}
	return string(h), nil
}

// checkAssignableRole keeps the superadmin role out of reach of register and update.
func checkAssignableRole(role models.Role) error {
	if role == models.RoleSuperadmin {
		return appErr.New(appErr.CodeForbidden, "the superadmin role cannot be assigned")
	}
	if !role.Valid() {
		return appErr.Newf(appErr.CodeInvalid, "unknown role %q", role)
	}
	return nil
}
