package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/iliyamo/osaka-airlines/internal/database"
	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/repository"
	"github.com/iliyamo/osaka-airlines/internal/utils"
)

var (
	loginPattern = regexp.MustCompile(`^[a-z0-9_.]{3,12}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{6,14}$`)
)

// Registration is the input of client sign-up and staff account creation.
type Registration struct {
	Login      string
	Password   string
	Phone      string
	FirstName  string
	MiddleName string
	LastName   string
	Role       model.Role
}

// AccountService manages users and their client profiles.
type AccountService struct {
	db         *sql.DB
	users      *repository.UserRepo
	clients    *repository.ClientRepo
	bcryptCost int
	log        logger.Logger
}

func NewAccountService(db *sql.DB, users *repository.UserRepo, clients *repository.ClientRepo, bcryptCost int, log logger.Logger) *AccountService {
	return &AccountService{db: db, users: users, clients: clients, bcryptCost: bcryptCost, log: log}
}

// Register creates a user. Clients also get their profile row in the same
// transaction. An empty role registers a client.
func (s *AccountService) Register(ctx context.Context, r Registration) (*model.User, error) {
	login := repository.NormalizeLogin(r.Login)
	if !loginPattern.MatchString(login) {
		return nil, invalid("login must be 3 to 12 characters of a-z, 0-9, '_' or '.'")
	}
	if err := utils.CheckPassword(r.Password); err != nil {
		return nil, invalid("%s", err.Error())
	}
	role := r.Role
	if role == "" {
		role = model.RoleClient
	}
	phone := strings.ReplaceAll(strings.TrimSpace(r.Phone), " ", "")
	if role == model.RoleClient && !phonePattern.MatchString(phone) {
		return nil, invalid("phone must be 6 to 14 digits, optionally prefixed with +")
	}

	hash, err := utils.HashPassword(r.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Login:        login,
		PasswordHash: hash,
		Role:         role,
		FirstName:    strings.TrimSpace(r.FirstName),
		MiddleName:   strings.TrimSpace(r.MiddleName),
		LastName:     strings.TrimSpace(r.LastName),
		IsActive:     true,
	}
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.users.CreateTx(ctx, tx, u); err != nil {
			return err
		}
		if role != model.RoleClient {
			return nil
		}
		return s.clients.CreateTx(ctx, tx, &model.Client{UserID: u.ID, Phone: phone})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", u.ID, "login", u.Login, "role", u.Role)
	return u, nil
}

// Authenticate checks a login/password pair. Unknown logins and wrong
// passwords are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	u, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive || u.Role == model.RoleFired {
		return nil, ErrAccountDisabled
	}
	return u, nil
}

// ActiveUser reloads a user for token refresh.
func (s *AccountService) ActiveUser(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive || u.Role == model.RoleFired {
		return nil, ErrAccountDisabled
	}
	return u, nil
}

func (s *AccountService) ListStaff(ctx context.Context) ([]model.User, error) {
	return s.users.ListStaff(ctx)
}

// AssignRole gives a staff account a new job. Clients cannot be turned
// into staff this way.
func (s *AccountService) AssignRole(ctx context.Context, userID uint64, role model.Role) error {
	if role == model.RoleClient {
		return invalid("client role cannot be assigned")
	}
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return err
	}
	s.log.Info("role assigned", "user_id", userID, "role", role)
	return nil
}
