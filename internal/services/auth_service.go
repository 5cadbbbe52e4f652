package services

import (
	"database/sql"
	"errors"

	"harcama/internal/apperrors"
	"harcama/internal/models"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const mysqlErrDuplicateEntry = 1062

type AuthService struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewAuthService(db *sql.DB, logger zerolog.Logger) *AuthService {
	return &AuthService{
		db:     db,
		logger: logger,
	}
}

// Register creates the user and initializes their balance row to 0 in one
// transaction. Plaintext passwords are never persisted.
func (s *AuthService) Register(req *models.RegisterRequest) error {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.Validationf("name, email, and password are required")
	}
	if len(req.Password) < 6 {
		return apperrors.Validationf("password must be at least 6 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return apperrors.Dependency("failed to hash password", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting registration transaction")
		return apperrors.Dependency("failed to start transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)",
		req.Name, req.Email, string(hashedPassword),
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return apperrors.Conflictf("email is already registered")
		}
		s.logger.Error().Err(err).Msg("Error creating user")
		return apperrors.Dependency("failed to create user", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return apperrors.Dependency("failed to get user ID", err)
	}

	_, err = tx.Exec("INSERT INTO balances (user_id, current_balance) VALUES (?, 0)", userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Error initializing balance")
		return apperrors.Dependency("failed to initialize balance", err)
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Error committing registration")
		return apperrors.Dependency("failed to commit registration", err)
	}

	s.logger.Info().Int64("user_id", userID).Str("email", req.Email).Msg("User registered successfully")
	return nil
}

// Login verifies the credentials and returns the identity. Unknown email
// and wrong password produce the same error, so the response never reveals
// whether the email exists. No session token is issued.
func (s *AuthService) Login(req *models.LoginRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperrors.Validationf("email and password are required")
	}

	var user models.User
	var passwordHash string

	err := s.db.QueryRow(
		"SELECT id, name, email, password_hash FROM users WHERE email = ? LIMIT 1",
		req.Email,
	).Scan(&user.ID, &user.Name, &user.Email, &passwordHash)

	if err == sql.ErrNoRows {
		return nil, apperrors.Authenticationf("invalid email or password")
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error querying user")
		return nil, apperrors.Dependency("failed to query user", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password))
	if err != nil {
		s.logger.Warn().Str("email", req.Email).Msg("Failed authentication attempt")
		return nil, apperrors.Authenticationf("invalid email or password")
	}

	s.logger.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("User authenticated successfully")
	return &user, nil
}
