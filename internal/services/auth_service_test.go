package services

import (
	"database/sql/driver"
	"net/http"
	"regexp"
	"testing"

	"harcama/internal/apperrors"
	"harcama/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthMock(t *testing.T) (*AuthService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewAuthService(db, zerolog.Nop()), mock
}

func TestRegisterValidation(t *testing.T) {
	svc, mock := newAuthMock(t)

	tests := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"missing name", models.RegisterRequest{Email: "ana@x.com", Password: "secret1"}},
		{"missing email", models.RegisterRequest{Name: "Ana", Password: "secret1"}},
		{"missing password", models.RegisterRequest{Name: "Ana", Email: "ana@x.com"}},
		{"short password", models.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Register(&tt.req)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, apperrors.Status(err))
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterCreatesUserAndBalance(t *testing.T) {
	svc, mock := newAuthMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)")).
		WithArgs("Ana", "ana@x.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO balances (user_id, current_balance) VALUES (?, 0)")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Register(&models.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	svc, mock := newAuthMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)")).
		WithArgs("Ana", "ana@x.com", sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ana@x.com' for key 'users.email'"})
	mock.ExpectRollback()

	err := svc.Register(&models.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperrors.Status(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRollsBackWhenBalanceInitFails(t *testing.T) {
	svc, mock := newAuthMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)")).
		WithArgs("Ana", "ana@x.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO balances (user_id, current_balance) VALUES (?, 0)")).
		WithArgs(5).
		WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})
	mock.ExpectRollback()

	err := svc.Register(&models.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.Status(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginSuccess(t *testing.T) {
	svc, mock := newAuthMock(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash FROM users WHERE email = ? LIMIT 1")).
		WithArgs("ana@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash"}).
			AddRow(5, "Ana", "ana@x.com", string(hash)))

	user, err := svc.Login(&models.LoginRequest{Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, 5, user.ID)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "ana@x.com", user.Email)
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	svc, mock := newAuthMock(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash FROM users WHERE email = ? LIMIT 1")).
		WithArgs("ana@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash"}).
			AddRow(5, "Ana", "ana@x.com", string(hash)))

	_, wrongPasswordErr := svc.Login(&models.LoginRequest{Email: "ana@x.com", Password: "wrong"})
	require.Error(t, wrongPasswordErr)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash FROM users WHERE email = ? LIMIT 1")).
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash"}))

	_, unknownEmailErr := svc.Login(&models.LoginRequest{Email: "nobody@x.com", Password: "secret1"})
	require.Error(t, unknownEmailErr)

	// The caller cannot tell an unknown email from a wrong password.
	assert.Equal(t, http.StatusUnauthorized, apperrors.Status(wrongPasswordErr))
	assert.Equal(t, http.StatusUnauthorized, apperrors.Status(unknownEmailErr))
	assert.Equal(t, apperrors.ClientMessage(unknownEmailErr), apperrors.ClientMessage(wrongPasswordErr))
}

func TestLoginValidation(t *testing.T) {
	svc, mock := newAuthMock(t)

	_, err := svc.Login(&models.LoginRequest{Email: "", Password: "secret1"})
	assert.Equal(t, http.StatusBadRequest, apperrors.Status(err))

	_, err = svc.Login(&models.LoginRequest{Email: "ana@x.com", Password: ""})
	assert.Equal(t, http.StatusBadRequest, apperrors.Status(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterNeverStoresPlaintext(t *testing.T) {
	svc, mock := newAuthMock(t)

	var storedHash string
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)")).
		WithArgs("Ana", "ana@x.com", hashCaptor{&storedHash}).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO balances (user_id, current_balance) VALUES (?, 0)")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Register(&models.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", storedHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("secret1")))
}

// hashCaptor records the bound password_hash argument for inspection.
type hashCaptor struct {
	dst *string
}

func (c hashCaptor) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	*c.dst = s
	return true
}
