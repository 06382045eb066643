package auth

import (
	"context"
	"testing"
	"time"

	"github.com/mkravets/busreservation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

const testSecret = "test-secret"

func TestAuthService_Register_Success(t *testing.T) {
	users := &MockUserRepository{}
	service := NewAuthService(users, testSecret, time.Hour)
	ctx := context.Background()

	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 7
		}).Return(nil).Once()

	user, err := service.Register(ctx, RegisterInput{
		Username: "  rider  ",
		Email:    "rider@example.com",
		Password: "correct horse",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "rider", user.Username)
	assert.Equal(t, domain.UserRoleCustomer, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
	users.AssertExpectations(t)
}

func TestAuthService_Register_ValidationErrors(t *testing.T) {
	users := &MockUserRepository{}
	service := NewAuthService(users, testSecret, time.Hour)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input RegisterInput
	}{
		{"empty username", RegisterInput{Username: " ", Email: "a@b.c", Password: "longenough"}},
		{"empty email", RegisterInput{Username: "rider", Email: "", Password: "longenough"}},
		{"short password", RegisterInput{Username: "rider", Email: "a@b.c", Password: "short"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := service.Register(ctx, tc.input)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	users.AssertNotCalled(t, "Create")
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	users := &MockUserRepository{}
	service := NewAuthService(users, testSecret, time.Hour)
	ctx := context.Background()

	users.On("Create", ctx, mock.Anything).Return(domain.ErrUserExists).Once()

	user, err := service.Register(ctx, RegisterInput{
		Username: "rider",
		Email:    "rider@example.com",
		Password: "correct horse",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestAuthService_Login_Success(t *testing.T) {
	users := &MockUserRepository{}
	service := NewAuthService(users, testSecret, time.Hour)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	assert.NoError(t, err)

	stored := &domain.User{ID: 7, Username: "rider", PasswordHash: string(hash), Role: domain.UserRoleCustomer}
	users.On("GetByUsername", ctx, "rider").Return(stored, nil).Once()

	token, user, err := service.Login(ctx, "rider", "correct horse")

	assert.NoError(t, err)
	assert.Equal(t, stored, user)
	assert.NotEmpty(t, token)

	claims, err := ParseToken(testSecret, token)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, domain.UserRoleCustomer, claims.Role)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	users := &MockUserRepository{}
	service := NewAuthService(users, testSecret, time.Hour)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	stored := &domain.User{ID: 7, Username: "rider", PasswordHash: string(hash)}

	users.On("GetByUsername", ctx, "rider").Return(stored, nil).Once()
	users.On("GetByUsername", ctx, "ghost").Return(nil, domain.ErrUserNotFound).Once()

	_, _, err := service.Login(ctx, "rider", "wrong password")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	// Unknown user yields the same error as a wrong password.
	_, _, err = service.Login(ctx, "ghost", "whatever")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
}
