package auth

import (
	"context"
	"errors"

	stdjwt "github.com/golang-jwt/jwt/v5"
	"github.com/sysdb/sysdbd/internal/auth/jwt"
	userservice "github.com/sysdb/sysdbd/internal/auth/user"
	usermodel "github.com/sysdb/sysdbd/internal/models/user"
	"github.com/sysdb/sysdbd/pkg/logger"
)

// fakeValidator is a hand-written stand-in for jwt.Validator: each
// test configures exactly the behavior it needs via the validate
// field instead of recording call expectations.
type fakeValidator struct {
	validate func(token string) (*jwt.Claims, error)
}

func (f *fakeValidator) Validate(token string) (*jwt.Claims, error) {
	if f.validate == nil {
		return nil, errors.New("fakeValidator: Validate not configured")
	}
	return f.validate(token)
}

func (f *fakeValidator) ValidateWithClaims(string, stdjwt.Claims) error {
	return errors.New("fakeValidator: ValidateWithClaims not configured")
}

// fakeUserService is a hand-written stand-in for
// internal/auth/user.Service, shared by the JWT and role middleware
// tests in this package.
type fakeUserService struct {
	getByID       func(ctx context.Context, id string) (*usermodel.User, error)
	hasPermission func(ctx context.Context, userID, permission string) (bool, error)
}

func (f *fakeUserService) Authenticate(context.Context, string, string) (*usermodel.User, error) {
	return nil, errors.New("fakeUserService: Authenticate not configured")
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*usermodel.User, error) {
	if f.getByID == nil {
		return nil, errors.New("fakeUserService: GetByID not configured")
	}
	return f.getByID(ctx, id)
}

func (f *fakeUserService) GetByUsername(context.Context, string) (*usermodel.User, error) {
	return nil, errors.New("fakeUserService: GetByUsername not configured")
}

func (f *fakeUserService) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	if f.hasPermission == nil {
		return false, errors.New("fakeUserService: HasPermission not configured")
	}
	return f.hasPermission(ctx, userID, permission)
}

func (f *fakeUserService) Create(context.Context, string, string, string, []string) (*usermodel.User, error) {
	return nil, errors.New("fakeUserService: Create not configured")
}

func (f *fakeUserService) Update(context.Context, string, func(*usermodel.User) error) (*usermodel.User, error) {
	return nil, errors.New("fakeUserService: Update not configured")
}

func (f *fakeUserService) Delete(context.Context, string) error {
	return errors.New("fakeUserService: Delete not configured")
}

func (f *fakeUserService) List(context.Context) ([]*usermodel.User, error) {
	return nil, errors.New("fakeUserService: List not configured")
}

func (f *fakeUserService) LoadUser(*usermodel.User) error {
	return errors.New("fakeUserService: LoadUser not configured")
}

func (f *fakeUserService) InitializeDefaultUsers(context.Context, []userservice.DefaultUserConfig) error {
	return nil
}

// fakeLogger is a hand-written stand-in for logger.Logger. It drops
// every message but counts warnings/errors so a test can assert one
// fired without pinning down the exact call arguments.
type fakeLogger struct {
	warnCount  int
	errorCount int
}

func (f *fakeLogger) Debug(string, ...logger.Field) {}
func (f *fakeLogger) Info(string, ...logger.Field)  {}
func (f *fakeLogger) Warn(string, ...logger.Field)  { f.warnCount++ }
func (f *fakeLogger) Error(string, ...logger.Field) { f.errorCount++ }
func (f *fakeLogger) Fatal(string, ...logger.Field) {}
func (f *fakeLogger) WithFields(...logger.Field) logger.Logger {
	return f
}
func (f *fakeLogger) WithError(error) logger.Logger { return f }
func (f *fakeLogger) Sync() error                   { return nil }
