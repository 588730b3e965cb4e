package service

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/dekarrin/grammarlab/server/serr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost used across this codebase's other services;
// kept as a constant here rather than threaded through config because
// lowering it is never a configuration a deployer should be offered.
const bcryptCost = 14

// CreateUser creates a new account permitted to submit grammars. Returns the
// newly-created user as it exists after creation.
//
// The returned error, if non-nil, will match serr.ErrAlreadyExists if the
// username is taken, serr.ErrBadArgument if username or password is blank,
// or serr.ErrDB for an unexpected persistence failure.
func (svc Service) CreateUser(ctx context.Context, username, password string, role dao.Role) (dao.User, error) {
	if username == "" {
		return dao.User{}, serr.New("username cannot be blank", serr.ErrBadArgument)
	}
	if password == "" {
		return dao.User{}, serr.New("password cannot be blank", serr.ErrBadArgument)
	}

	_, err := svc.DB.Users().GetByUsername(ctx, username)
	if err == nil {
		return dao.User{}, serr.New("a user with that username already exists", serr.ErrAlreadyExists)
	} else if !errors.Is(err, dao.ErrNotFound) {
		return dao.User{}, serr.WrapDB("", err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		if err == bcrypt.ErrPasswordTooLong {
			return dao.User{}, serr.New("password is too long", serr.ErrBadArgument)
		}
		return dao.User{}, serr.New("password could not be encrypted", err)
	}

	newUser := dao.User{
		Username: username,
		Password: base64.StdEncoding.EncodeToString(passHash),
		Role:     role,
	}

	user, err := svc.DB.Users().Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.User{}, serr.New("a user with that username already exists", serr.ErrAlreadyExists)
		}
		return dao.User{}, serr.WrapDB("could not create user", err)
	}

	return user, nil
}

// GetUser returns the user with the given ID.
func (svc Service) GetUser(ctx context.Context, id string) (dao.User, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.User{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	user, err := svc.DB.Users().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrNotFound
		}
		return dao.User{}, serr.WrapDB("could not get user", err)
	}

	return user, nil
}

// Login verifies username/password and returns the matching user on success.
//
// The returned error, if non-nil, will match serr.ErrBadCredentials if the
// username does not exist or the password does not match.
func (svc Service) Login(ctx context.Context, username, password string) (dao.User, error) {
	user, err := svc.DB.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrBadCredentials
		}
		return dao.User{}, serr.WrapDB("", err)
	}

	storedHash, err := base64.StdEncoding.DecodeString(user.Password)
	if err != nil {
		return dao.User{}, serr.New("stored password hash is corrupt", err)
	}

	if err := bcrypt.CompareHashAndPassword(storedHash, []byte(password)); err != nil {
		return dao.User{}, serr.ErrBadCredentials
	}

	return user, nil
}

// Logout invalidates every JWT issued to the user with the given ID prior to
// now, by bumping their LastLogoutTime - a signing key component every
// Generate/Validate call in package auth mixes in, so old tokens stop
// validating the instant this returns.
func (svc Service) Logout(ctx context.Context, id uuid.UUID) (dao.User, error) {
	user, err := svc.DB.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrNotFound
		}
		return dao.User{}, serr.WrapDB("", err)
	}

	user.LastLogoutTime = time.Now()

	updated, err := svc.DB.Users().Update(ctx, id, user)
	if err != nil {
		return dao.User{}, serr.WrapDB("could not log out user", err)
	}
	return updated, nil
}
