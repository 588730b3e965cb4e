package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeUserRepo struct {
	users map[uuid.UUID]dao.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u dao.User) (dao.User, error) { return u, nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	u, ok := f.users[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	return u, nil
}
func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	return dao.User{}, dao.ErrNotFound
}
func (f *fakeUserRepo) GetAll(ctx context.Context) ([]dao.User, error) { return nil, nil }
func (f *fakeUserRepo) Update(ctx context.Context, id uuid.UUID, u dao.User) (dao.User, error) {
	f.users[id] = u
	return u, nil
}
func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	return dao.User{}, nil
}
func (f *fakeUserRepo) Close() error { return nil }

func TestGenerateAndValidate_RoundTrips(t *testing.T) {
	assert := assert.New(t)

	secret := []byte("test-secret-at-least-32-bytes-long!")
	u := dao.User{ID: uuid.New(), Password: "hashed", LastLogoutTime: time.Now()}
	repo := &fakeUserRepo{users: map[uuid.UUID]dao.User{u.ID: u}}

	tok, err := Generate(secret, u)
	assert.NoError(err)
	assert.NotEmpty(tok)

	validated, err := Validate(context.Background(), tok, secret, repo)
	assert.NoError(err)
	assert.Equal(u.ID, validated.ID)
}

func TestValidate_RejectsTokenAfterLogout(t *testing.T) {
	assert := assert.New(t)

	secret := []byte("test-secret-at-least-32-bytes-long!")
	u := dao.User{ID: uuid.New(), Password: "hashed", LastLogoutTime: time.Now()}
	repo := &fakeUserRepo{users: map[uuid.UUID]dao.User{u.ID: u}}

	tok, err := Generate(secret, u)
	assert.NoError(err)

	loggedOut := u
	loggedOut.LastLogoutTime = time.Now().Add(time.Minute)
	repo.users[u.ID] = loggedOut

	_, err = Validate(context.Background(), tok, secret, repo)
	assert.Error(err)
}

func TestGet_ParsesBearerHeader(t *testing.T) {
	assert := assert.New(t)

	req, err := http.NewRequest(http.MethodGet, "/", nil)
	assert.NoError(err)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")

	tok, err := Get(req)
	assert.NoError(err)
	assert.Equal("abc.def.ghi", tok)
}

func TestGet_RejectsMissingHeader(t *testing.T) {
	assert := assert.New(t)

	req, err := http.NewRequest(http.MethodGet, "/", nil)
	assert.NoError(err)

	_, err = Get(req)
	assert.Error(err)
}
