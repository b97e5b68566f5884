package services

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/linguabridge/internal/common"
	"github.com/dmitrijs2005/linguabridge/internal/dbx"
	"github.com/dmitrijs2005/linguabridge/internal/server/auth"
	"github.com/dmitrijs2005/linguabridge/internal/server/config"
	"github.com/dmitrijs2005/linguabridge/internal/server/models"
	translationsrepo "github.com/dmitrijs2005/linguabridge/internal/server/repositories/translations"
	usersrepo "github.com/dmitrijs2005/linguabridge/internal/server/repositories/users"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   testSecret,
		AccessTokenValidityDuration: time.Hour,
		MaxAudioBytes:               1024,
	}
}

// --- users ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	byMail map[string]*models.User

	findErr   error
	createErr error
	lookups   int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byMail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byMail[u.Email]; ok {
		return nil, common.ErrDuplicateKey
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	f.byMail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byMail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) FindByIDAndEmail(ctx context.Context, id, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byMail[email]
	if !ok || u.ID != id {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

// --- translations ---

type fakeTranslationsRepo struct {
	mu      sync.Mutex
	created []*models.TranslationSession

	createErr error
	listErr   error
	listLimit int
}

func (f *fakeTranslationsRepo) Create(ctx context.Context, s *models.TranslationSession) (*models.TranslationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now()
	f.created = append(f.created, s)
	return s, nil
}

func (f *fakeTranslationsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.TranslationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listLimit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.TranslationSession
	for i := len(f.created) - 1; i >= 0 && len(out) < limit; i-- {
		if f.created[i].UserID == userID {
			out = append(out, f.created[i])
		}
	}
	return out, nil
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTranslationsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), t: &fakeTranslationsRepo{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error         { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository               { return m.u }
func (m *fakeRepoManager) Translations(db dbx.DBTX) translationsrepo.Repository { return m.t }

// --- hasher ---

type countingHasher struct {
	*auth.PasswordHasher
	verifies atomic.Int32
	hashes   atomic.Int32

	// the next failHashes calls to Hash return errHashFailed
	failHashes atomic.Int32
}

var errHashFailed = errors.New("hash failed")

func newCountingHasher() *countingHasher {
	return &countingHasher{PasswordHasher: auth.NewPasswordHasher(bcrypt.MinCost, 4)}
}

func (h *countingHasher) Hash(ctx context.Context, password string) (string, error) {
	h.hashes.Add(1)
	if h.failHashes.Add(-1) >= 0 {
		return "", errHashFailed
	}
	h.failHashes.Store(0)
	return h.PasswordHasher.Hash(ctx, password)
}

func (h *countingHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	h.verifies.Add(1)
	return h.PasswordHasher.Verify(ctx, password, hash)
}

// --- upstream ---

type fakeTranscriber struct {
	out      string
	err      error
	gotPath  string
	gotLang  string
	gotBytes []byte
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string, language string) (string, error) {
	f.gotPath = path
	f.gotLang = language
	f.gotBytes, _ = os.ReadFile(path)
	return f.out, f.err
}

type fakeTranslator struct {
	out       string
	err       error
	calls     int
	gotText   string
	gotTarget string
	gotSource string
}

func (f *fakeTranslator) Translate(ctx context.Context, text, target, source string) (string, error) {
	f.calls++
	f.gotText, f.gotTarget, f.gotSource = text, target, source
	return f.out, f.err
}

type fakeArchive struct {
	key     string
	err     error
	gotPath string
	gotType string
}

func (f *fakeArchive) Put(ctx context.Context, path string, contentType string) (string, error) {
	f.gotPath = path
	f.gotType = contentType
	return f.key, f.err
}
