package rest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/linguabridge/internal/common"
	"github.com/dmitrijs2005/linguabridge/internal/dbx"
	"github.com/dmitrijs2005/linguabridge/internal/logging"
	"github.com/dmitrijs2005/linguabridge/internal/server/config"
	"github.com/dmitrijs2005/linguabridge/internal/server/models"
	translationsrepo "github.com/dmitrijs2005/linguabridge/internal/server/repositories/translations"
	usersrepo "github.com/dmitrijs2005/linguabridge/internal/server/repositories/users"
	"github.com/dmitrijs2005/linguabridge/internal/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = testSecret
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.ShutdownTimeout = time.Second
	return cfg
}

// --- in-memory users store for end-to-end flows ---

type memUsers struct {
	mu     sync.Mutex
	byMail map[string]*models.User
	err    error
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byMail[u.Email]; ok {
		return nil, common.ErrDuplicateKey
	}
	u.ID = uuid.NewString()
	m.byMail[u.Email] = u
	return u, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.byMail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) FindByIDAndEmail(ctx context.Context, id, email string) (*models.User, error) {
	u, err := m.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u.ID != id {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type memRepoManager struct {
	users *memUsers
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{users: &memUsers{byMail: map[string]*models.User{}}}
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error         { return nil }
func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository               { return m.users }
func (m *memRepoManager) Translations(db dbx.DBTX) translationsrepo.Repository { return nil }

// --- stubs for handler-level tests ---

type stubUsers struct {
	token string
	err   error
}

func (s *stubUsers) Signup(ctx context.Context, email, password, name string) (string, error) {
	return s.token, s.err
}

func (s *stubUsers) Login(ctx context.Context, email, password string) (string, error) {
	return s.token, s.err
}

type stubIdentity struct {
	users map[string]*models.User
	err   error
}

func (s *stubIdentity) Resolve(ctx context.Context, token string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token == "" {
		return nil, common.ErrMissingToken
	}
	u, ok := s.users[token]
	if !ok {
		return nil, common.ErrTokenInvalid
	}
	return u, nil
}

type stubTranslations struct {
	gotIn       services.TranslateInput
	gotAudio    []byte
	gotDeadline bool
	gotLimit    int
	out         *models.TranslationSession
	history     []*models.TranslationSession
	err         error
	panicWith   any
}

func (s *stubTranslations) Translate(ctx context.Context, in services.TranslateInput) (*models.TranslationSession, error) {
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	s.gotIn = in
	_, s.gotDeadline = ctx.Deadline()
	if in.Audio != nil {
		s.gotAudio, _ = io.ReadAll(in.Audio.Body)
	}
	return s.out, s.err
}

func (s *stubTranslations) History(ctx context.Context, userID string, limit int) ([]*models.TranslationSession, error) {
	s.gotLimit = limit
	return s.history, s.err
}

// --- helpers ---

var alice = &models.User{ID: "6f1c1d3a-6a38-4d5e-9f59-3f1c2f4f8a11", Email: "alice@example.com", Name: "Alice"}

func newStubServer(us UserService, ir IdentityResolver, ts TranslationService) *HTTPServer {
	if us == nil {
		us = &stubUsers{}
	}
	if ir == nil {
		ir = &stubIdentity{users: map[string]*models.User{"good-token": alice}}
	}
	if ts == nil {
		ts = &stubTranslations{}
	}
	return NewHTTPServer(testConfig(), logging.Nop{}, us, ir, ts)
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type filePart struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, formAudioFile, file.name))
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func do(t *testing.T, s *HTTPServer, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func decodeJSON(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
