package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/linguabridge/internal/common"
	"github.com/dmitrijs2005/linguabridge/internal/filex"
	"github.com/dmitrijs2005/linguabridge/internal/logging"
	"github.com/dmitrijs2005/linguabridge/internal/server/config"
	"github.com/dmitrijs2005/linguabridge/internal/server/models"
	"github.com/dmitrijs2005/linguabridge/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	DefaultTargetLanguage = "isiZulu"
	DefaultHistoryLimit   = 20
	MaxHistoryLimit       = 100

	transcriptionLanguageHint = "en"
)

// audioExtensions lists the accepted upload content types and the file
// extension the transcriber needs to recognise each format.
var audioExtensions = map[string]string{
	"audio/wav":  ".wav",
	"audio/mpeg": ".mp3",
	"audio/mp3":  ".mp3",
	"audio/webm": ".webm",
	"audio/m4a":  ".m4a",
	"audio/ogg":  ".ogg",
	"audio/aac":  ".aac",
}

type Transcriber interface {
	Transcribe(ctx context.Context, path string, language string) (string, error)
}

type Translator interface {
	Translate(ctx context.Context, text, target, source string) (string, error)
}

// AudioArchive keeps a copy of uploaded audio and returns its key.
type AudioArchive interface {
	Put(ctx context.Context, path string, contentType string) (string, error)
}

// AudioUpload is an uploaded audio file. The caller owns Body.
type AudioUpload struct {
	ContentType string
	Body        io.Reader
}

// TranslateInput is one translation request. Audio, when present, takes
// precedence over Text.
type TranslateInput struct {
	UserID         string
	Text           string
	Audio          *AudioUpload
	TargetLanguage string
	SourceLanguage string
}

// TranslationService transcribes and translates user input and records each
// completed request as a TranslationSession.
type TranslationService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	transcriber   Transcriber
	translator    Translator
	archive       AudioArchive
	tempDir       string
	maxAudioBytes int64
	logger        logging.Logger
}

// NewTranslationService wires the service. archive may be nil, which disables
// audio archiving. cfg.TempAudioDir must already exist.
func NewTranslationService(db *sql.DB, m repomanager.RepositoryManager, transcriber Transcriber, translator Translator,
	archive AudioArchive, cfg *config.Config, logger logging.Logger) *TranslationService {
	return &TranslationService{
		db:            db,
		repomanager:   m,
		transcriber:   transcriber,
		translator:    translator,
		archive:       archive,
		tempDir:       cfg.TempAudioDir,
		maxAudioBytes: cfg.MaxAudioBytes,
		logger:        logger.With("module", "translation"),
	}
}

// Translate runs one request end to end and returns the stored session.
func (s *TranslationService) Translate(ctx context.Context, in TranslateInput) (*models.TranslationSession, error) {
	target := strings.TrimSpace(in.TargetLanguage)
	if target == "" {
		target = DefaultTargetLanguage
	}
	source := strings.TrimSpace(in.SourceLanguage)

	var text, audioKey string
	switch {
	case in.Audio != nil:
		var err error
		text, audioKey, err = s.transcribe(ctx, in.Audio, source)
		if err != nil {
			return nil, err
		}
	case in.Text != "":
		text = in.Text
	default:
		return nil, common.ErrNoInput
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.ErrEmptyText
	}

	translated, err := s.translator.Translate(ctx, text, target, source)
	if err != nil {
		s.logger.Error(ctx, "translation failed", "error", err, "target", target)
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}

	stored := source
	if stored == "" {
		stored = models.SourceLanguageAutoDetected
	}

	session, err := s.repomanager.Translations(s.db).Create(ctx, &models.TranslationSession{
		UserID:         in.UserID,
		OriginalText:   text,
		TranslatedText: translated,
		SourceLanguage: stored,
		TargetLanguage: target,
		AudioKey:       audioKey,
	})
	if err != nil {
		return nil, fmt.Errorf("error saving translation: %w", err)
	}

	s.logger.Info(ctx, "translation stored", "user_id", in.UserID, "session_id", session.ID, "target", target)

	return session, nil
}

// History returns the most recent sessions of userID, newest first. limit is
// clamped to [1, MaxHistoryLimit]; zero or less selects DefaultHistoryLimit.
func (s *TranslationService) History(ctx context.Context, userID string, limit int) ([]*models.TranslationSession, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	sessions, err := s.repomanager.Translations(s.db).ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing translations: %w", err)
	}
	return sessions, nil
}

// transcribe spools the upload to a scratch file, transcribes it and archives
// it. The scratch file is always removed.
func (s *TranslationService) transcribe(ctx context.Context, a *AudioUpload, source string) (string, string, error) {
	contentType := normalizeContentType(a.ContentType)
	ext, ok := audioExtensions[contentType]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", common.ErrUnsupportedAudioType, a.ContentType)
	}

	path := filepath.Join(s.tempDir, uuid.NewString()+ext)
	n, err := filex.WriteLimited(path, a.Body, s.maxAudioBytes)
	if err != nil {
		if errors.Is(err, filex.ErrLimitExceeded) {
			return "", "", common.ErrAudioTooLarge
		}
		return "", "", fmt.Errorf("error storing audio: %w", err)
	}
	defer s.removeScratch(ctx, path)

	if n == 0 {
		return "", "", common.ErrEmptyAudio
	}

	language := source
	if language == "" {
		language = transcriptionLanguageHint
	}

	text, err := s.transcriber.Transcribe(ctx, path, language)
	if err != nil {
		s.logger.Error(ctx, "transcription failed", "error", err)
		return "", "", fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}

	return text, s.archiveAudio(ctx, path, contentType), nil
}

func (s *TranslationService) archiveAudio(ctx context.Context, path, contentType string) string {
	if s.archive == nil {
		return ""
	}

	key, err := s.archive.Put(ctx, path, contentType)
	if err != nil {
		s.logger.Warn(ctx, "audio archive failed", "error", err)
		return ""
	}
	return key
}

func (s *TranslationService) removeScratch(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn(ctx, "error removing scratch audio", "path", path, "error", err)
	}
}

func normalizeContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}
