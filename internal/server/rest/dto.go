package rest

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/linguabridge/internal/server/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past this many bytes, so longer passwords are refused.
	maxPasswordBytes  = 72
	minNameLength     = 2
	maxNameLength     = 50
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r signupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLength, 0), validation.By(maxBytes(maxPasswordBytes))),
		validation.Field(&r.Name, validation.Required, validation.Length(minNameLength, maxNameLength)),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func maxBytes(n int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if len(s) > n {
			return errors.New("is too long")
		}
		return nil
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func newTokenResponse(token string) tokenResponse {
	return tokenResponse{AccessToken: token, TokenType: "bearer"}
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type translationResponse struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

func newTranslationResponse(s *models.TranslationSession) translationResponse {
	return translationResponse{
		OriginalText:   s.OriginalText,
		TranslatedText: s.TranslatedText,
		SourceLanguage: s.SourceLanguage,
		TargetLanguage: s.TargetLanguage,
	}
}

type historyItem struct {
	ID string `json:"id"`
	translationResponse
	HasAudio  bool      `json:"has_audio"`
	CreatedAt time.Time `json:"created_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}
