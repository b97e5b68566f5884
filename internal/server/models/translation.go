package models

import "time"

// SourceLanguageAutoDetected is stored when the caller gave no source language.
const SourceLanguageAutoDetected = "auto-detected"

// TranslationSession records one completed translation request.
// AudioKey is empty unless the uploaded audio was archived.
type TranslationSession struct {
	ID             string
	UserID         string
	OriginalText   string
	TranslatedText string
	SourceLanguage string
	TargetLanguage string
	AudioKey       string
	CreatedAt      time.Time
}
