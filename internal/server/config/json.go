package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/linguabridge/internal/flagx"
	"github.com/dmitrijs2005/linguabridge/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "30m" and integer nanoseconds are accepted. Fields
// left out of the file keep their previous values.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	PasswordHashCost            int            `json:"password_hash_cost"`
	PasswordHashConcurrency     int            `json:"password_hash_concurrency"`
	RequestTimeout              timex.Duration `json:"request_timeout"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
	AllowedOrigin               string         `json:"allowed_origin"`
	AppName                     string         `json:"app_name"`
	APIPrefix                   string         `json:"api_prefix"`
	LogLevel                    string         `json:"log_level"`
	OpenAIAPIKey                string         `json:"openai_api_key"`
	OpenAIBaseURL               string         `json:"openai_base_url"`
	TranscriptionModel          string         `json:"transcription_model"`
	TranslationModel            string         `json:"translation_model"`
	UpstreamTimeout             timex.Duration `json:"upstream_timeout"`
	UpstreamMaxConcurrent       int            `json:"upstream_max_concurrent"`
	MaxAudioBytes               int64          `json:"max_audio_bytes"`
	TempAudioDir                string         `json:"temp_audio_dir"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJson overlays the file named by -c/-config onto config. Without the
// flag nothing happens; an unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setNonZero(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setNonZero(&config.DatabaseDSN, c.DatabaseDSN)
	setNonZero(&config.SecretKey, c.SecretKey)
	setNonZero(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	setNonZero(&config.PasswordHashCost, c.PasswordHashCost)
	setNonZero(&config.PasswordHashConcurrency, c.PasswordHashConcurrency)
	setNonZero(&config.RequestTimeout, c.RequestTimeout.Duration)
	setNonZero(&config.ShutdownTimeout, c.ShutdownTimeout.Duration)
	setNonZero(&config.AllowedOrigin, c.AllowedOrigin)
	setNonZero(&config.AppName, c.AppName)
	setNonZero(&config.APIPrefix, c.APIPrefix)
	setNonZero(&config.LogLevel, c.LogLevel)
	setNonZero(&config.OpenAIAPIKey, c.OpenAIAPIKey)
	setNonZero(&config.OpenAIBaseURL, c.OpenAIBaseURL)
	setNonZero(&config.TranscriptionModel, c.TranscriptionModel)
	setNonZero(&config.TranslationModel, c.TranslationModel)
	setNonZero(&config.UpstreamTimeout, c.UpstreamTimeout.Duration)
	setNonZero(&config.UpstreamMaxConcurrent, c.UpstreamMaxConcurrent)
	setNonZero(&config.MaxAudioBytes, c.MaxAudioBytes)
	setNonZero(&config.TempAudioDir, c.TempAudioDir)
	setNonZero(&config.S3RootUser, c.S3RootUser)
	setNonZero(&config.S3RootPassword, c.S3RootPassword)
	setNonZero(&config.S3Bucket, c.S3Bucket)
	setNonZero(&config.S3Region, c.S3Region)
	setNonZero(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setNonZero[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
