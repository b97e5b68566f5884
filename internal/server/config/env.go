package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// envMap binds environment variables to Config fields.
var envMap = map[string]func(v string, c *Config) error{
	"HTTP_ADDR":      func(v string, c *Config) error { c.EndpointAddrHTTP = v; return nil },
	"DATABASE_DSN":   func(v string, c *Config) error { c.DatabaseDSN = v; return nil },
	"JWT_SECRET_KEY": func(v string, c *Config) error { c.SecretKey = v; return nil },
	"ACCESS_TOKEN_EXPIRE_MINUTES": func(v string, c *Config) error {
		return confMinutes(v, &c.AccessTokenValidityDuration)
	},
	"PASSWORD_HASH_COST": func(v string, c *Config) error {
		return confInt(v, &c.PasswordHashCost, 4, 31)
	},
	"REQUEST_TIMEOUT": func(v string, c *Config) error {
		return confDuration(v, &c.RequestTimeout, 0, math.MaxInt64)
	},
	"SHUTDOWN_TIMEOUT": func(v string, c *Config) error {
		return confDuration(v, &c.ShutdownTimeout, 0, math.MaxInt64)
	},
	"ALLOWED_ORIGIN":      func(v string, c *Config) error { c.AllowedOrigin = v; return nil },
	"APP_NAME":            func(v string, c *Config) error { c.AppName = v; return nil },
	"API_PREFIX":          func(v string, c *Config) error { c.APIPrefix = v; return nil },
	"LOG_LEVEL":           func(v string, c *Config) error { c.LogLevel = v; return nil },
	"OPENAI_API_KEY":      func(v string, c *Config) error { c.OpenAIAPIKey = v; return nil },
	"OPENAI_BASE_URL":     func(v string, c *Config) error { c.OpenAIBaseURL = v; return nil },
	"TRANSCRIPTION_MODEL": func(v string, c *Config) error { c.TranscriptionModel = v; return nil },
	"TRANSLATION_MODEL":   func(v string, c *Config) error { c.TranslationModel = v; return nil },
	"UPSTREAM_TIMEOUT": func(v string, c *Config) error {
		return confDuration(v, &c.UpstreamTimeout, 0, math.MaxInt64)
	},
	"MAX_AUDIO_BYTES": func(v string, c *Config) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.MaxAudioBytes = n
		return nil
	},
	"TEMP_AUDIO_DIR":   func(v string, c *Config) error { c.TempAudioDir = v; return nil },
	"S3_ROOT_USER":     func(v string, c *Config) error { c.S3RootUser = v; return nil },
	"S3_ROOT_PASSWORD": func(v string, c *Config) error { c.S3RootPassword = v; return nil },
	"S3_BUCKET":        func(v string, c *Config) error { c.S3Bucket = v; return nil },
	"S3_REGION":        func(v string, c *Config) error { c.S3Region = v; return nil },
	"S3_BASE_ENDPOINT": func(v string, c *Config) error { c.S3BaseEndpoint = v; return nil },
}

// parseEnv overlays every variable from envMap that is set in the
// environment. Values are checked as they are read.
func parseEnv(c *Config) error {
	for key, mf := range envMap {
		if val, ok := os.LookupEnv(key); ok {
			if err := mf(val, c); err != nil {
				return fmt.Errorf("invalid env variable %s: %w", key, err)
			}
		}
	}
	return nil
}

func confDuration(v string, tgt *time.Duration, min, max time.Duration) error {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	if dur < min || dur > max {
		return fmt.Errorf("duration %s not in range [%s, %s] (inclusive)", dur, min, max)
	}
	*tgt = dur
	return nil
}

func confMinutes(v string, tgt *time.Duration) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	if n <= 0 {
		return fmt.Errorf("minutes must be positive, got %d", n)
	}
	*tgt = time.Duration(n) * time.Minute
	return nil
}

func confInt(v string, tgt *int, min, max int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	if n < min || n > max {
		return fmt.Errorf("%d not in range [%d, %d] (inclusive)", n, min, max)
	}
	*tgt = n
	return nil
}
