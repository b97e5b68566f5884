package rest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/linguabridge/internal/common"
	"github.com/dmitrijs2005/linguabridge/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

const (
	userLocalsKey      = "user"
	requestIDLocalsKey = "requestid"
)

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDLocalsKey).(string)
	return id
}

// logRequest writes one line per request. Errors from the chain are rendered
// here so the logged status is the one the client sees.
func (s *HTTPServer) logRequest(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start).String(),
		"request_id", requestID(c))

	return nil
}

// withTimeout bounds every request, including DB calls, hashing and upstream
// calls made on its behalf.
func withTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// authenticate resolves the bearer token to a user and stores it in Locals.
func (s *HTTPServer) authenticate(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := s.identity.Resolve(ctx, bearerToken(c.Get(fiber.HeaderAuthorization)))
	if err != nil {
		if reason := authFailureReason(err); reason != "" {
			s.logger.Warn(ctx, "authentication failed",
				"reason", reason,
				"path", c.Path(),
				"request_id", requestID(c))
		}
		return err
	}

	c.Locals(userLocalsKey, user)
	return c.Next()
}

func currentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(userLocalsKey).(*models.User)
	return u
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authFailureReason names the internal kind of an authentication failure, or
// returns "" when err is not one.
func authFailureReason(err error) string {
	switch {
	case errors.Is(err, common.ErrMissingToken):
		return "missing_token"
	case errors.Is(err, common.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, common.ErrTokenInvalid):
		return "token_invalid"
	case errors.Is(err, common.ErrIdentityMismatch):
		return "identity_mismatch"
	case errors.Is(err, common.ErrInvalidClaimShape):
		return "invalid_claim_shape"
	}
	return ""
}
