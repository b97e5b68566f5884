package rest

import (
	"errors"

	"github.com/dmitrijs2005/linguabridge/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

const (
	detailCredentials = "Could not validate credentials"
	detailInternal    = "An internal server error occurred. Please try again later."
	detailUnavailable = "Translation service unavailable."
	detailValidation  = "Validation error"
	detailBadLogin    = "Incorrect email or password."
	detailRegistered  = "Email already registered."
	detailBadBody     = "Invalid request body"
)

type errorResponse struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

// handleError is the single place where errors become HTTP responses. Only
// the fixed detail strings cross the boundary.
func (s *HTTPServer) handleError(c *fiber.Ctx, err error) error {
	status, body := classify(err)

	if status == fiber.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	if status >= fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed",
			"status", status,
			"error", err,
			"path", c.Path(),
			"request_id", requestID(c))
	}

	return c.Status(status).JSON(body)
}

func classify(err error) (int, errorResponse) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for name, ferr := range verrs {
			fields[name] = ferr.Error()
		}
		return fiber.StatusUnprocessableEntity, errorResponse{Detail: detailValidation, Errors: fields}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			return fe.Code, errorResponse{Detail: detailInternal}
		}
		return fe.Code, errorResponse{Detail: fe.Message}
	}

	switch {
	case errors.Is(err, common.ErrDuplicateRegistration):
		return fiber.StatusBadRequest, errorResponse{Detail: detailRegistered}
	case errors.Is(err, common.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, errorResponse{Detail: detailBadLogin}
	case authFailureReason(err) != "":
		return fiber.StatusUnauthorized, errorResponse{Detail: detailCredentials}
	case errors.Is(err, common.ErrNoInput):
		return fiber.StatusBadRequest, errorResponse{Detail: "Either text_input or audio_file must be provided."}
	case errors.Is(err, common.ErrUnsupportedAudioType):
		return fiber.StatusBadRequest, errorResponse{Detail: "Unsupported audio file type."}
	case errors.Is(err, common.ErrEmptyAudio):
		return fiber.StatusBadRequest, errorResponse{Detail: "Uploaded audio file is empty."}
	case errors.Is(err, common.ErrAudioTooLarge):
		return fiber.StatusRequestEntityTooLarge, errorResponse{Detail: "Audio file too large."}
	case errors.Is(err, common.ErrEmptyText):
		return fiber.StatusBadRequest, errorResponse{Detail: "No text to translate."}
	case errors.Is(err, common.ErrUpstreamUnavailable):
		return fiber.StatusServiceUnavailable, errorResponse{Detail: detailUnavailable}
	}

	return fiber.StatusInternalServerError, errorResponse{Detail: detailInternal}
}
