package rest

import (
	"mime/multipart"

	"github.com/dmitrijs2005/linguabridge/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

const (
	formTextInput      = "text_input"
	formAudioFile      = "audio_file"
	formTargetLanguage = "target_language_form"
	formSourceLanguage = "source_language_form"
)

func (s *HTTPServer) root(c *fiber.Ctx) error {
	return c.JSON(messageResponse{Message: "Welcome to " + s.appName + "!"})
}

func (s *HTTPServer) signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, detailBadBody)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	token, err := s.users.Signup(c.UserContext(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	s.logger.Info(c.UserContext(), "Registered", "email", req.Email, "request_id", requestID(c))
	return c.Status(fiber.StatusCreated).JSON(newTokenResponse(token))
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, detailBadBody)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	token, err := s.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(newTokenResponse(token))
}

func (s *HTTPServer) me(c *fiber.Ctx) error {
	u := currentUser(c)
	return c.JSON(userResponse{ID: u.ID, Email: u.Email, Name: u.Name})
}

func (s *HTTPServer) translate(c *fiber.Ctx) error {
	in := services.TranslateInput{
		UserID:         currentUser(c).ID,
		Text:           c.FormValue(formTextInput),
		TargetLanguage: c.FormValue(formTargetLanguage),
		SourceLanguage: c.FormValue(formSourceLanguage),
	}

	if fh := audioFile(c); fh != nil {
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()

		in.Audio = &services.AudioUpload{
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Body:        f,
		}
	}

	session, err := s.translations.Translate(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(newTranslationResponse(session))
}

func (s *HTTPServer) history(c *fiber.Ctx) error {
	sessions, err := s.translations.History(c.UserContext(), currentUser(c).ID, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}

	out := make([]historyItem, 0, len(sessions))
	for _, ts := range sessions {
		out = append(out, historyItem{
			ID:                  ts.ID,
			translationResponse: newTranslationResponse(ts),
			HasAudio:            ts.AudioKey != "",
			CreatedAt:           ts.CreatedAt,
		})
	}

	return c.JSON(out)
}

// audioFile returns the uploaded audio part, or nil when the request carries
// none. An empty file input submitted by a browser counts as none.
func audioFile(c *fiber.Ctx) *multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	files := form.File[formAudioFile]
	if len(files) == 0 {
		return nil
	}
	fh := files[0]
	if fh.Filename == "" && fh.Size == 0 {
		return nil
	}
	return fh
}
