package services

import (
	"context"
	"strings"

	"transfers/internal/apiclient"
	"transfers/internal/domain"
	"transfers/internal/utils"
)

type ContactForm struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// ContactService forwards the contact form to the backend.
type ContactService struct {
	API    ContactAPI
	Tokens TokenSource
}

const maxContactMessage = 5000

func (s ContactService) Send(ctx context.Context, visitor string, f ContactForm) error {
	f.Name = utils.NormalizeSpace(f.Name)
	f.Email = strings.ToLower(utils.TrimOrEmpty(f.Email))
	f.Phone = utils.NormalizePhone(f.Phone)
	f.Subject = utils.NormalizeSpace(f.Subject)
	f.Message = utils.TrimOrEmpty(f.Message)
	switch {
	case f.Name == "":
		return domain.ValidationError{Field: "name", Msg: "name is required"}
	case !utils.IsEmail(f.Email):
		return domain.ValidationError{Field: "email", Msg: "email is not valid"}
	case f.Message == "":
		return domain.ValidationError{Field: "message", Msg: "message is required"}
	case len(f.Message) > maxContactMessage:
		return domain.ValidationError{Field: "message", Msg: "message is too long"}
	}

	token := ""
	if s.Tokens != nil {
		token = s.Tokens.Bearer(ctx, visitor)
	}
	if err := s.API.Contact(ctx, token, apiclient.ContactRequest(f)); err != nil {
		utils.LogError(utils.RequestIDFrom(ctx), "contact", "send", err)
		return err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "contact", "send", "subject="+f.Subject)
	return nil
}
