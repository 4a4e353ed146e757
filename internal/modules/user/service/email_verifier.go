package service

import (
	"context"
	"fmt"
	"html"
	"net/url"

	"anoa.com/communityforum/internal/entity"
	"anoa.com/communityforum/pkg/mailer"
	"github.com/rs/zerolog"
)

// EmailVerifier sends the account confirmation link. Delivery failures are
// logged and never reach the caller.
type EmailVerifier struct {
	mailer  mailer.Mailer
	from    string
	baseURL string
	log     zerolog.Logger
}

func NewEmailVerifier(m mailer.Mailer, from, baseURL string, log zerolog.Logger) *EmailVerifier {
	return &EmailVerifier{mailer: m, from: from, baseURL: baseURL, log: log}
}

func (v *EmailVerifier) VerificationURL(token string) string {
	return v.baseURL + "/verify/email?token=" + url.QueryEscape(token)
}

func (v *EmailVerifier) SendEmailConfirmation(ctx context.Context, user *entity.User) {
	if user.EmailVerificationToken == nil {
		return
	}

	link := v.VerificationURL(*user.EmailVerificationToken)
	body := fmt.Sprintf(
		`<h1>Bienvenue sur notre application !</h1>`+
			`<p>Bonjour %s,</p>`+
			`<p>Merci de vous être inscrit. Veuillez confirmer votre adresse email en cliquant sur le lien suivant :</p>`+
			`<a href="%s">Confirmer mon adresse</a>`,
		html.EscapeString(user.Username), html.EscapeString(link),
	)

	err := v.mailer.Send(ctx, mailer.Message{
		From:    v.from,
		To:      user.Email,
		Subject: "Merci de confirmer votre mail",
		HTML:    body,
	})
	if err != nil {
		v.log.Error().Err(err).Str("to", user.Email).Msg("failed to send confirmation email")
		return
	}
	v.log.Info().Str("to", user.Email).Msg("confirmation email sent")
}
