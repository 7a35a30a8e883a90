package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/langouL/meteopad/internal/domain"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) SendDecisionNotification(ctx context.Context, email, name string, decision domain.Decision, windowSeconds int) error {
	var subject, plainText string
	if decision == domain.DecisionAccept {
		subject = "MeteoMarine PAD – demande de téléchargement acceptée"
		plainText = fmt.Sprintf(
			"Bonjour %s,\n\nVotre demande de téléchargement des données météo a été acceptée. "+
				"Vous disposez de %d secondes pour télécharger le fichier depuis le tableau de bord.\n\n"+
				"Port Autonome de Douala – MeteoMarine",
			name, windowSeconds)
	} else {
		subject = "MeteoMarine PAD – demande de téléchargement refusée"
		plainText = fmt.Sprintf(
			"Bonjour %s,\n\nVotre demande de téléchargement des données météo a été refusée. "+
				"Vous pouvez soumettre une nouvelle demande depuis le tableau de bord.\n\n"+
				"Port Autonome de Douala – MeteoMarine",
			name)
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(name, email)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send decision email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
