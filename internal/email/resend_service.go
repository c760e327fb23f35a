package email

import (
	"context"
	"fmt"
	"html"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// ResendService maneja el envío de correos electrónicos usando Resend API
type ResendService struct {
	client    *resend.Client
	fromEmail string
	baseURL   string
	logger    *logrus.Logger
}

// NewResendService crea una nueva instancia de ResendService
func NewResendService(apiKey, fromEmail, baseURL string, logger *logrus.Logger) *ResendService {
	return &ResendService{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// SendDocument avisa al cliente que el documento fue emitido
func (s *ResendService) SendDocument(ctx context.Context, doc *models.Document, customer *models.Customer, totals models.Totals) error {
	if customer.Email == nil || *customer.Email == "" {
		return fmt.Errorf("customer %s has no email address", customer.ID)
	}

	subject, body := buildDocumentEmail(doc, customer, totals, s.baseURL)

	request := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{*customer.Email},
		Subject: subject,
		Html:    body,
	}

	result, err := s.client.Emails.SendWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("error sending email via Resend: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email_id":    result.Id,
		"document_id": doc.ID,
		"to":          *customer.Email,
		"subject":     subject,
	}).Info("Email sent successfully via Resend")

	return nil
}

var documentTitles = map[models.DocumentKind]string{
	models.DocumentKindQuote:    "Devis",
	models.DocumentKindInvoice:  "Facture",
	models.DocumentKindDelivery: "Bon de livraison",
}

// buildDocumentEmail arma asunto y cuerpo HTML del aviso de documento
func buildDocumentEmail(doc *models.Document, customer *models.Customer, totals models.Totals, baseURL string) (string, string) {
	title := documentTitles[doc.Kind]
	subject := fmt.Sprintf("%s %s", title, doc.DocumentNumber)

	dueLine := ""
	if doc.SecondaryDate != nil && doc.Kind != models.DocumentKindDelivery {
		label := "Échéance"
		if doc.Kind == models.DocumentKindQuote {
			label = "Valable jusqu'au"
		}
		dueLine = fmt.Sprintf("<li><strong>%s :</strong> %s</li>", label, doc.SecondaryDate.Format("02/01/2006"))
	}

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>%s</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 8px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #2980b9; color: white; text-decoration: none; border-radius: 5px; }
        .total { font-size: 18px; font-weight: bold; color: #2980b9; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>%s</h1>
            <p>N° %s du %s</p>
        </div>
        <p>Bonjour %s,</p>
        <ul>
            <li><strong>Total HT :</strong> %s</li>
            <li><strong>TVA :</strong> %s</li>
            <li><strong>Total TTC :</strong> <span class="total">%s</span></li>
            %s
        </ul>
        <p style="text-align: center;"><a href="%s/v1/%s/%s/pdf" class="button">Télécharger le PDF</a></p>
    </div>
</body>
</html>`,
		html.EscapeString(subject),
		html.EscapeString(title),
		html.EscapeString(doc.DocumentNumber),
		doc.IssueDate.Format("02/01/2006"),
		html.EscapeString(customer.CompanyName),
		totals.Subtotal.StringFixed(2),
		totals.TaxTotal.StringFixed(2),
		totals.Total.StringFixed(2),
		dueLine,
		baseURL, doc.Kind.Collection(), doc.ID,
	)

	return subject, body
}
