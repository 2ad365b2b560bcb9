package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	textTemplate "text/template"
	"time"

	"github.com/jordan-wright/email"
	log "github.com/sirupsen/logrus"
	"storefront/internal/config"
	"storefront/internal/models/db_models"
	"storefront/pkg/utils"
)

type MailService interface {
	SendOrderTeamNotification(ctx context.Context, to string, order *db_models.Order, items []db_models.OrderItem) error
	SendOrderConfirmation(ctx context.Context, to string, order *db_models.Order, items []db_models.OrderItem) error
	SendRetailerOutcome(ctx context.Context, to string, app *db_models.RetailerApplication, reason string) error
	SendRetailerTeamNotification(ctx context.Context, to, applicantEmail string, app *db_models.RetailerApplication, reason string) error
	SendContactNotification(ctx context.Context, to string, msg *db_models.ContactMessage) error
}

type smtpMailService struct {
	smtp     config.SMTPConfig
	from     string
	fromName string
	appName  string
	htmlTpl  *template.Template
	textTpl  *textTemplate.Template
	// deliver is swapped out in tests.
	deliver func(e *email.Email) error
}

func NewSMTPMailService(cfg *config.Config) MailService {
	s := &smtpMailService{
		smtp:     cfg.SMTP,
		from:     cfg.MailFrom,
		fromName: cfg.MailFromName,
		appName:  cfg.AppName,
		htmlTpl:  template.Must(template.New("html").Parse(baseHTMLTemplate)),
		textTpl:  textTemplate.Must(textTemplate.New("text").Parse(plainTextTemplate)),
	}
	s.deliver = s.sendSMTP
	return s
}

// ------------------- Public API -------------------

func (s *smtpMailService) SendOrderTeamNotification(ctx context.Context, to string, order *db_models.Order, items []db_models.OrderItem) error {
	customer := "-"
	if order.CustomerEmail != nil {
		customer = *order.CustomerEmail
	}
	data := s.newEmailData(
		fmt.Sprintf("New paid order %s", shortID(order.ID.String())),
		"A payment has been confirmed. Prepare the shipment.",
	)
	data.Details = []EmailField{
		{"Order", order.ID.String()},
		{"Session", order.StripeSessionID},
		{"Customer", customer},
		{"Role", string(order.Role)},
		{"Date", utils.FormatShopTime(order.CreatedAt)},
	}
	if order.ShippingName != nil {
		data.Details = append(data.Details, EmailField{"Ship to", *order.ShippingName})
	}
	if order.ShippingPhone != nil {
		data.Details = append(data.Details, EmailField{"Phone", *order.ShippingPhone})
	}
	data.setItems(items, order.AmountTotalCents, order.Currency)

	return s.render(ctx, outgoing{to: to, subject: data.Title}, data)
}

func (s *smtpMailService) SendOrderConfirmation(ctx context.Context, to string, order *db_models.Order, items []db_models.OrderItem) error {
	data := s.newEmailData(
		"Thank you for your order",
		"We received your payment. You will get another message when your order ships.",
	)
	data.Details = []EmailField{
		{"Order", shortID(order.ID.String())},
		{"Date", utils.FormatShopTime(order.CreatedAt)},
	}
	data.setItems(items, order.AmountTotalCents, order.Currency)

	subject := fmt.Sprintf("%s - order confirmation %s", s.appName, shortID(order.ID.String()))
	return s.render(ctx, outgoing{to: to, subject: subject}, data)
}

func (s *smtpMailService) SendRetailerOutcome(ctx context.Context, to string, app *db_models.RetailerApplication, reason string) error {
	var data EmailData
	switch app.Status {
	case db_models.ApplicationApproved:
		data = s.newEmailData("Your retailer account is active",
			"Your application was approved. Retailer prices are now applied when you are signed in.")
	case db_models.ApplicationRejected:
		data = s.newEmailData("Retailer application not approved",
			"We could not approve your application. Reply to this message if you think this is a mistake.")
	default:
		data = s.newEmailData("Retailer application received",
			"We could not verify your VAT number automatically. Our team will review it manually.")
	}
	data.Details = []EmailField{
		{"Company", app.CompanyName},
		{"VAT", app.VatNumber},
	}
	if reason != "" {
		data.Details = append(data.Details, EmailField{"Note", reason})
	}
	return s.render(ctx, outgoing{to: to, subject: data.Title}, data)
}

func (s *smtpMailService) SendRetailerTeamNotification(ctx context.Context, to, applicantEmail string, app *db_models.RetailerApplication, reason string) error {
	data := s.newEmailData(
		fmt.Sprintf("Retailer application: %s (%s)", app.CompanyName, app.Status),
		"A retailer application was submitted.",
	)
	data.Details = []EmailField{
		{"Company", app.CompanyName},
		{"VAT", app.VatNumber},
		{"Country", app.BillingCountry},
		{"Applicant", applicantEmail},
		{"Status", string(app.Status)},
	}
	for _, f := range []struct {
		label string
		value *string
	}{
		{"PEC", app.PecEmail},
		{"SDI", app.SdiCode},
		{"Contact", app.ContactName},
		{"Phone", app.ContactPhone},
		{"City", app.BillingCity},
	} {
		if f.value != nil {
			data.Details = append(data.Details, EmailField{f.label, *f.value})
		}
	}
	if reason != "" {
		data.Details = append(data.Details, EmailField{"Reason", reason})
	}

	out := outgoing{to: to, subject: data.Title}
	if applicantEmail != "" {
		out.replyTo = applicantEmail
	}
	return s.render(ctx, out, data)
}

func (s *smtpMailService) SendContactNotification(ctx context.Context, to string, msg *db_models.ContactMessage) error {
	data := s.newEmailData("New contact request: "+msg.Subject, msg.Message)
	data.Details = []EmailField{
		{"Name", msg.Name},
		{"Email", msg.Email},
	}
	if msg.Phone != nil {
		data.Details = append(data.Details, EmailField{"Phone", *msg.Phone})
	}
	return s.render(ctx, outgoing{to: to, subject: data.Title, replyTo: msg.Email}, data)
}

// ------------------- Rendering -------------------

type EmailField struct {
	Label string
	Value string
}

type EmailLine struct {
	Name  string
	Qty   int64
	Unit  string
	Total string
}

type EmailData struct {
	Title   string
	Intro   string
	Details []EmailField
	Items   []EmailLine
	Total   string
	AppName string
	Year    int
}

func (s *smtpMailService) newEmailData(title, intro string) EmailData {
	return EmailData{Title: title, Intro: intro, AppName: s.appName, Year: time.Now().Year()}
}

func (d *EmailData) setItems(items []db_models.OrderItem, totalCents int64, currency string) {
	for _, it := range items {
		d.Items = append(d.Items, EmailLine{
			Name:  it.NameSnapshot,
			Qty:   it.Qty,
			Unit:  utils.FormatCents(it.UnitAmountCents, it.Currency),
			Total: utils.FormatCents(it.LineTotalCents(), it.Currency),
		})
	}
	d.Total = utils.FormatCents(totalCents, currency)
}

const baseHTMLTemplate = `<!doctype html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 0; background: #f6f3ee; color: #2b2b2b; font-family: Georgia, "Times New Roman", serif; }
    .wrapper { width: 100%; padding: 32px 12px; box-sizing: border-box; }
    .container { max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 8px; overflow: hidden; border: 1px solid #e6e0d4; }
    .header { padding: 24px 28px; background: #4a5d23; color: #ffffff; font-size: 20px; letter-spacing: 0.5px; }
    .body { padding: 28px; }
    h1 { margin: 0 0 12px; font-size: 22px; }
    p { margin: 0 0 16px; line-height: 1.6; }
    table { width: 100%; border-collapse: collapse; margin: 12px 0 20px; font-size: 14px; }
    th, td { padding: 6px 4px; text-align: left; border-bottom: 1px solid #eee7da; }
    td.num, th.num { text-align: right; }
    .label { color: #7a6f5c; width: 30%; }
    .footer { padding: 16px 28px; color: #7a6f5c; font-size: 12px; text-align: center; background: #faf8f4; }
  </style>
</head>
<body>
  <div class="wrapper">
    <div class="container">
      <div class="header">{{.AppName}}</div>
      <div class="body">
        <h1>{{.Title}}</h1>
        <p>{{.Intro}}</p>
        {{if .Details}}
        <table>
          {{range .Details}}<tr><td class="label">{{.Label}}</td><td>{{.Value}}</td></tr>{{end}}
        </table>
        {{end}}
        {{if .Items}}
        <table>
          <tr><th>Product</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
          {{range .Items}}<tr><td>{{.Name}}</td><td class="num">{{.Qty}}</td><td class="num">{{.Unit}}</td><td class="num">{{.Total}}</td></tr>{{end}}
          <tr><td colspan="3"><strong>Total</strong></td><td class="num"><strong>{{.Total}}</strong></td></tr>
        </table>
        {{end}}
      </div>
      <div class="footer">&copy; {{.Year}} {{.AppName}}</div>
    </div>
  </div>
</body>
</html>`

const plainTextTemplate = `{{.Title}}

{{.Intro}}
{{range .Details}}
{{.Label}}: {{.Value}}{{end}}
{{if .Items}}
{{range .Items}}- {{.Name}} x{{.Qty}} @ {{.Unit}} = {{.Total}}
{{end}}Total: {{.Total}}
{{end}}
{{.AppName}} (c) {{.Year}}
`

func (s *smtpMailService) renderEmail(data EmailData) (html string, text string, err error) {
	var hb, tb bytes.Buffer

	if err = s.htmlTpl.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err = s.textTpl.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

// ------------------- SMTP Send -------------------

type outgoing struct {
	to      string
	subject string
	replyTo string
}

func (s *smtpMailService) render(ctx context.Context, out outgoing, data EmailData) error {
	if !s.smtp.Enabled() || s.from == "" {
		return utils.ErrMailerDisabled
	}
	if strings.TrimSpace(out.to) == "" {
		return fmt.Errorf("no recipient for %q", out.subject)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	html, text, err := s.renderEmail(data)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	e := email.NewEmail()
	e.From = s.formatFromHeader()
	e.To = []string{out.to}
	if out.replyTo != "" {
		e.ReplyTo = []string{out.replyTo}
	}
	e.Subject = out.subject
	e.Text = []byte(text)
	e.HTML = []byte(html)

	if err := s.deliver(e); err != nil {
		return err
	}
	log.WithFields(log.Fields{"to": out.to, "subject": out.subject}).Debug("Email sent")
	return nil
}

func (s *smtpMailService) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%d", s.smtp.Host, s.smtp.Port)
	var auth smtp.Auth
	if s.smtp.Username != "" {
		auth = smtp.PlainAuth("", s.smtp.Username, s.smtp.Password, s.smtp.Host)
	}

	tlsCfg := &tls.Config{ServerName: s.smtp.Host, MinVersion: tls.VersionTLS12}
	if s.smtp.Port == 465 {
		// SMTPS, implicit TLS
		return e.SendWithTLS(addr, auth, tlsCfg)
	}
	return e.SendWithStartTLS(addr, auth, tlsCfg)
}

func (s *smtpMailService) formatFromHeader() string {
	name := strings.TrimSpace(s.fromName)
	if name == "" {
		return s.from
	}
	return fmt.Sprintf("%s <%s>", name, s.from)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
