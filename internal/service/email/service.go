package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"time"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
	// Secure selects implicit TLS (465); otherwise STARTTLS via SendMail.
	Secure bool
}

// Sender delivers transactional mail over SMTP.
type Sender struct {
	cfg Config
}

func NewSender(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

// Send sends an HTML message wrapped in the platform layout.
func (e *Sender) Send(to, subject, bodyHTML string) error {
	if e.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	from := fmt.Sprintf("%s <%s>", e.cfg.FromName, e.cfg.Username)
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			layout(bodyHTML),
	)

	serverAddr := e.cfg.Host + ":" + e.cfg.Port
	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)

	if !e.cfg.Secure {
		if err := smtp.SendMail(serverAddr, auth, e.cfg.Username, []string{to}, msg); err != nil {
			return fmt.Errorf("send mail failed: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddr, &tls.Config{ServerName: e.cfg.Host})
	if err != nil {
		return fmt.Errorf("tls dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client failed: %w", err)
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth failed: %w", err)
	}
	if err := client.Mail(e.cfg.Username); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}

	return nil
}

var routeLinkTmpl = template.Must(template.New("route-link").Parse(`
<p>Hi {{.Name}},</p>
<p>Your route for {{.Date}} is ready.</p>
<p><a class="button" href="{{.URL}}">Open my route</a></p>
<p>This link signs you in for this route only. Do not forward it.</p>
`))

// RouteLinkEmail renders the subject and body of a driver's route link.
func RouteLinkEmail(driverName, url string, deliveryAt time.Time) (string, string, error) {
	var buf bytes.Buffer
	err := routeLinkTmpl.Execute(&buf, struct {
		Name string
		Date string
		URL  string
	}{
		Name: driverName,
		Date: deliveryAt.Format("Monday, January 2"),
		URL:  url,
	})
	if err != nil {
		return "", "", fmt.Errorf("render route link email: %w", err)
	}

	return "Your delivery route", buf.String(), nil
}

func layout(content string) string {
	return `<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8" />
	<title>Solidarity Pathways</title>
	<style>
		body { font-family: Arial, sans-serif; background-color: #f6f8fa; padding: 30px; }
		.container { max-width: 600px; margin: auto; background: #fff; border-radius: 10px; overflow: hidden; }
		.header { background: #2f5d3a; color: white; text-align: center; padding: 20px; font-size: 22px; font-weight: bold; }
		.body { padding: 25px; color: #333; line-height: 1.6; }
		a.button { display: inline-block; background: #2f5d3a; color: white; padding: 10px 20px; border-radius: 5px; text-decoration: none; }
	</style>
</head>
<body>
<div class="container">
	<div class="header">Solidarity Pathways</div>
	<div class="body">` + content + `</div>
</div>
</body>
</html>`
}
