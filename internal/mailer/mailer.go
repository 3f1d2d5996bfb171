// Package mailer entrega os e-mails transacionais do sistema via SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/rs/zerolog"

	"github.com/igrejacanaa/louvores/internal/config"
	"github.com/igrejacanaa/louvores/internal/convite"
)

var conviteTemplate = template.Must(template.New("convite").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #4f46e5; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #4f46e5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Convite para o Sistema de Louvores</h2>
    </div>
    <div class="content">
        <p>Olá, {{.Nome}}!</p>
        <p>Você foi convidado(a) a acessar o Sistema de Louvores da igreja.</p>

        <a href="{{.Link}}" class="btn">Aceitar convite</a>

        <p style="margin-top: 16px; font-size: 14px; color: #6b7280;">
            O convite vale até {{.ExpiraEm.Format "02/01/2006 15:04"}}.
            Se você não esperava este e-mail, pode ignorá-lo.
        </p>
    </div>
    <div class="footer">
        Sistema de Louvores
    </div>
</div>
</body>
</html>
`))

// SMTPMailer envia convites pelo servidor configurado.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// EnviarConvite monta e envia o e-mail de convite. Respeita cancelamento
// do contexto antes de abrir a conexão SMTP.
func (m *SMTPMailer) EnviarConvite(ctx context.Context, msg convite.ConviteEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := conviteTemplate.Execute(&body, msg); err != nil {
		return fmt.Errorf("montar e-mail de convite: %w", err)
	}

	var raw bytes.Buffer
	fmt.Fprintf(&raw, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.From)
	fmt.Fprintf(&raw, "To: %s\r\n", msg.Para)
	fmt.Fprintf(&raw, "Subject: Convite para o Sistema de Louvores\r\n")
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	raw.WriteString("\r\n")
	raw.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{msg.Para}, raw.Bytes()); err != nil {
		return fmt.Errorf("enviar e-mail: %w", err)
	}
	return nil
}

// NoopMailer registra o link no log em vez de enviar. Usado quando o
// SMTP não está configurado; o convite continua utilizável pelo link.
type NoopMailer struct {
	log zerolog.Logger
}

func NewNoopMailer(log zerolog.Logger) *NoopMailer {
	return &NoopMailer{log: log}
}

func (m *NoopMailer) EnviarConvite(_ context.Context, msg convite.ConviteEmail) error {
	m.log.Info().Str("email", msg.Para).Str("link", msg.Link).Msg("SMTP desativado; convite disponível pelo link")
	return nil
}

// FromConfig escolhe a implementação conforme a configuração.
func FromConfig(cfg config.SMTPConfig, log zerolog.Logger) convite.Mailer {
	if cfg.Host == "" {
		return NewNoopMailer(log)
	}
	return NewSMTPMailer(cfg)
}
