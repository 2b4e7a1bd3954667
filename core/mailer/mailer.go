// Package mailer delivers messages over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"event-service/core/config"
	"event-service/core/errors"
)

// StartTLSPort is the submission port; it upgrades a plain session instead
// of speaking TLS from the first byte.
const StartTLSPort = 587

const defaultTimeout = 10 * time.Second

type ContentType string

const (
	ContentTypePlain ContentType = "plain"
	ContentTypeHTML  ContentType = "html"
)

// DialFunc opens the raw connection to the SMTP server.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

type Option func(*SMTPMailer)

func WithDialer(dial DialFunc) Option {
	return func(m *SMTPMailer) { m.dial = dial }
}

func WithTLSConfig(cfg *tls.Config) Option {
	return func(m *SMTPMailer) { m.tlsConfig = cfg }
}

func WithTimeout(d time.Duration) Option {
	return func(m *SMTPMailer) {
		if d > 0 {
			m.timeout = d
		}
	}
}

type SMTPMailer struct {
	host      string
	port      int
	username  string
	password  string
	timeout   time.Duration
	dial      DialFunc
	tlsConfig *tls.Config
}

// SendError reports a failed delivery. Its message names the server, account
// and recipients but never the credentials or the underlying cause, which is
// available through Unwrap.
type SendError struct {
	Host       string
	Port       int
	Username   string
	Recipients []string
	Err        error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send email to [%s] using SMTP server %s:%d (user=%s)",
		strings.Join(e.Recipients, ", "), e.Host, e.Port, e.Username)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// NewFromConfig builds a mailer from the SMTP settings. Host, port, username
// and password are all required.
func NewFromConfig(cfg config.SMTPConfig, opts ...Option) (*SMTPMailer, error) {
	if !cfg.Complete() {
		return nil, errors.Config("missing SMTP settings: " + strings.Join(cfg.Missing(), ", "))
	}

	m := &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if m.timeout <= 0 {
		m.timeout = defaultTimeout
	}
	dialer := &net.Dialer{}
	m.dial = dialer.DialContext
	for _, opt := range opts {
		opt(m)
	}
	if m.tlsConfig == nil {
		m.tlsConfig = &tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12}
	}
	return m, nil
}

// Send delivers one message to every recipient. An empty recipient list is
// rejected before any connection is opened.
func (m *SMTPMailer) Send(ctx context.Context, recipients []string, subject, body string, contentType ContentType) error {
	if len(recipients) == 0 {
		return errors.InvalidInput("recipients must not be empty")
	}
	if contentType == "" {
		contentType = ContentTypePlain
	}
	if contentType != ContentTypePlain && contentType != ContentTypeHTML {
		return errors.InvalidInput("unsupported content type " + string(contentType))
	}

	msg := buildMessage(m.username, recipients, subject, body, contentType, time.Now())
	if err := m.deliver(ctx, recipients, msg); err != nil {
		return &SendError{
			Host:       m.host,
			Port:       m.port,
			Username:   m.username,
			Recipients: append([]string(nil), recipients...),
			Err:        err,
		}
	}
	return nil
}

func (m *SMTPMailer) deliver(ctx context.Context, recipients []string, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	conn, err := m.dial(ctx, "tcp", net.JoinHostPort(m.host, strconv.Itoa(m.port)))
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("set deadline: %w", err)
		}
	}

	if m.port != StartTLSPort {
		tlsConn := tls.Client(conn, m.tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return fmt.Errorf("tls handshake: %w", err)
		}
		conn = tlsConn
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer client.Close()

	if m.port == StartTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(m.tlsConfig); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if err := client.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := client.Mail(m.username); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("end data: %w", err)
	}
	return client.Quit()
}
