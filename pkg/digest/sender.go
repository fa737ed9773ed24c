package digest

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/kotlens/kotlens/internal/config"
	log "github.com/sirupsen/logrus"
)

const (
	TransportSMTP  = "smtp"
	TransportGmail = "gmail"

	maxSendAttempts = 3
	dialTimeout     = 30 * time.Second
)

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns the sender configured by mail.transport.
func NewSender(ctx context.Context, cfg config.Mail) (Sender, error) {
	switch cfg.Transport {
	case "", TransportSMTP:
		return NewSMTPSender(cfg.SMTP), nil
	case TransportGmail:
		return NewGmailSender(ctx, cfg.Gmail)
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

type SMTPSender struct {
	cfg     config.SMTP
	backoff time.Duration
}

func NewSMTPSender(cfg config.SMTP) *SMTPSender {
	return &SMTPSender{cfg: cfg, backoff: time.Second}
}

// Send delivers msg, retrying with exponential backoff.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		lastErr = s.send(msg)
		if lastErr == nil {
			log.Infof("Digest mailed to %v (attempt %d)", msg.To, attempt)
			return nil
		}
		log.Warnf("Failed to send digest via %s:%d (attempt %d/%d): %v", s.cfg.Host, s.cfg.Port, attempt, maxSendAttempts, lastErr)
		if attempt == maxSendAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff << (attempt - 1)):
		}
	}
	return fmt.Errorf("failed to send mail after %d attempts: %w", maxSendAttempts, lastErr)
}

func (s *SMTPSender) send(msg Message) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	defer client.Close()

	if s.cfg.User != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(address(msg.From)); err != nil {
		return err
	}
	for _, to := range msg.To {
		if err := client.Rcpt(address(to)); err != nil {
			return err
		}
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(msg.Bytes()); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// client connects with implicit TLS on 465 and upgrades with STARTTLS elsewhere
// when the server offers it.
func (s *SMTPSender) client() (*smtp.Client, error) {
	addr := s.addr()
	dialer := &net.Dialer{Timeout: dialTimeout}
	if s.cfg.Port == 465 {
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: s.cfg.Host})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, s.cfg.Host)
	}

	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

func (s *SMTPSender) addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}
