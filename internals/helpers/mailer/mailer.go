package mailer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
)

type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a NoopMailer when SMTP_HOST is empty.
func New(cfg configs.SMTPConfig) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		log.Println("[WARN] SMTP not configured, outgoing mail is discarded")
		return NoopMailer{}
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mailer: no recipient")
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		gm.AddAlternative("text/html", msg.HTMLBody)
	}

	// gomail has no context support; honour cancellation before dialing
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.dialer.DialAndSend(gm)
}

type NoopMailer struct{}

func (NoopMailer) Send(context.Context, Message) error { return nil }

// Recorder keeps messages in memory. Used by tests.
type Recorder struct {
	mu   sync.Mutex
	Sent []Message
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, msg)
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.Sent...)
}

// SendAsync delivers best-effort outside the request; failures are only logged.
func SendAsync(m Mailer, msg Message, label string) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.Send(ctx, msg); err != nil {
			log.Printf("[WARN] mail %s to %v: %v", label, msg.To, err)
		}
	}()
}
