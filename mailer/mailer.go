// Package mailer delivers account emails.
package mailer

import (
	"context"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Mailer sends the emails of the signup and password reset flows.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
	SendPasswordReset(ctx context.Context, to, name, token string) error
}

// LogMailer writes each email to the logger instead of sending it.
type LogMailer struct {
	logger log.Logger
}

func NewLogMailer(logger log.Logger) *LogMailer {
	return &LogMailer{logger: log.With(logger, "component", "mailer")}
}

func (m *LogMailer) SendVerificationCode(_ context.Context, to, name, code string) error {
	return level.Info(m.logger).Log("msg", "verification code", "to", to, "name", name, "code", code)
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, name, token string) error {
	return level.Info(m.logger).Log("msg", "password reset", "to", to, "name", name, "token", token)
}

// Sent is one captured email.
type Sent struct {
	Kind  string
	To    string
	Value string
}

// Memory captures emails for tests.
type Memory struct {
	mu   sync.Mutex
	Sent []Sent
}

func (m *Memory) SendVerificationCode(_ context.Context, to, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, Sent{Kind: "verification", To: to, Value: code})
	return nil
}

func (m *Memory) SendPasswordReset(_ context.Context, to, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, Sent{Kind: "reset", To: to, Value: token})
	return nil
}

// Last returns the latest email of kind sent to to.
func (m *Memory) Last(kind, to string) (Sent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if m.Sent[i].Kind == kind && m.Sent[i].To == to {
			return m.Sent[i], true
		}
	}
	return Sent{}, false
}
