package digest

import (
	"context"
	"sync"
)

type SenderStub struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func NewSenderStub() *SenderStub {
	return &SenderStub{}
}

func (s *SenderStub) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *SenderStub) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

func (s *SenderStub) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}
