package notify

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// LogSender writes each OTP as one JSON line instead of delivering it.
// Development only: it prints the secret the flows exist to protect.
type LogSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogSender returns a sender that writes to w.
func NewLogSender(w io.Writer) *LogSender {
	return &LogSender{w: w}
}

func (s *LogSender) SendOTP(_ context.Context, email, code string) error {
	record := struct {
		Timestamp time.Time `json:"timestamp"`
		Email     string    `json:"email"`
		Code      string    `json:"code"`
	}{time.Now(), email, code}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	_, err = s.w.Write([]byte("\n"))
	return err
}
