package digest

import (
	"testing"

	"github.com/kotlens/kotlens/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSMTPSender_addr(t *testing.T) {
	tests := []struct {
		name string
		host string
		port int
		want string
	}{
		{"host name", "smtp.gmail.com", 587, "smtp.gmail.com:587"},
		{"ipv4", "192.0.2.10", 465, "192.0.2.10:465"},
		{"ipv6", "::1", 25, "[::1]:25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := NewSMTPSender(config.SMTP{Host: tt.host, Port: tt.port})

			assert.Equal(t, tt.want, sender.addr())
		})
	}
}
