package digest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kotlens/kotlens/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSender sends through the Gmail API as the account that granted the
// stored OAuth token.
type GmailSender struct {
	service *gmail.Service
}

func NewGmailSender(ctx context.Context, cfg config.Gmail) (*GmailSender, error) {
	credentials, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read Gmail credentials: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(credentials, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse Gmail credentials: %w", err)
	}
	token, err := readToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		err := fmt.Errorf("unable to create Gmail client: %v", err)
		log.Error(err)
		return nil, err
	}
	return &GmailSender{service: service}, nil
}

func readToken(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read Gmail token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("unable to parse Gmail token: %w", err)
	}
	return &token, nil
}

func (g *GmailSender) Send(ctx context.Context, msg Message) error {
	raw := base64.URLEncoding.EncodeToString(msg.Bytes())
	sent, err := g.service.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send mail via Gmail: %w", err)
	}
	log.Infof("Digest mailed to %v via Gmail (message %s)", msg.To, sent.Id)
	return nil
}
