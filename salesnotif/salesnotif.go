package salesnotif

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

var (
	instance *SalesNotifier
	once     sync.Once
)

type SalesNotifier struct {
	webhookURL  string
	environment string
	appName     string
	mu          sync.RWMutex
}

// Init initializes the global sales notifier instance
func Init(webhookURL, environment string) {
	once.Do(func() {
		instance = &SalesNotifier{
			webhookURL:  webhookURL,
			environment: environment,
			appName:     "CartShare",
		}
	})
}

// New sends a sales notification message to Slack
func New(userID string, message string) {
	if instance == nil {
		log.Printf("⚠️ Sales notifier not initialized, skipping notification: %s", message)
		return
	}

	instance.send(userID, message)
}

func (s *SalesNotifier) send(userID string, message string) {
	if s.webhookURL == "" {
		return // Sales notifications disabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Send notification asynchronously to avoid blocking
	go s.sendSlackNotification(userID, message)
}

func (s *SalesNotifier) sendSlackNotification(userID string, message string) {
	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Service:* %s", s.appName), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Environment:* %s", s.environment), false, false),
	}

	if userID != "" {
		fields = append(fields, slack.NewTextBlockObject(
			slack.MarkdownType,
			fmt.Sprintf("*UserID:* `%s`", userID),
			false, false,
		))
	}

	fields = append(fields, slack.NewTextBlockObject(
		slack.MarkdownType,
		fmt.Sprintf("*Timestamp:* %s", time.Now().Format("2006-01-02 15:04:05 UTC")),
		false, false,
	))

	msg := &slack.WebhookMessage{
		Blocks: &slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewSectionBlock(nil, fields, nil),
				slack.NewSectionBlock(
					slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("📊 *Activity:*\n%s", message), false, false),
					nil, nil,
				),
			},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		log.Printf("❌ Failed to send sales notification: %v", err)
		return
	}

	log.Printf("💰 Sales notification sent: %s", message)
}
