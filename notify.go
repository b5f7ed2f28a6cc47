package main

import (
	"log"

	"github.com/slack-go/slack"
)

// Notifier posts daily-update summaries to a Slack channel. A nil Notifier
// is valid and posts nothing, so callers never branch on configuration.
type Notifier struct {
	api       *slack.Client
	channelID string
}

func NewNotifier(cfg Config) *Notifier {
	if cfg.SlackBotToken == "" {
		return nil
	}
	return &Notifier{
		api:       slack.New(cfg.SlackBotToken),
		channelID: cfg.SlackChannelID,
	}
}

func (n *Notifier) Post(message string) {
	if n == nil {
		return
	}
	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionText(message, false))
	if err != nil {
		log.Printf("notify post error: %v", err)
	}
}
