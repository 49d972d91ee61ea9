package notifier

import (
	"context"
	"fmt"
	"github.com/slack-go/slack"
	"log/slog"
	"sync"
	"time"
)

const defaultChannelRefresh = time.Hour

// SlackNotifier posts each message to all Slack channels the bot is a member of.
// The list of channels is cached for ChannelRefresh (default: one hour).
type SlackNotifier struct {
	Logger *slog.Logger
	SlackSender
	Title          string
	ChannelRefresh time.Duration
	userID         string
	channels       []slack.Channel
	expiry         time.Time
	lock           sync.Mutex
}

type SlackSender interface {
	PostMessageContext(context.Context, string, ...slack.MsgOption) (string, string, error)
	GetConversationsContext(context.Context, *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	AuthTestContext(context.Context) (*slack.AuthTestResponse, error)
}

var _ Notifier = &SlackNotifier{}

func (s *SlackNotifier) Notify(ctx context.Context, msg string) {
	channels, err := s.getChannels(ctx)
	if err != nil {
		s.Logger.Error("notifier failed to retrieve channels", "err", err)
		return
	}
	for _, channel := range channels {
		s.Logger.Debug("notifying on slack", "channel", channel.Name)
		_, _, err = s.SlackSender.PostMessageContext(ctx, channel.ID, slack.MsgOptionAttachments(slack.Attachment{
			Color: "danger",
			Title: s.Title,
			Text:  msg,
		}))
		if err != nil {
			s.Logger.Error("notifier failed to post message", "err", err)
		}
	}
}

func (s *SlackNotifier) getChannels(ctx context.Context) ([]slack.Channel, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.userID == "" {
		authResp, err := s.SlackSender.AuthTestContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("AuthTest: %w", err)
		}
		s.userID = authResp.UserID
	}

	if s.channels != nil && time.Now().Before(s.expiry) {
		return s.channels, nil
	}

	joinedChannels := make([]slack.Channel, 0)
	var cursor string
	for {
		channels, nextCursor, err := s.SlackSender.GetConversationsContext(ctx, &slack.GetConversationsParameters{Cursor: cursor, Limit: 100})
		if err != nil {
			return nil, err
		}
		for _, channel := range channels {
			if channel.IsMember && !channel.IsArchived {
				joinedChannels = append(joinedChannels, channel)
			}
		}
		if cursor = nextCursor; cursor == "" {
			break
		}
	}
	refresh := s.ChannelRefresh
	if refresh <= 0 {
		refresh = defaultChannelRefresh
	}
	s.channels = joinedChannels
	s.expiry = time.Now().Add(refresh)
	return joinedChannels, nil
}
