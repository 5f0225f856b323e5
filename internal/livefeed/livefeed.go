// Package livefeed turns the change bus and the repositories into live
// subscriptions: every feed emits the full current result set of its query
// on start and again after every matching change. Consumers own the feed
// handle and must Close it; Close is idempotent and guarantees no emission
// is delivered afterwards.
package livefeed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"chatsync-service/internal/models"
	"chatsync-service/internal/observability"
	"chatsync-service/internal/repositories"
	"chatsync-service/internal/stream"
)

// Service builds feeds on top of the bus and the repositories.
type Service struct {
	bus          *stream.Bus
	chats        repositories.ChatRepository
	messages     repositories.MessageRepository
	statuses     repositories.StatusRepository
	chatLimit    int
	statusWindow time.Duration
}

// NewService constructs the feed service.
func NewService(bus *stream.Bus, chats repositories.ChatRepository, messages repositories.MessageRepository, statuses repositories.StatusRepository, chatLimit int, statusWindow time.Duration) *Service {
	return &Service{
		bus:          bus,
		chats:        chats,
		messages:     messages,
		statuses:     statuses,
		chatLimit:    chatLimit,
		statusWindow: statusWindow,
	}
}

// ChatFeed emits the caller's full chat set.
type ChatFeed struct {
	snapshots chan []models.Chat
	stop      chan struct{}
	sub       *stream.Subscription
	closeOnce sync.Once
}

// Snapshots returns the emission channel. It is closed after Close.
func (f *ChatFeed) Snapshots() <-chan []models.Chat {
	return f.snapshots
}

// Close deregisters the feed. Safe to call multiple times. Close drains the
// snapshot channel until the worker has exited and closed it, so a wakeup
// pending at Close time cannot surface an emission afterwards.
func (f *ChatFeed) Close() {
	f.closeOnce.Do(func() {
		f.sub.Cancel()
		close(f.stop)
		for range f.snapshots {
		}
	})
}

// SubscribeChats starts a live feed over the user's conversations, capped at
// the configured limit by recency.
func (s *Service) SubscribeChats(ctx context.Context, userID int) *ChatFeed {
	feed := &ChatFeed{
		snapshots: make(chan []models.Chat, 1),
		stop:      make(chan struct{}),
		sub:       s.bus.Subscribe(stream.TopicChats),
	}

	go func() {
		defer close(feed.snapshots)
		for {
			select {
			case <-feed.stop:
				return
			default:
			}

			chats, err := s.chats.ListChatsForUser(ctx, userID, s.chatLimit)
			if err != nil {
				log.Error().Err(err).Int("user_id", userID).Msg("chat feed query failed")
				observability.IncFeedError("chats")
			} else {
				if chats == nil {
					chats = []models.Chat{}
				}
				select {
				case feed.snapshots <- chats:
					observability.IncFeedEmission("chats")
				case <-feed.stop:
					return
				}
			}

			select {
			case <-feed.sub.Notify():
			case <-feed.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return feed
}

// MessageFeed emits the full re-sorted message log of one chat.
type MessageFeed struct {
	snapshots chan []models.Message
	stop      chan struct{}
	sub       *stream.Subscription
	closeOnce sync.Once
}

// Snapshots returns the emission channel. It is closed after Close.
func (f *MessageFeed) Snapshots() <-chan []models.Message {
	return f.snapshots
}

// Close deregisters the feed. Safe to call multiple times. Like
// ChatFeed.Close it drains until the worker is gone, so no emission is
// delivered after it returns.
func (f *MessageFeed) Close() {
	f.closeOnce.Do(func() {
		f.sub.Cancel()
		close(f.stop)
		for range f.snapshots {
		}
	})
}

// SubscribeMessages starts a live feed over one chat's messages. The caller
// must Close the feed when leaving the chat; a feed for a different chat is
// a separate handle.
func (s *Service) SubscribeMessages(ctx context.Context, chatID int) *MessageFeed {
	feed := &MessageFeed{
		snapshots: make(chan []models.Message, 1),
		stop:      make(chan struct{}),
		sub:       s.bus.Subscribe(stream.TopicMessages(chatID)),
	}

	go func() {
		defer close(feed.snapshots)
		for {
			select {
			case <-feed.stop:
				return
			default:
			}

			msgs, err := s.messages.ListMessages(ctx, chatID)
			if err != nil {
				log.Error().Err(err).Int("chat_id", chatID).Msg("message feed query failed")
				observability.IncFeedError("messages")
			} else {
				if msgs == nil {
					msgs = []models.Message{}
				}
				select {
				case feed.snapshots <- msgs:
					observability.IncFeedEmission("messages")
				case <-feed.stop:
					return
				}
			}

			select {
			case <-feed.sub.Notify():
			case <-feed.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return feed
}

// StatusFeed emits the statuses currently visible to the caller. It is a
// two-stage dependent subscription: the membership stage drives the status
// stage, and a membership change tears the status stage down and
// re-establishes it with a fresh contact set and cutoff.
type StatusFeed struct {
	snapshots chan []models.Status
	stop      chan struct{}
	chatSub   *stream.Subscription
	closeOnce sync.Once
}

// Snapshots returns the emission channel. It is closed after Close.
func (f *StatusFeed) Snapshots() <-chan []models.Status {
	return f.snapshots
}

// Close deregisters the feed. Safe to call multiple times. Drains until the
// worker has exited so no emission is delivered after it returns.
func (f *StatusFeed) Close() {
	f.closeOnce.Do(func() {
		f.chatSub.Cancel()
		close(f.stop)
		for range f.snapshots {
		}
	})
}

// SubscribeStatuses starts a live status feed for the user. The visibility
// cutoff is computed when the status stage is established, not per emission:
// a status aging past the window stays visible until the next membership
// change re-establishes the stage. That mirrors the upstream client.
func (s *Service) SubscribeStatuses(ctx context.Context, userID int) *StatusFeed {
	feed := &StatusFeed{
		snapshots: make(chan []models.Status, 1),
		stop:      make(chan struct{}),
		chatSub:   s.bus.Subscribe(stream.TopicChats),
	}

	go func() {
		defer close(feed.snapshots)

		var (
			statusSub *stream.Subscription
			contacts  []int
			cutoff    int64
		)
		defer func() {
			if statusSub != nil {
				statusSub.Cancel()
			}
		}()

		establish := func() error {
			if statusSub != nil {
				statusSub.Cancel()
			}
			statusSub = s.bus.Subscribe(stream.TopicStatuses)

			ids, err := s.chats.ContactIDs(ctx, userID)
			if err != nil {
				return err
			}
			contacts = ids
			cutoff = time.Now().Add(-s.statusWindow).UnixMilli()
			return nil
		}

		emit := func() bool {
			select {
			case <-feed.stop:
				return false
			default:
			}

			statuses, err := s.statuses.ListVisibleStatuses(ctx, cutoff, contacts)
			if err != nil {
				log.Error().Err(err).Int("user_id", userID).Msg("status feed query failed")
				observability.IncFeedError("statuses")
				return true
			}
			if statuses == nil {
				statuses = []models.Status{}
			}
			select {
			case feed.snapshots <- statuses:
				observability.IncFeedEmission("statuses")
				return true
			case <-feed.stop:
				return false
			}
		}

		if err := establish(); err != nil {
			log.Error().Err(err).Int("user_id", userID).Msg("status feed contact query failed")
			observability.IncFeedError("statuses")
		} else if !emit() {
			return
		}

		for {
			select {
			case <-feed.chatSub.Notify():
				if err := establish(); err != nil {
					log.Error().Err(err).Int("user_id", userID).Msg("status feed contact query failed")
					observability.IncFeedError("statuses")
					continue
				}
				if !emit() {
					return
				}
			case <-statusSub.Notify():
				if !emit() {
					return
				}
			case <-feed.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return feed
}
