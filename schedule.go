package xsession

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sort"
	"sync"
	"time"
)

const (
	schedulePending = iota
	scheduleDelivering
	scheduleDelivered
	scheduleCanceled
)

// ScheduledTweet is a pending tweet held in memory until delivered. It lives
// only inside the process; dropping the client drops the schedule.
type ScheduledTweet struct {
	ID   string
	Text string
	At   time.Time

	client *Client
	opts   *TweetOptions

	mu       sync.Mutex
	state    int
	cancelCh chan struct{}
}

func newScheduleID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ScheduleTweet registers a tweet for delivery at a strictly future time.
// Composition limits are checked immediately; nothing touches the network
// until Deliver runs.
func (c *Client) ScheduleTweet(text string, at time.Time, opts *TweetOptions) (*ScheduledTweet, error) {
	if opts == nil {
		opts = &TweetOptions{}
	}
	if err := validateTweet(text, opts); err != nil {
		return nil, err
	}
	if !at.After(time.Now()) {
		return nil, &ValidationError{Field: "at", Reason: "must be in the future"}
	}

	st := &ScheduledTweet{
		ID:       newScheduleID(),
		Text:     text,
		At:       at,
		client:   c,
		opts:     opts,
		cancelCh: make(chan struct{}),
	}
	c.mu.Lock()
	c.scheduled[st.ID] = st
	c.mu.Unlock()

	slog.Info("tweet scheduled",
		slog.String("schedule_id", st.ID),
		slog.Time("at", at))
	return st, nil
}

// ScheduledTweets returns the schedules that have neither delivered nor been
// canceled, ordered by delivery time.
func (c *Client) ScheduledTweets() []*ScheduledTweet {
	c.mu.Lock()
	out := make([]*ScheduledTweet, 0, len(c.scheduled))
	for _, s := range c.scheduled {
		out = append(out, s)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

func (c *Client) removeScheduled(id string) {
	c.mu.Lock()
	delete(c.scheduled, id)
	c.mu.Unlock()
}

// Deliver blocks until the scheduled time, then posts the tweet. Cancel
// interrupts the wait. Each schedule delivers at most once; a failed post
// leaves the schedule pending so delivery can be retried.
func (s *ScheduledTweet) Deliver(ctx context.Context) (*Tweet, error) {
	if wait := time.Until(s.At); wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-t.C:
		case <-s.cancelCh:
			return nil, &ValidationError{Field: "schedule", Reason: "canceled"}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	switch s.state {
	case scheduleCanceled:
		s.mu.Unlock()
		return nil, &ValidationError{Field: "schedule", Reason: "canceled"}
	case scheduleDelivering, scheduleDelivered:
		s.mu.Unlock()
		return nil, &ValidationError{Field: "schedule", Reason: "already delivered"}
	}
	s.state = scheduleDelivering
	s.mu.Unlock()

	tw, err := s.client.PostTweet(ctx, s.Text, s.opts)
	s.mu.Lock()
	if err != nil {
		s.state = schedulePending
		s.mu.Unlock()
		return nil, err
	}
	s.state = scheduleDelivered
	s.mu.Unlock()

	s.client.removeScheduled(s.ID)
	slog.Info("scheduled tweet delivered",
		slog.String("schedule_id", s.ID),
		slog.String("tweet_id", tw.ID))
	return tw, nil
}

// Cancel withdraws a pending schedule. It reports whether the schedule was
// still pending.
func (s *ScheduledTweet) Cancel() bool {
	s.mu.Lock()
	if s.state != schedulePending {
		s.mu.Unlock()
		return false
	}
	s.state = scheduleCanceled
	close(s.cancelCh)
	s.mu.Unlock()

	s.client.removeScheduled(s.ID)
	return true
}
