package xsession

import (
	"context"
	"unicode/utf8"
)

// Composition limits enforced before any network call.
const (
	maxTweetLen   = 280
	maxTweetMedia = 4
)

// validateTweet checks composition limits shared by immediate and scheduled
// posting.
func validateTweet(text string, opts *TweetOptions) error {
	if utf8.RuneCountInString(text) > maxTweetLen {
		return &ValidationError{Field: "text", Reason: "exceeds 280 characters"}
	}
	if text == "" && len(opts.MediaIDs) == 0 {
		return &ValidationError{Field: "text", Reason: "is empty and no media attached"}
	}
	if len(opts.MediaIDs) > maxTweetMedia {
		return &ValidationError{Field: "media_ids", Reason: "more than 4 attachments"}
	}
	return nil
}

// PostTweet publishes a tweet. Validation failures surface as
// ValidationError without touching the network. opts may be nil.
func (c *Client) PostTweet(ctx context.Context, text string, opts *TweetOptions) (*Tweet, error) {
	if opts == nil {
		opts = &TweetOptions{}
	}
	if err := validateTweet(text, opts); err != nil {
		return nil, err
	}

	mediaEntities := make([]map[string]any, 0, len(opts.MediaIDs))
	for _, id := range opts.MediaIDs {
		mediaEntities = append(mediaEntities, map[string]any{
			"media_id":     id,
			"tagged_users": []string{},
		})
	}
	variables := map[string]any{
		"tweet_text":   text,
		"dark_request": false,
		"media": map[string]any{
			"media_entities":     mediaEntities,
			"possibly_sensitive": false,
		},
		"semantic_annotation_ids": []string{},
	}
	if opts.ReplyTo != "" {
		variables["reply"] = map[string]any{
			"in_reply_to_tweet_id":   opts.ReplyTo,
			"exclude_reply_user_ids": []string{},
		}
		variables["batch_compose"] = "BatchSubsequent"
	}
	if opts.Quote != "" {
		variables["attachment_url"] = "https://twitter.com/i/status/" + opts.Quote
	}

	body, err := c.doPOST(ctx, "CreateTweet", Endpoints["CreateTweet"].URL(), gqlPayload("CreateTweet", variables))
	if err != nil {
		return nil, err
	}
	return parseCreateTweet(body)
}

// DeleteTweet removes a tweet owned by the session's account. Deleting a
// tweet that no longer exists returns NotFoundError.
func (c *Client) DeleteTweet(ctx context.Context, tweetID string) error {
	if tweetID == "" {
		return &ValidationError{Field: "tweet_id", Reason: "is empty"}
	}
	variables := map[string]any{
		"tweet_id":     tweetID,
		"dark_request": false,
	}
	_, err := c.doPOST(ctx, "DeleteTweet", Endpoints["DeleteTweet"].URL(), gqlPayload("DeleteTweet", variables))
	return err
}

// tweetDetailVariables builds the TweetDetail query variables the web
// client sends.
func tweetDetailVariables(tweetID string) map[string]any {
	return map[string]any{
		"focalTweetId":                           tweetID,
		"with_rux_injections":                    false,
		"includePromotedContent":                 true,
		"withCommunity":                          true,
		"withQuickPromoteEligibilityTweetFields": true,
		"withBirdwatchNotes":                     true,
		"withVoice":                              true,
		"withV2Timeline":                         true,
	}
}

// GetTweet fetches a single tweet with its engagement counters. Deleted and
// inaccessible tweets map to NotFoundError.
func (c *Client) GetTweet(ctx context.Context, tweetID string) (*Tweet, error) {
	if tweetID == "" {
		return nil, &ValidationError{Field: "tweet_id", Reason: "is empty"}
	}
	fieldToggles := map[string]any{
		"withArticleRichContentState": true,
	}
	body, err := c.doGET(ctx, "TweetDetail", gqlURL("TweetDetail", tweetDetailVariables(tweetID), fieldToggles))
	if err != nil {
		return nil, err
	}
	return parseTweetDetail(body, tweetID)
}

// GetTweetConversation fetches the conversation around a tweet: the tweet
// itself plus the ancestors and replies Twitter surfaces on its detail page,
// in timeline order. An inaccessible conversation yields an empty slice.
func (c *Client) GetTweetConversation(ctx context.Context, tweetID string) ([]*Tweet, error) {
	if tweetID == "" {
		return nil, &ValidationError{Field: "tweet_id", Reason: "is empty"}
	}
	fieldToggles := map[string]any{
		"withArticleRichContentState": true,
	}
	body, err := c.doGET(ctx, "TweetDetail", gqlURL("TweetDetail", tweetDetailVariables(tweetID), fieldToggles))
	if err != nil {
		return nil, err
	}
	return parseTweetConversation(body)
}

// GetTweetMetrics returns the engagement counters of a tweet.
func (c *Client) GetTweetMetrics(ctx context.Context, tweetID string) (*TweetMetrics, error) {
	t, err := c.GetTweet(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	return &TweetMetrics{
		TweetID:   t.ID,
		Likes:     t.Likes,
		Retweets:  t.Retweets,
		Replies:   t.Replies,
		Quotes:    t.Quotes,
		Bookmarks: t.Bookmarks,
		Views:     t.Views,
	}, nil
}

// LikeTweet likes a tweet. Liking an already-liked tweet succeeds.
func (c *Client) LikeTweet(ctx context.Context, tweetID string) error {
	return c.engagementOp(ctx, "FavoriteTweet", tweetID, map[string]any{"tweet_id": tweetID})
}

// UnlikeTweet removes a like. Unliking a tweet that was never liked succeeds.
func (c *Client) UnlikeTweet(ctx context.Context, tweetID string) error {
	return c.engagementOp(ctx, "UnfavoriteTweet", tweetID, map[string]any{"tweet_id": tweetID})
}

// Retweet retweets a tweet and returns the ID of the new retweet status. A
// tweet that is already retweeted succeeds with an empty ID.
func (c *Client) Retweet(ctx context.Context, tweetID string) (string, error) {
	if tweetID == "" {
		return "", &ValidationError{Field: "tweet_id", Reason: "is empty"}
	}
	variables := map[string]any{
		"tweet_id":     tweetID,
		"dark_request": false,
	}
	body, err := c.doPOST(ctx, "CreateRetweet", Endpoints["CreateRetweet"].URL(), gqlPayload("CreateRetweet", variables))
	if err != nil {
		if alreadyInState(err) {
			return "", nil
		}
		return "", err
	}
	return parseRetweetResult(body)
}

// Unretweet removes a retweet. Unretweeting a tweet that is not retweeted
// succeeds.
func (c *Client) Unretweet(ctx context.Context, tweetID string) error {
	return c.engagementOp(ctx, "DeleteRetweet", tweetID, map[string]any{
		"source_tweet_id": tweetID,
		"dark_request":    false,
	})
}

// BookmarkTweet adds a tweet to the session's bookmarks.
func (c *Client) BookmarkTweet(ctx context.Context, tweetID string) error {
	return c.engagementOp(ctx, "CreateBookmark", tweetID, map[string]any{"tweet_id": tweetID})
}

// UnbookmarkTweet removes a tweet from the session's bookmarks.
func (c *Client) UnbookmarkTweet(ctx context.Context, tweetID string) error {
	return c.engagementOp(ctx, "DeleteBookmark", tweetID, map[string]any{"tweet_id": tweetID})
}

// engagementOp executes a GraphQL engagement mutation. An already-in-state
// API code counts as success.
func (c *Client) engagementOp(ctx context.Context, op, tweetID string, variables map[string]any) error {
	if tweetID == "" {
		return &ValidationError{Field: "tweet_id", Reason: "is empty"}
	}
	_, err := c.doPOST(ctx, op, Endpoints[op].URL(), gqlPayload(op, variables))
	if err != nil && alreadyInState(err) {
		return nil
	}
	return err
}
