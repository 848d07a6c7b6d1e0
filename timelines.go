package xsession

import "context"

// Search products, mirroring the tabs of web search. Top, Latest and Media
// are tweet products; People backs SearchUsers.
const (
	SearchTop    = "Top"
	SearchLatest = "Latest"
	SearchPeople = "People"
	SearchMedia  = "Media"
)

// GetUserTweets returns a lazy iterator over a user's tweets and retweets,
// newest first. limit bounds the walk; zero walks until the timeline ends.
func (c *Client) GetUserTweets(userID string, limit int) *Iterator[*Tweet] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*Tweet, string, error) {
		variables := map[string]any{
			"userId":                                 userID,
			"count":                                  20,
			"includePromotedContent":                 true,
			"withQuickPromoteEligibilityTweetFields": true,
			"withVoice":                              true,
			"withV2Timeline":                         true,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		body, err := c.doGET(ctx, "UserTweets", gqlURL("UserTweets", variables))
		if err != nil {
			return nil, "", err
		}
		return parseUserTweetTimeline("UserTweets", body)
	})
}

// GetUserMedia returns a lazy iterator over a user's media tweets.
func (c *Client) GetUserMedia(userID string, limit int) *Iterator[*Tweet] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*Tweet, string, error) {
		variables := map[string]any{
			"userId":                 userID,
			"count":                  20,
			"includePromotedContent": false,
			"withClientEventToken":   false,
			"withBirdwatchNotes":     false,
			"withVoice":              true,
			"withV2Timeline":         true,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		body, err := c.doGET(ctx, "UserMedia", gqlURL("UserMedia", variables))
		if err != nil {
			return nil, "", err
		}
		return parseUserTweetTimeline("UserMedia", body)
	})
}

// GetUserLikes returns a lazy iterator over tweets a user has liked. Most
// accounts expose likes only to themselves.
func (c *Client) GetUserLikes(userID string, limit int) *Iterator[*Tweet] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*Tweet, string, error) {
		variables := map[string]any{
			"userId":                 userID,
			"count":                  100,
			"includePromotedContent": false,
			"withClientEventToken":   false,
			"withBirdwatchNotes":     false,
			"withVoice":              true,
			"withV2Timeline":         true,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		body, err := c.doGET(ctx, "Likes", gqlURL("Likes", variables))
		if err != nil {
			return nil, "", err
		}
		return parseUserTweetTimeline("Likes", body)
	})
}

// GetBookmarks returns a lazy iterator over the session's bookmarked tweets.
func (c *Client) GetBookmarks(limit int) *Iterator[*Tweet] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*Tweet, string, error) {
		variables := map[string]any{
			"count":                  20,
			"includePromotedContent": true,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		body, err := c.doGET(ctx, "Bookmarks", gqlURL("Bookmarks", variables))
		if err != nil {
			return nil, "", err
		}
		return parseBookmarkTimeline(body)
	})
}

// GetHomeTimeline returns a lazy iterator over the algorithmic "For You"
// timeline of the session's account.
func (c *Client) GetHomeTimeline(limit int) *Iterator[*Tweet] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*Tweet, string, error) {
		variables := map[string]any{
			"count":                  50,
			"includePromotedContent": true,
			"latestControlAvailable": true,
			"withCommunity":          true,
			"seenTweetIds":           []string{},
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		body, err := c.doPOST(ctx, "HomeTimeline", Endpoints["HomeTimeline"].URL(), gqlPayload("HomeTimeline", variables))
		if err != nil {
			return nil, "", err
		}
		return parseHomeTimeline("HomeTimeline", body)
	})
}

// GetHomeLatestTimeline returns a lazy iterator over the chronological
// "Following" timeline of the session's account.
func (c *Client) GetHomeLatestTimeline(limit int) *Iterator[*Tweet] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*Tweet, string, error) {
		variables := map[string]any{
			"count":                  100,
			"includePromotedContent": true,
			"latestControlAvailable": true,
			"seenTweetIds":           []string{},
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		body, err := c.doPOST(ctx, "HomeLatestTimeline", Endpoints["HomeLatestTimeline"].URL(), gqlPayload("HomeLatestTimeline", variables))
		if err != nil {
			return nil, "", err
		}
		return parseHomeTimeline("HomeLatestTimeline", body)
	})
}

// searchPage fetches one SearchTimeline page for the given product.
func (c *Client) searchPage(ctx context.Context, query, product, cursor string) ([]byte, error) {
	variables := map[string]any{
		"rawQuery":    query,
		"count":       40,
		"querySource": "typed_query",
		"product":     product,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	fieldToggles := map[string]any{
		"withArticleRichContentState": false,
	}
	return c.doGET(ctx, "SearchTimeline", gqlURL("SearchTimeline", variables, fieldToggles))
}

// SearchTweets returns a lazy iterator over tweets matching a query.
// product selects the result set: SearchTop, SearchLatest or SearchMedia.
func (c *Client) SearchTweets(query, product string, limit int) *Iterator[*Tweet] {
	if query == "" {
		return failedIterator[*Tweet](&ValidationError{Field: "query", Reason: "is empty"})
	}
	if product != SearchTop && product != SearchLatest && product != SearchMedia {
		return failedIterator[*Tweet](&ValidationError{Field: "product", Reason: "must be Top, Latest or Media"})
	}
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*Tweet, string, error) {
		body, err := c.searchPage(ctx, query, product, cursor)
		if err != nil {
			return nil, "", err
		}
		return parseSearchTimeline(body)
	})
}

// SearchUsers returns a lazy iterator over accounts matching a query, the
// People tab of web search.
func (c *Client) SearchUsers(query string, limit int) *Iterator[*User] {
	if query == "" {
		return failedIterator[*User](&ValidationError{Field: "query", Reason: "is empty"})
	}
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*User, string, error) {
		body, err := c.searchPage(ctx, query, SearchPeople, cursor)
		if err != nil {
			return nil, "", err
		}
		return parseSearchUserTimeline(body)
	})
}
