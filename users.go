package xsession

import (
	"context"
	"net/url"
	"unicode/utf8"
)

// Profile field limits enforced by the API.
const (
	maxProfileNameLen     = 50
	maxProfileBioLen      = 160
	maxProfileLocationLen = 30
	maxProfileWebsiteLen  = 100
)

// GetUser fetches a user profile by handle.
func (c *Client) GetUser(ctx context.Context, screenName string) (*User, error) {
	if screenName == "" {
		return nil, &ValidationError{Field: "screen_name", Reason: "is empty"}
	}
	variables := map[string]any{
		"screen_name":              screenName,
		"withSafetyModeUserFields": true,
	}
	body, err := c.doGET(ctx, "UserByScreenName", gqlURL("UserByScreenName", variables))
	if err != nil {
		return nil, err
	}
	return parseUserLookup("UserByScreenName", body, screenName)
}

// GetUserByID fetches a user profile by numeric ID.
func (c *Client) GetUserByID(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "is empty"}
	}
	variables := map[string]any{
		"userId":                   userID,
		"withSafetyModeUserFields": true,
	}
	body, err := c.doGET(ctx, "UserByRestId", gqlURL("UserByRestId", variables))
	if err != nil {
		return nil, err
	}
	return parseUserLookup("UserByRestId", body, userID)
}

// GetFollowers returns a lazy iterator over a user's followers, newest
// first. limit bounds the walk; zero walks the full list.
func (c *Client) GetFollowers(userID string, limit int) *Iterator[*User] {
	return c.followIterator("Followers", userID, limit)
}

// GetFollowing returns a lazy iterator over the accounts a user follows.
func (c *Client) GetFollowing(userID string, limit int) *Iterator[*User] {
	return c.followIterator("Following", userID, limit)
}

func (c *Client) followIterator(op, userID string, limit int) *Iterator[*User] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*User, string, error) {
		variables := map[string]any{
			"userId":                 userID,
			"count":                  50,
			"includePromotedContent": false,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		body, err := c.doGET(ctx, op, gqlURL(op, variables))
		if err != nil {
			return nil, "", err
		}
		return parseFollowTimeline(op, body)
	})
}

// GetRetweeters returns a lazy iterator over users who retweeted a tweet.
func (c *Client) GetRetweeters(tweetID string, limit int) *Iterator[*User] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*User, string, error) {
		variables := map[string]any{
			"tweetId":                tweetID,
			"count":                  20,
			"includePromotedContent": true,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		body, err := c.doGET(ctx, "Retweeters", gqlURL("Retweeters", variables))
		if err != nil {
			return nil, "", err
		}
		return parseRetweeterTimeline(body)
	})
}

// GetLikers returns a lazy iterator over users who liked a tweet.
func (c *Client) GetLikers(tweetID string, limit int) *Iterator[*User] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*User, string, error) {
		variables := map[string]any{
			"tweetId":                tweetID,
			"count":                  20,
			"includePromotedContent": true,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		body, err := c.doGET(ctx, "Favoriters", gqlURL("Favoriters", variables))
		if err != nil {
			return nil, "", err
		}
		return parseFavoriterTimeline(body)
	})
}

// GetBlocked returns a lazy iterator over accounts the session has blocked.
func (c *Client) GetBlocked(limit int) *Iterator[*User] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*User, string, error) {
		variables := map[string]any{
			"count":                  20,
			"includePromotedContent": false,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		body, err := c.doGET(ctx, "BlockedAccountsAll", gqlURL("BlockedAccountsAll", variables))
		if err != nil {
			return nil, "", err
		}
		return parseBlockedTimeline(body)
	})
}

// GetMuted returns a lazy iterator over accounts the session has muted.
func (c *Client) GetMuted(limit int) *Iterator[*User] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*User, string, error) {
		variables := map[string]any{
			"count":                  20,
			"includePromotedContent": false,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		body, err := c.doGET(ctx, "MutedAccounts", gqlURL("MutedAccounts", variables))
		if err != nil {
			return nil, "", err
		}
		return parseMutedTimeline(body)
	})
}

// UpdateProfile changes profile fields of the session's own account. Empty
// fields are left untouched. Field limits are checked before any network
// call.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*User, error) {
	if utf8.RuneCountInString(upd.Name) > maxProfileNameLen {
		return nil, &ValidationError{Field: "name", Reason: "exceeds 50 characters"}
	}
	if utf8.RuneCountInString(upd.Bio) > maxProfileBioLen {
		return nil, &ValidationError{Field: "bio", Reason: "exceeds 160 characters"}
	}
	if utf8.RuneCountInString(upd.Location) > maxProfileLocationLen {
		return nil, &ValidationError{Field: "location", Reason: "exceeds 30 characters"}
	}
	if utf8.RuneCountInString(upd.Website) > maxProfileWebsiteLen {
		return nil, &ValidationError{Field: "website", Reason: "exceeds 100 characters"}
	}

	form := url.Values{}
	if upd.Name != "" {
		form.Set("name", upd.Name)
	}
	if upd.Bio != "" {
		form.Set("description", upd.Bio)
	}
	if upd.Location != "" {
		form.Set("location", upd.Location)
	}
	if upd.Website != "" {
		form.Set("url", upd.Website)
	}
	if len(form) == 0 {
		return nil, &ValidationError{Field: "profile", Reason: "no fields to update"}
	}

	body, err := c.doForm(ctx, "UpdateProfile", updateProfileURL, form)
	if err != nil {
		return nil, err
	}
	return parseLegacyUser("UpdateProfile", body)
}
