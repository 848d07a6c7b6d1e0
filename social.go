package xsession

import (
	"context"
	"net/url"
	"strings"
)

// followForm builds the include-flag payload the web client sends with its
// 1.1 friendship calls.
func followForm(userID string) url.Values {
	return url.Values{
		"include_profile_interstitial_type": {"1"},
		"include_blocking":                  {"1"},
		"include_blocked_by":                {"1"},
		"include_followed_by":               {"1"},
		"include_want_retweets":             {"1"},
		"include_mute_edge":                 {"1"},
		"include_can_dm":                    {"1"},
		"include_can_media_tag":             {"1"},
		"include_ext_is_blue_verified":      {"1"},
		"include_ext_verified_type":         {"1"},
		"include_ext_profile_image_shape":   {"1"},
		"skip_status":                       {"1"},
		"user_id":                           {userID},
	}
}

// Follow follows a user. Following an already-followed account succeeds;
// for protected accounts a pending follow request counts as success too.
func (c *Client) Follow(ctx context.Context, userID string) (*User, error) {
	return c.relationshipOp(ctx, "Follow", followURL, followForm(userID), userID)
}

// Unfollow unfollows a user. Unfollowing an account that is not followed
// succeeds.
func (c *Client) Unfollow(ctx context.Context, userID string) (*User, error) {
	return c.relationshipOp(ctx, "Unfollow", unfollowURL, followForm(userID), userID)
}

// Block blocks a user. Blocking an already-blocked account succeeds.
func (c *Client) Block(ctx context.Context, userID string) (*User, error) {
	return c.relationshipOp(ctx, "Block", blockURL, url.Values{"user_id": {userID}}, userID)
}

// Unblock removes a block. Unblocking a non-blocked account succeeds.
func (c *Client) Unblock(ctx context.Context, userID string) (*User, error) {
	return c.relationshipOp(ctx, "Unblock", unblockURL, url.Values{"user_id": {userID}}, userID)
}

// Mute mutes a user. Muting an already-muted account succeeds.
func (c *Client) Mute(ctx context.Context, userID string) (*User, error) {
	return c.relationshipOp(ctx, "Mute", muteURL, url.Values{"user_id": {userID}}, userID)
}

// Unmute removes a mute. Unmuting a non-muted account succeeds.
func (c *Client) Unmute(ctx context.Context, userID string) (*User, error) {
	return c.relationshipOp(ctx, "Unmute", unmuteURL, url.Values{"user_id": {userID}}, userID)
}

// relationshipOp executes a 1.1 social-graph write. The endpoints are
// naturally idempotent and return the target user; the one exception is a
// repeated follow request to a protected account, which surfaces as an API
// error code and is resolved with a profile lookup instead.
func (c *Client) relationshipOp(ctx context.Context, op, urlStr string, form url.Values, userID string) (*User, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "is empty"}
	}
	body, err := c.doForm(ctx, op, urlStr, form)
	if err != nil {
		if alreadyInState(err) {
			return c.GetUserByID(ctx, userID)
		}
		return nil, err
	}
	return parseLegacyUser(op, body)
}

// followRequestForm is the accept/deny payload: the follow include flags
// plus the fixed cursor the web client sends.
func followRequestForm(userID string) url.Values {
	form := followForm(userID)
	form.Set("cursor", "-1")
	return form
}

// AcceptFollowRequest approves a pending follow request on the session's
// protected account and returns the new follower.
func (c *Client) AcceptFollowRequest(ctx context.Context, userID string) (*User, error) {
	return c.relationshipOp(ctx, "AcceptFollowRequest", acceptFollowURL, followRequestForm(userID), userID)
}

// RejectFollowRequest declines a pending follow request.
func (c *Client) RejectFollowRequest(ctx context.Context, userID string) (*User, error) {
	return c.relationshipOp(ctx, "RejectFollowRequest", denyFollowURL, followRequestForm(userID), userID)
}

// GetFollowRequests returns a lazy iterator over accounts waiting for
// permission to follow the session's protected account. The listing is
// ID-based; each page is hydrated into full profiles with a bulk lookup.
func (c *Client) GetFollowRequests(limit int) *Iterator[*User] {
	return newIterator(limit, func(ctx context.Context, cursor string) ([]*User, string, error) {
		if cursor == "" {
			cursor = "-1"
		}
		q := url.Values{"cursor": {cursor}, "stringify_ids": {"true"}}
		body, err := c.doGET(ctx, "FollowRequests", followRequestsURL+"?"+q.Encode())
		if err != nil {
			return nil, "", err
		}
		ids, next, err := parseIncomingIDs(body)
		if err != nil {
			return nil, "", err
		}
		if len(ids) == 0 {
			return nil, next, nil
		}
		users, err := c.lookupUsers(ctx, ids)
		if err != nil {
			return nil, "", err
		}
		return users, next, nil
	})
}

// lookupUsers hydrates a batch of user IDs through users/lookup.
func (c *Client) lookupUsers(ctx context.Context, ids []string) ([]*User, error) {
	q := followForm(strings.Join(ids, ","))
	body, err := c.doGET(ctx, "UsersLookup", usersLookupURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return parseLegacyUsers("UsersLookup", body)
}

// GetFriendship returns the relationship between the session's account and
// another user.
func (c *Client) GetFriendship(ctx context.Context, userID string) (*FollowRelationship, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "is empty"}
	}
	q := url.Values{"target_id": {userID}}
	body, err := c.doGET(ctx, "FriendshipShow", friendshipShowURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return parseFriendship(body)
}
