package xsession

import "fmt"

const (
	graphqlBase   = "https://x.com/i/api/graphql"
	legacyBase    = "https://twitter.com/i/api/1.1"
	legacyAPIBase = "https://api.twitter.com/1.1"
	uploadURL     = "https://upload.twitter.com/i/media/upload.json"
)

// bearerTokens is the list of known Twitter web-app bearer tokens.
var bearerTokens = []string{
	"AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA",
	"AAAAAAAAAAAAAAAAAAAAAFQODgEAAAAAVHTp76lzh3rFzcHbmHVvQxYYpTw%3DckAlMINMjmCwxUcaXbAN4XqJVdgMJaHqNOFgPMK0zN1qLqLQCF",
}

// BearerToken is the active bearer token (first in list).
var BearerToken = bearerTokens[0]

// Endpoint holds the operation ID, path template, and per-operation feature flags.
type Endpoint struct {
	ID       string
	Name     string
	Features map[string]any
}

// URL returns the full URL for this endpoint.
func (e Endpoint) URL() string {
	return fmt.Sprintf("%s/%s/%s", graphqlBase, e.ID, e.Name)
}

// EndpointURL returns the URL for a named operation, or an error if unknown.
func EndpointURL(operation string) (string, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return "", fmt.Errorf("unknown operation: %s", operation)
	}
	return ep.URL(), nil
}

// Endpoints maps operation names to their current GraphQL IDs and feature flags.
var Endpoints = map[string]Endpoint{
	"UserByScreenName":   {ID: "k5XapwcSikNsEsILW5FvgA", Name: "UserByScreenName", Features: gqlFeatures()},
	"UserByRestId":       {ID: "WJ7rCtezBVT6nk6VM5R8Bw", Name: "UserByRestId", Features: gqlFeatures()},
	"Followers":          {ID: "Uc7ZOJrxsJAzMVCcaxis8Q", Name: "Followers", Features: gqlFeatures()},
	"Following":          {ID: "PiHWpObvX9tbClrUl6rL9g", Name: "Following", Features: gqlFeatures()},
	"UserTweets":         {ID: "eS7LO5Jy3xgmd3dbL044EA", Name: "UserTweets", Features: gqlFeatures()},
	"UserMedia":          {ID: "TOU4gQw8wXIqpSzA4TYKgg", Name: "UserMedia", Features: gqlFeatures()},
	"Likes":              {ID: "B8I_QCljDBVfin21TTWMqA", Name: "Likes", Features: gqlFeatures()},
	"SearchTimeline":     {ID: "flaR-PUMshxFWZWPNpq4zA", Name: "SearchTimeline", Features: gqlFeatures()},
	"TweetDetail":        {ID: "ZkD-1KkxjcrLKp60DPY_dQ", Name: "TweetDetail", Features: gqlFeatures()},
	"Retweeters":         {ID: "i-CI8t2pJD15euZJErEDrg", Name: "Retweeters", Features: gqlFeatures()},
	"Favoriters":         {ID: "zXD9lMy1-V_N1OcON9JtEQ", Name: "Favoriters", Features: gqlFeatures()},
	"HomeTimeline":       {ID: "k3YiLNE_MAy5J-NANLERdg", Name: "HomeTimeline", Features: gqlFeatures()},
	"HomeLatestTimeline": {ID: "U0cdisy7QFIoTfu3-Okw0A", Name: "HomeLatestTimeline", Features: gqlFeatures()},
	"Bookmarks":          {ID: "uNowfj04D8HFVFMbjm6xrQ", Name: "Bookmarks", Features: bookmarksFeatures()},
	"BlockedAccountsAll": {ID: "EDuJJnhTxj5gMtDd6iifiA", Name: "BlockedAccountsAll", Features: gqlFeatures()},
	"MutedAccounts":      {ID: "7gmS7e2n-S0uFC1TqweqGA", Name: "MutedAccounts", Features: gqlFeatures()},
	"CreateTweet":        {ID: "sgqau0P5BUJPMU_lgjpd_w", Name: "CreateTweet", Features: gqlFeatures()},
	"DeleteTweet":        {ID: "VaenaVgh5q5ih7kvyVjgtg", Name: "DeleteTweet", Features: nil},
	"FavoriteTweet":      {ID: "lI07N6Otwv1PhnEgXILM7A", Name: "FavoriteTweet", Features: nil},
	"UnfavoriteTweet":    {ID: "ZYKSe-w7KEslx3JhSIk5LA", Name: "UnfavoriteTweet", Features: nil},
	"CreateRetweet":      {ID: "ojPdsZsimiJrUGLR1sjUtA", Name: "CreateRetweet", Features: nil},
	"DeleteRetweet":      {ID: "iQtK4dl5hBmXewYZuEOKVw", Name: "DeleteRetweet", Features: nil},
	"CreateBookmark":     {ID: "aoDbu3RHznuiSkQ9aNM67Q", Name: "CreateBookmark", Features: nil},
	"DeleteBookmark":     {ID: "Wlmlj2-xzyS1GN3a6cj-mQ", Name: "DeleteBookmark", Features: nil},
}

// Legacy 1.1 endpoints still used by the web app for social-graph writes.
const (
	followURL         = legacyBase + "/friendships/create.json"
	unfollowURL       = legacyBase + "/friendships/destroy.json"
	blockURL          = legacyBase + "/blocks/create.json"
	unblockURL        = legacyBase + "/blocks/destroy.json"
	muteURL           = legacyBase + "/mutes/users/create.json"
	unmuteURL         = legacyBase + "/mutes/users/destroy.json"
	friendshipShowURL = legacyBase + "/friendships/show.json"
	followRequestsURL = legacyBase + "/friendships/incoming.json"
	acceptFollowURL   = legacyBase + "/friendships/accept.json"
	denyFollowURL     = legacyBase + "/friendships/deny.json"
	usersLookupURL    = legacyBase + "/users/lookup.json"
	updateProfileURL  = legacyAPIBase + "/account/update_profile.json"
)

// gqlFeatures returns the canonical Twitter GraphQL feature flags.
func gqlFeatures() map[string]any {
	return map[string]any{
		"articles_preview_enabled":                                                false,
		"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
		"communities_web_enable_tweet_community_results_fetch":                    true,
		"creator_subscriptions_quote_tweet_preview_enabled":                       false,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"longform_notetweets_consumption_enabled":                                 true,
		"longform_notetweets_inline_media_enabled":                                true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"premium_content_api_read_enabled":                                        false,
		"profile_label_improvements_pcf_label_in_post_enabled":                    false,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"responsive_web_enhance_cards_enabled":                                    false,
		"responsive_web_graphql_exclude_directive_enabled":                        true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
		"responsive_web_grok_analyze_post_followups_enabled":                      false,
		"responsive_web_grok_image_annotation_enabled":                            false,
		"responsive_web_grok_share_attachment_enabled":                            false,
		"responsive_web_media_download_video_enabled":                             false,
		"responsive_web_twitter_article_tweet_consumption_enabled":                true,
		"rweb_tipjar_consumption_enabled":                                         true,
		"rweb_video_timestamps_enabled":                                           true,
		"standardized_nudges_misinfo":                                             true,
		"tweet_awards_web_tipping_enabled":                                        false,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"tweet_with_visibility_results_prefer_gql_media_interstitial_enabled":     false,
		"tweetypie_unmention_optimization_enabled":                                true,
		"verified_phone_label_enabled":                                            false,
		"view_counts_everywhere_api_enabled":                                      true,
	}
}

// bookmarksFeatures extends the canonical flags with the bookmark timeline flag
// the Bookmarks operation requires.
func bookmarksFeatures() map[string]any {
	f := gqlFeatures()
	f["graphql_timeline_v2_bookmark_timeline"] = true
	return f
}
