package xsession

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const twitterTimeLayout = "Mon Jan 02 15:04:05 +0000 2006"

func parseTwitterTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(twitterTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseUserLookup parses a UserByScreenName or UserByRestId response.
// A missing or unavailable user maps to NotFoundError.
func parseUserLookup(op string, body []byte, id string) (*User, error) {
	var raw struct {
		Data struct {
			User struct {
				Result userResult `json:"result"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &UnexpectedShapeError{Endpoint: op, Field: "data"}
	}
	res := raw.Data.User.Result
	if res.TypeName == "UserUnavailable" || (res.TypeName == "" && res.RestID == "") {
		return nil, &NotFoundError{Kind: "user", ID: id}
	}
	u, err := parseUserResult(res)
	if err != nil {
		return nil, &UnexpectedShapeError{Endpoint: op, Field: "rest_id"}
	}
	return u, nil
}

// parseFollowTimeline parses Followers/Following responses.
func parseFollowTimeline(op string, body []byte) ([]*User, string, error) {
	var raw struct {
		Data struct {
			User struct {
				Result struct {
					Timeline struct {
						Timeline timelineObj `json:"timeline"`
					} `json:"timeline"`
					TimelineV2 struct {
						Timeline timelineObj `json:"timeline"`
					} `json:"timeline_v2"`
				} `json:"result"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", &UnexpectedShapeError{Endpoint: op, Field: "data"}
	}
	tl := raw.Data.User.Result.Timeline.Timeline
	if len(tl.Instructions) == 0 {
		tl = raw.Data.User.Result.TimelineV2.Timeline
	}
	users, cursor := extractUsersFromTimeline(tl)
	return users, cursor, nil
}

// parseRetweeterTimeline parses a Retweeters response.
func parseRetweeterTimeline(body []byte) ([]*User, string, error) {
	var raw struct {
		Data struct {
			RetweetersTimeline struct {
				Timeline timelineObj `json:"timeline"`
			} `json:"retweeters_timeline"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", &UnexpectedShapeError{Endpoint: "Retweeters", Field: "data"}
	}
	tl := raw.Data.RetweetersTimeline.Timeline
	if len(tl.Instructions) == 0 {
		return parseFollowTimeline("Retweeters", body)
	}
	users, cursor := extractUsersFromTimeline(tl)
	return users, cursor, nil
}

// parseFavoriterTimeline parses a Favoriters response.
func parseFavoriterTimeline(body []byte) ([]*User, string, error) {
	var raw struct {
		Data struct {
			FavoritersTimeline struct {
				Timeline timelineObj `json:"timeline"`
			} `json:"favoriters_timeline"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", &UnexpectedShapeError{Endpoint: "Favoriters", Field: "data"}
	}
	users, cursor := extractUsersFromTimeline(raw.Data.FavoritersTimeline.Timeline)
	return users, cursor, nil
}

// parseBlockedTimeline parses a BlockedAccountsAll response.
func parseBlockedTimeline(body []byte) ([]*User, string, error) {
	var raw struct {
		Data struct {
			Viewer struct {
				Timeline struct {
					Timeline timelineObj `json:"timeline"`
				} `json:"timeline"`
			} `json:"viewer"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", &UnexpectedShapeError{Endpoint: "BlockedAccountsAll", Field: "data"}
	}
	users, cursor := extractUsersFromTimeline(raw.Data.Viewer.Timeline.Timeline)
	return users, cursor, nil
}

// parseMutedTimeline parses a MutedAccounts response.
func parseMutedTimeline(body []byte) ([]*User, string, error) {
	var raw struct {
		Data struct {
			Viewer struct {
				MutingTimeline struct {
					Timeline timelineObj `json:"timeline"`
				} `json:"muting_timeline"`
			} `json:"viewer"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", &UnexpectedShapeError{Endpoint: "MutedAccounts", Field: "data"}
	}
	users, cursor := extractUsersFromTimeline(raw.Data.Viewer.MutingTimeline.Timeline)
	return users, cursor, nil
}

// parseUserTweetTimeline parses UserTweets, UserMedia, and Likes responses.
func parseUserTweetTimeline(op string, body []byte) ([]*Tweet, string, error) {
	var raw struct {
		Data struct {
			User struct {
				Result struct {
					Timeline struct {
						Timeline timelineObj `json:"timeline"`
					} `json:"timeline"`
					TimelineV2 struct {
						Timeline timelineObj `json:"timeline"`
					} `json:"timeline_v2"`
				} `json:"result"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", &UnexpectedShapeError{Endpoint: op, Field: "data"}
	}
	tl := raw.Data.User.Result.TimelineV2.Timeline
	if len(tl.Instructions) == 0 {
		tl = raw.Data.User.Result.Timeline.Timeline
	}
	tweets, cursor := extractTweetsFromTimeline(tl)
	return tweets, cursor, nil
}

// parseSearchEnvelope unwraps the SearchTimeline response down to the
// timeline object shared by all search products.
func parseSearchEnvelope(body []byte) (timelineObj, error) {
	var raw struct {
		Data struct {
			SearchByRawQuery struct {
				SearchTimeline struct {
					Timeline timelineObj `json:"timeline"`
				} `json:"search_timeline"`
			} `json:"search_by_raw_query"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return timelineObj{}, &UnexpectedShapeError{Endpoint: "SearchTimeline", Field: "data"}
	}
	return raw.Data.SearchByRawQuery.SearchTimeline.Timeline, nil
}

// parseSearchTimeline parses a tweet-product SearchTimeline response.
func parseSearchTimeline(body []byte) ([]*Tweet, string, error) {
	tl, err := parseSearchEnvelope(body)
	if err != nil {
		return nil, "", err
	}
	tweets, cursor := extractTweetsFromTimeline(tl)
	return tweets, cursor, nil
}

// parseSearchUserTimeline parses a People-product SearchTimeline response.
func parseSearchUserTimeline(body []byte) ([]*User, string, error) {
	tl, err := parseSearchEnvelope(body)
	if err != nil {
		return nil, "", err
	}
	users, cursor := extractUsersFromTimeline(tl)
	return users, cursor, nil
}

// parseHomeTimeline parses HomeTimeline and HomeLatestTimeline responses.
func parseHomeTimeline(op string, body []byte) ([]*Tweet, string, error) {
	var raw struct {
		Data struct {
			Home struct {
				HomeTimelineURT timelineObj `json:"home_timeline_urt"`
			} `json:"home"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", &UnexpectedShapeError{Endpoint: op, Field: "data"}
	}
	tweets, cursor := extractTweetsFromTimeline(raw.Data.Home.HomeTimelineURT)
	return tweets, cursor, nil
}

// parseBookmarkTimeline parses a Bookmarks response.
func parseBookmarkTimeline(body []byte) ([]*Tweet, string, error) {
	var raw struct {
		Data struct {
			BookmarkTimelineV2 struct {
				Timeline timelineObj `json:"timeline"`
			} `json:"bookmark_timeline_v2"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", &UnexpectedShapeError{Endpoint: "Bookmarks", Field: "data"}
	}
	tweets, cursor := extractTweetsFromTimeline(raw.Data.BookmarkTimelineV2.Timeline)
	return tweets, cursor, nil
}

// parseTweetConversation parses a TweetDetail response into every tweet of
// the conversation, in timeline order. Replies grouped under conversation
// thread modules are included alongside the direct entries.
func parseTweetConversation(body []byte) ([]*Tweet, error) {
	var raw struct {
		Data struct {
			ThreadedConversation struct {
				Instructions []timelineInstruction `json:"instructions"`
			} `json:"threaded_conversation_with_injections_v2"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &UnexpectedShapeError{Endpoint: "TweetDetail", Field: "data"}
	}
	tl := timelineObj{Instructions: raw.Data.ThreadedConversation.Instructions}
	tweets, _ := extractTweetsFromTimeline(tl)
	return tweets, nil
}

// parseTweetDetail extracts the focal tweet from a TweetDetail conversation.
// A conversation that does not contain the requested tweet maps to
// NotFoundError; deleted and protected tweets come back this way.
func parseTweetDetail(body []byte, tweetID string) (*Tweet, error) {
	tweets, err := parseTweetConversation(body)
	if err != nil {
		return nil, err
	}
	for _, t := range tweets {
		if t.ID == tweetID {
			return t, nil
		}
	}
	return nil, &NotFoundError{Kind: "tweet", ID: tweetID}
}

// parseCreateTweet parses the CreateTweet mutation response.
func parseCreateTweet(body []byte) (*Tweet, error) {
	var raw struct {
		Data struct {
			CreateTweet struct {
				TweetResults struct {
					Result tweetResult `json:"result"`
				} `json:"tweet_results"`
			} `json:"create_tweet"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &UnexpectedShapeError{Endpoint: "CreateTweet", Field: "data"}
	}
	t, err := parseTweetResult(raw.Data.CreateTweet.TweetResults.Result)
	if err != nil {
		return nil, &UnexpectedShapeError{Endpoint: "CreateTweet", Field: "rest_id"}
	}
	return t, nil
}

// parseRetweetResult extracts the retweet ID from a CreateRetweet response.
func parseRetweetResult(body []byte) (string, error) {
	var raw struct {
		Data struct {
			CreateRetweet struct {
				RetweetResults struct {
					Result struct {
						RestID string `json:"rest_id"`
					} `json:"result"`
				} `json:"retweet_results"`
			} `json:"create_retweet"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", &UnexpectedShapeError{Endpoint: "CreateRetweet", Field: "data"}
	}
	id := raw.Data.CreateRetweet.RetweetResults.Result.RestID
	if id == "" {
		return "", &UnexpectedShapeError{Endpoint: "CreateRetweet", Field: "rest_id"}
	}
	return id, nil
}

// --- Timeline types ---

type timelineObj struct {
	Instructions []timelineInstruction `json:"instructions"`
}

type timelineInstruction struct {
	Type    string          `json:"type"`
	Entries []timelineEntry `json:"entries"`
	Entry   *timelineEntry  `json:"entry"`
}

type timelineEntry struct {
	EntryID   string          `json:"entryId"`
	SortIndex string          `json:"sortIndex"`
	Content   timelineContent `json:"content"`
}

type timelineContent struct {
	EntryType   string          `json:"entryType"`
	TypeName    string          `json:"__typename"`
	ItemContent json.RawMessage `json:"itemContent"`
	Items       []moduleItem    `json:"items"`
	Value       string          `json:"value"`
	CursorType  string          `json:"cursorType"`
}

// moduleItem is one member of a TimelineTimelineModule entry. Conversation
// threads and grouped search results arrive this way.
type moduleItem struct {
	Item struct {
		ItemContent json.RawMessage `json:"itemContent"`
	} `json:"item"`
}

type userResult struct {
	TypeName string `json:"__typename"`
	ID       string `json:"id"`
	RestID   string `json:"rest_id"`
	Legacy   struct {
		Name             string `json:"name"`
		ScreenName       string `json:"screen_name"`
		Description      string `json:"description"`
		Location         string `json:"location"`
		URL              string `json:"url"`
		FollowersCount   int    `json:"followers_count"`
		FriendsCount     int    `json:"friends_count"`
		StatusesCount    int    `json:"statuses_count"`
		MediaCount       int    `json:"media_count"`
		ListedCount      int    `json:"listed_count"`
		CreatedAt        string `json:"created_at"`
		Verified         bool   `json:"verified"`
		Protected        bool   `json:"protected"`
		CanDM            bool   `json:"can_dm"`
		ProfileImageURL  string `json:"profile_image_url_https"`
		ProfileBannerURL string `json:"profile_banner_url"`
	} `json:"legacy"`
	IsBlueVerified bool `json:"is_blue_verified"`
}

type tweetResult struct {
	TypeName string       `json:"__typename"`
	RestID   string       `json:"rest_id"`
	Tweet    *tweetResult `json:"tweet"`
	Core     struct {
		UserResults struct {
			Result userResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	Legacy struct {
		FullText          string `json:"full_text"`
		CreatedAt         string `json:"created_at"`
		Lang              string `json:"lang"`
		FavoriteCount     int    `json:"favorite_count"`
		RetweetCount      int    `json:"retweet_count"`
		ReplyCount        int    `json:"reply_count"`
		QuoteCount        int    `json:"quote_count"`
		BookmarkCount     int    `json:"bookmark_count"`
		UserIDStr         string `json:"user_id_str"`
		InReplyToIDStr    string `json:"in_reply_to_status_id_str"`
		QuotedStatusIDStr string `json:"quoted_status_id_str"`
		PossiblySensitive bool   `json:"possibly_sensitive"`
	} `json:"legacy"`
	Views struct {
		Count string `json:"count"`
	} `json:"views"`
}

// --- Extraction helpers ---

// entryItemContents collects the item contents of an entry: the direct one
// for plain entries, the member items for module entries.
func entryItemContents(entry timelineEntry) []json.RawMessage {
	var contents []json.RawMessage
	if entry.Content.ItemContent != nil {
		contents = append(contents, entry.Content.ItemContent)
	}
	for _, m := range entry.Content.Items {
		if m.Item.ItemContent != nil {
			contents = append(contents, m.Item.ItemContent)
		}
	}
	return contents
}

func extractUsersFromTimeline(tl timelineObj) ([]*User, string) {
	var users []*User
	var nextCursor string

	for _, instruction := range tl.Instructions {
		entries := instruction.Entries
		if instruction.Entry != nil {
			entries = append(entries, *instruction.Entry)
		}
		for _, entry := range entries {
			if entry.Content.EntryType == "TimelineTimelineCursor" || entry.Content.TypeName == "TimelineTimelineCursor" {
				if entry.Content.CursorType == "Bottom" || strings.Contains(entry.EntryID, "cursor-bottom") {
					nextCursor = entry.Content.Value
				}
				continue
			}
			for _, ic := range entryItemContents(entry) {
				var item struct {
					TypeName    string `json:"__typename"`
					UserResults struct {
						Result userResult `json:"result"`
					} `json:"user_results"`
				}
				if err := json.Unmarshal(ic, &item); err != nil {
					continue
				}
				if item.TypeName != "TimelineUser" {
					continue
				}
				u, err := parseUserResult(item.UserResults.Result)
				if err != nil {
					slog.Debug("skip user parse error", slog.Any("error", err))
					continue
				}
				users = append(users, u)
			}
		}
	}
	return users, nextCursor
}

func extractTweetsFromTimeline(tl timelineObj) ([]*Tweet, string) {
	var tweets []*Tweet
	var nextCursor string

	for _, instruction := range tl.Instructions {
		entries := instruction.Entries
		if instruction.Entry != nil {
			entries = append(entries, *instruction.Entry)
		}
		for _, entry := range entries {
			if entry.Content.EntryType == "TimelineTimelineCursor" || entry.Content.TypeName == "TimelineTimelineCursor" {
				if entry.Content.CursorType == "Bottom" || strings.Contains(entry.EntryID, "cursor-bottom") {
					nextCursor = entry.Content.Value
				}
				continue
			}
			for _, ic := range entryItemContents(entry) {
				var item struct {
					TypeName     string `json:"__typename"`
					TweetResults struct {
						Result tweetResult `json:"result"`
					} `json:"tweet_results"`
				}
				if err := json.Unmarshal(ic, &item); err != nil {
					continue
				}
				if item.TypeName != "TimelineTweet" {
					continue
				}
				t, err := parseTweetResult(item.TweetResults.Result)
				if err != nil {
					slog.Debug("skip tweet parse error", slog.Any("error", err))
					continue
				}
				tweets = append(tweets, t)
			}
		}
	}
	return tweets, nextCursor
}

func parseUserResult(r userResult) (*User, error) {
	if r.TypeName == "UserUnavailable" {
		return nil, fmt.Errorf("user unavailable (suspended or restricted)")
	}
	if r.RestID == "" {
		return nil, fmt.Errorf("empty user rest_id (typename=%s)", r.TypeName)
	}
	return &User{
		ID:          r.RestID,
		ScreenName:  r.Legacy.ScreenName,
		Name:        r.Legacy.Name,
		Bio:         strings.TrimSpace(r.Legacy.Description),
		Location:    r.Legacy.Location,
		Website:     r.Legacy.URL,
		AvatarURL:   r.Legacy.ProfileImageURL,
		BannerURL:   r.Legacy.ProfileBannerURL,
		Followers:   r.Legacy.FollowersCount,
		Following:   r.Legacy.FriendsCount,
		TweetCount:  r.Legacy.StatusesCount,
		MediaCount:  r.Legacy.MediaCount,
		ListedCount: r.Legacy.ListedCount,
		CreatedAt:   parseTwitterTime(r.Legacy.CreatedAt),
		IsVerified:  r.Legacy.Verified || r.IsBlueVerified,
		IsProtected: r.Legacy.Protected,
		CanDM:       r.Legacy.CanDM,
	}, nil
}

func parseTweetResult(r tweetResult) (*Tweet, error) {
	// Limited-visibility tweets come wrapped one level deeper.
	if r.TypeName == "TweetWithVisibilityResults" && r.Tweet != nil {
		return parseTweetResult(*r.Tweet)
	}
	if r.RestID == "" {
		return nil, fmt.Errorf("empty tweet rest_id (typename=%s)", r.TypeName)
	}

	authorID := r.Legacy.UserIDStr
	if authorID == "" {
		authorID = r.Core.UserResults.Result.RestID
	}

	views := 0
	if r.Views.Count != "" {
		views, _ = strconv.Atoi(r.Views.Count)
	}

	return &Tweet{
		ID:          r.RestID,
		AuthorID:    authorID,
		Text:        r.Legacy.FullText,
		CreatedAt:   parseTwitterTime(r.Legacy.CreatedAt),
		Lang:        r.Legacy.Lang,
		Views:       views,
		Likes:       r.Legacy.FavoriteCount,
		Retweets:    r.Legacy.RetweetCount,
		Replies:     r.Legacy.ReplyCount,
		Quotes:      r.Legacy.QuoteCount,
		Bookmarks:   r.Legacy.BookmarkCount,
		InReplyToID: r.Legacy.InReplyToIDStr,
		QuotedID:    r.Legacy.QuotedStatusIDStr,
		IsSensitive: r.Legacy.PossiblySensitive,
	}, nil
}

// --- Legacy 1.1 shapes ---

type legacyUser struct {
	IDStr            string `json:"id_str"`
	Name             string `json:"name"`
	ScreenName       string `json:"screen_name"`
	Location         string `json:"location"`
	Description      string `json:"description"`
	URL              string `json:"url"`
	Protected        bool   `json:"protected"`
	FollowersCount   int    `json:"followers_count"`
	FriendsCount     int    `json:"friends_count"`
	ListedCount      int    `json:"listed_count"`
	CreatedAt        string `json:"created_at"`
	Verified         bool   `json:"verified"`
	StatusesCount    int    `json:"statuses_count"`
	MediaCount       int    `json:"media_count"`
	ProfileImageURL  string `json:"profile_image_url_https"`
	ProfileBannerURL string `json:"profile_banner_url"`
}

func mapLegacyUser(raw legacyUser) *User {
	return &User{
		ID:          raw.IDStr,
		ScreenName:  raw.ScreenName,
		Name:        raw.Name,
		Bio:         strings.TrimSpace(raw.Description),
		Location:    raw.Location,
		Website:     raw.URL,
		AvatarURL:   raw.ProfileImageURL,
		BannerURL:   raw.ProfileBannerURL,
		Followers:   raw.FollowersCount,
		Following:   raw.FriendsCount,
		TweetCount:  raw.StatusesCount,
		MediaCount:  raw.MediaCount,
		ListedCount: raw.ListedCount,
		CreatedAt:   parseTwitterTime(raw.CreatedAt),
		IsVerified:  raw.Verified,
		IsProtected: raw.Protected,
	}
}

// parseLegacyUser parses the flat user object returned by 1.1 endpoints.
func parseLegacyUser(op string, body []byte) (*User, error) {
	var raw legacyUser
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &UnexpectedShapeError{Endpoint: op, Field: "user"}
	}
	if raw.IDStr == "" {
		return nil, &UnexpectedShapeError{Endpoint: op, Field: "id_str"}
	}
	return mapLegacyUser(raw), nil
}

// parseLegacyUsers parses the user array returned by users/lookup. Entries
// without an id cannot be addressed and are dropped.
func parseLegacyUsers(op string, body []byte) ([]*User, error) {
	var raw []legacyUser
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &UnexpectedShapeError{Endpoint: op, Field: "users"}
	}
	users := make([]*User, 0, len(raw))
	for _, u := range raw {
		if u.IDStr == "" {
			continue
		}
		users = append(users, mapLegacyUser(u))
	}
	return users, nil
}

// parseIncomingIDs parses a friendships/incoming page. The cursor scheme is
// the classic 1.1 one: "0" marks the end of the listing.
func parseIncomingIDs(body []byte) ([]string, string, error) {
	var raw struct {
		IDs        []string `json:"ids"`
		NextCursor string   `json:"next_cursor_str"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", &UnexpectedShapeError{Endpoint: "FollowRequests", Field: "ids"}
	}
	next := raw.NextCursor
	if next == "0" {
		next = ""
	}
	return raw.IDs, next, nil
}

// parseFriendship parses a friendships/show response.
func parseFriendship(body []byte) (*FollowRelationship, error) {
	var raw struct {
		Relationship struct {
			Source struct {
				Following          bool `json:"following"`
				FollowedBy         bool `json:"followed_by"`
				Blocking           bool `json:"blocking"`
				Muting             bool `json:"muting"`
				FollowingRequested bool `json:"following_requested"`
				CanDM              bool `json:"can_dm"`
			} `json:"source"`
			Target struct {
				IDStr      string `json:"id_str"`
				ScreenName string `json:"screen_name"`
			} `json:"target"`
		} `json:"relationship"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &UnexpectedShapeError{Endpoint: "FriendshipShow", Field: "relationship"}
	}
	if raw.Relationship.Target.IDStr == "" {
		return nil, &UnexpectedShapeError{Endpoint: "FriendshipShow", Field: "relationship"}
	}
	rel := raw.Relationship
	return &FollowRelationship{
		UserID:     rel.Target.IDStr,
		ScreenName: rel.Target.ScreenName,
		Following:  rel.Source.Following,
		FollowedBy: rel.Source.FollowedBy,
		Blocking:   rel.Source.Blocking,
		Muting:     rel.Source.Muting,
		Requested:  rel.Source.FollowingRequested,
		CanDM:      rel.Source.CanDM,
	}, nil
}
