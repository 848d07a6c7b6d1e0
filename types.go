package xsession

import "time"

// User represents an X/Twitter account profile.
type User struct {
	ID          string
	ScreenName  string
	Name        string
	Bio         string
	Location    string
	Website     string
	AvatarURL   string
	BannerURL   string
	Followers   int
	Following   int
	TweetCount  int
	MediaCount  int
	ListedCount int
	CreatedAt   time.Time
	IsVerified  bool
	IsProtected bool
	CanDM       bool
}

// Tweet represents a single tweet.
type Tweet struct {
	ID          string
	AuthorID    string
	Text        string
	CreatedAt   time.Time
	Lang        string
	Views       int
	Likes       int
	Retweets    int
	Replies     int
	Quotes      int
	Bookmarks   int
	InReplyToID string
	QuotedID    string
	IsSensitive bool
}

// TweetMetrics is the engagement snapshot for one tweet.
type TweetMetrics struct {
	TweetID   string
	Likes     int
	Retweets  int
	Replies   int
	Quotes    int
	Bookmarks int
	Views     int
}

// FollowRelationship describes the edge between the session user and a
// target account.
type FollowRelationship struct {
	UserID     string
	ScreenName string
	Following  bool
	FollowedBy bool
	Blocking   bool
	Muting     bool
	Requested  bool // pending follow request to a protected account
	CanDM      bool
}

// TweetOptions carries the optional parts of a tweet creation call.
type TweetOptions struct {
	MediaIDs []string // up to 4 previously uploaded media IDs
	ReplyTo  string   // tweet ID to reply to
	Quote    string   // tweet ID to quote
}

// ProfileUpdate holds the profile fields to change. Empty fields are left
// untouched.
type ProfileUpdate struct {
	Name     string
	Bio      string
	Location string
	Website  string
}
