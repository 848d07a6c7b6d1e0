package xsession

import (
	"errors"
	"testing"
)

func TestParseUserLookup(t *testing.T) {
	body := `{
		"data": {
			"user": {
				"result": {
					"__typename": "User",
					"id": "VXNlcjoxMjM0NQ==",
					"rest_id": "12345",
					"legacy": {
						"name": "Test User",
						"screen_name": "testuser",
						"description": "  Hello world  ",
						"location": "Berlin",
						"url": "https://example.com",
						"followers_count": 100,
						"friends_count": 50,
						"statuses_count": 200,
						"media_count": 12,
						"listed_count": 5,
						"created_at": "Mon Jan 02 15:04:05 +0000 2020",
						"verified": false,
						"protected": true,
						"can_dm": true,
						"profile_image_url_https": "https://pbs.twimg.com/profile_images/123/photo.jpg",
						"profile_banner_url": "https://pbs.twimg.com/profile_banners/123/header"
					},
					"is_blue_verified": true
				}
			}
		}
	}`

	user, err := parseUserLookup("UserByScreenName", []byte(body), "testuser")
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "12345" {
		t.Fatalf("expected ID 12345, got %s", user.ID)
	}
	if user.ScreenName != "testuser" {
		t.Fatalf("expected screen name testuser, got %s", user.ScreenName)
	}
	if user.Name != "Test User" {
		t.Fatalf("expected name Test User, got %s", user.Name)
	}
	if user.Bio != "Hello world" {
		t.Fatalf("expected trimmed bio, got %q", user.Bio)
	}
	if user.Location != "Berlin" || user.Website != "https://example.com" {
		t.Fatalf("expected location/website mapped, got %q %q", user.Location, user.Website)
	}
	if user.Followers != 100 || user.Following != 50 || user.TweetCount != 200 {
		t.Fatalf("expected counters mapped, got %d %d %d", user.Followers, user.Following, user.TweetCount)
	}
	if user.MediaCount != 12 || user.ListedCount != 5 {
		t.Fatalf("expected media/listed mapped, got %d %d", user.MediaCount, user.ListedCount)
	}
	if user.CreatedAt.Year() != 2020 {
		t.Fatalf("expected created_at parsed, got %v", user.CreatedAt)
	}
	if !user.IsVerified {
		t.Fatal("expected verified (blue)")
	}
	if !user.IsProtected || !user.CanDM {
		t.Fatal("expected protected and can_dm")
	}
	if user.AvatarURL == "" || user.BannerURL == "" {
		t.Fatal("expected avatar and banner URLs")
	}
}

func TestParseUserLookup_Unavailable(t *testing.T) {
	body := `{
		"data": {
			"user": {
				"result": {
					"__typename": "UserUnavailable",
					"rest_id": ""
				}
			}
		}
	}`

	_, err := parseUserLookup("UserByScreenName", []byte(body), "gone")
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nfErr.Kind != "user" || nfErr.ID != "gone" {
		t.Fatalf("NotFoundError = %+v", nfErr)
	}
}

func TestParseUserLookup_EmptyResult(t *testing.T) {
	_, err := parseUserLookup("UserByScreenName", []byte(`{"data":{}}`), "nobody")
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestParseUserLookup_MissingRestID(t *testing.T) {
	body := `{"data":{"user":{"result":{"__typename":"User","rest_id":"","legacy":{"screen_name":"x"}}}}}`

	_, err := parseUserLookup("UserByScreenName", []byte(body), "x")
	var shapeErr *UnexpectedShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected UnexpectedShapeError, got %v", err)
	}
	if shapeErr.Field != "rest_id" {
		t.Fatalf("Field = %q", shapeErr.Field)
	}
}

func TestParseFollowTimeline(t *testing.T) {
	body := `{
		"data": {
			"user": {
				"result": {
					"timeline": {
						"timeline": {
							"instructions": [{
								"type": "TimelineAddEntries",
								"entries": [
									{
										"entryId": "user-111",
										"content": {
											"entryType": "TimelineTimelineItem",
											"itemContent": {
												"__typename": "TimelineUser",
												"user_results": {
													"result": {
														"__typename": "User",
														"rest_id": "111",
														"legacy": {"screen_name": "alice", "name": "Alice"}
													}
												}
											}
										}
									},
									{
										"entryId": "promoted-user-999",
										"content": {
											"entryType": "TimelineTimelineItem",
											"itemContent": {
												"__typename": "TimelineUserPromoted",
												"user_results": {"result": {"rest_id": "999"}}
											}
										}
									},
									{
										"entryId": "user-222",
										"content": {
											"entryType": "TimelineTimelineItem",
											"itemContent": {
												"__typename": "TimelineUser",
												"user_results": {
													"result": {
														"__typename": "User",
														"rest_id": "222",
														"legacy": {"screen_name": "bob", "name": "Bob"}
													}
												}
											}
										}
									},
									{
										"entryId": "cursor-top-1",
										"content": {
											"entryType": "TimelineTimelineCursor",
											"cursorType": "Top",
											"value": "UP|0"
										}
									},
									{
										"entryId": "cursor-bottom-1",
										"content": {
											"entryType": "TimelineTimelineCursor",
											"cursorType": "Bottom",
											"value": "DOWN|42"
										}
									}
								]
							}]
						}
					}
				}
			}
		}
	}`

	users, cursor, err := parseFollowTimeline("Followers", []byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].ID != "111" || users[0].ScreenName != "alice" {
		t.Fatalf("first user = %+v", users[0])
	}
	if users[1].ID != "222" {
		t.Fatalf("second user = %+v", users[1])
	}
	if cursor != "DOWN|42" {
		t.Fatalf("expected bottom cursor, got %q", cursor)
	}
}

func TestParseFollowTimeline_V2Envelope(t *testing.T) {
	body := `{
		"data": {
			"user": {
				"result": {
					"timeline_v2": {
						"timeline": {
							"instructions": [{
								"type": "TimelineAddEntries",
								"entries": [{
									"entryId": "user-333",
									"content": {
										"entryType": "TimelineTimelineItem",
										"itemContent": {
											"__typename": "TimelineUser",
											"user_results": {
												"result": {"__typename": "User", "rest_id": "333", "legacy": {"screen_name": "carol"}}
											}
										}
									}
								}]
							}]
						}
					}
				}
			}
		}
	}`

	users, cursor, err := parseFollowTimeline("Following", []byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].ID != "333" {
		t.Fatalf("users = %v", users)
	}
	if cursor != "" {
		t.Fatalf("expected no cursor, got %q", cursor)
	}
}

func TestParseUserTweetTimeline(t *testing.T) {
	body := `{
		"data": {
			"user": {
				"result": {
					"timeline_v2": {
						"timeline": {
							"instructions": [
								{
									"type": "TimelinePinEntry",
									"entry": {
										"entryId": "tweet-100",
										"content": {
											"entryType": "TimelineTimelineItem",
											"itemContent": {
												"__typename": "TimelineTweet",
												"tweet_results": {
													"result": {
														"__typename": "Tweet",
														"rest_id": "100",
														"legacy": {
															"full_text": "pinned",
															"created_at": "Mon Jan 02 15:04:05 +0000 2024",
															"user_id_str": "12345"
														}
													}
												}
											}
										}
									}
								},
								{
									"type": "TimelineAddEntries",
									"entries": [
										{
											"entryId": "tweet-101",
											"content": {
												"entryType": "TimelineTimelineItem",
												"itemContent": {
													"__typename": "TimelineTweet",
													"tweet_results": {
														"result": {
															"__typename": "TweetWithVisibilityResults",
															"tweet": {
																"rest_id": "101",
																"legacy": {
																	"full_text": "limited reach",
																	"favorite_count": 3,
																	"user_id_str": "12345"
																},
																"views": {"count": "77"}
															}
														}
													}
												}
											}
										},
										{
											"entryId": "cursor-bottom-2",
											"content": {
												"entryType": "TimelineTimelineCursor",
												"cursorType": "Bottom",
												"value": "NEXT|7"
											}
										}
									]
								}
							]
						}
					}
				}
			}
		}
	}`

	tweets, cursor, err := parseUserTweetTimeline("UserTweets", []byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(tweets) != 2 {
		t.Fatalf("expected 2 tweets, got %d", len(tweets))
	}
	if tweets[0].ID != "100" || tweets[0].Text != "pinned" {
		t.Fatalf("pinned tweet = %+v", tweets[0])
	}
	if tweets[1].ID != "101" {
		t.Fatalf("expected wrapped tweet second, got %s", tweets[1].ID)
	}
	if tweets[1].Text != "limited reach" || tweets[1].Views != 77 {
		t.Fatalf("visibility-wrapped tweet = %+v", tweets[1])
	}
	if cursor != "NEXT|7" {
		t.Fatalf("cursor = %q", cursor)
	}
}

func TestParseSearchTimeline(t *testing.T) {
	body := `{
		"data": {
			"search_by_raw_query": {
				"search_timeline": {
					"timeline": {
						"instructions": [{
							"type": "TimelineAddEntries",
							"entries": [{
								"entryId": "tweet-123",
								"content": {
									"entryType": "TimelineTimelineItem",
									"itemContent": {
										"__typename": "TimelineTweet",
										"tweet_results": {
											"result": {
												"__typename": "Tweet",
												"rest_id": "123",
												"legacy": {
													"full_text": "hello world",
													"created_at": "Mon Jan 02 15:04:05 +0000 2024",
													"favorite_count": 10,
													"retweet_count": 5,
													"reply_count": 1,
													"quote_count": 2,
													"bookmark_count": 4,
													"user_id_str": "999",
													"lang": "en"
												},
												"views": {"count": "1000"}
											}
										}
									}
								}
							}]
						}]
					}
				}
			}
		}
	}`

	tweets, _, err := parseSearchTimeline([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(tweets) != 1 {
		t.Fatalf("expected 1 tweet, got %d", len(tweets))
	}
	tw := tweets[0]
	if tw.ID != "123" || tw.AuthorID != "999" {
		t.Fatalf("tweet = %+v", tw)
	}
	if tw.Views != 1000 || tw.Likes != 10 || tw.Retweets != 5 || tw.Replies != 1 || tw.Quotes != 2 || tw.Bookmarks != 4 {
		t.Fatalf("counters = %+v", tw)
	}
	if tw.Lang != "en" {
		t.Fatalf("lang = %q", tw.Lang)
	}
}

func TestParseHomeTimeline(t *testing.T) {
	body := `{
		"data": {
			"home": {
				"home_timeline_urt": {
					"instructions": [{
						"type": "TimelineAddEntries",
						"entries": [
							{
								"entryId": "tweet-600",
								"content": {
									"entryType": "TimelineTimelineItem",
									"itemContent": {
										"__typename": "TimelineTweet",
										"tweet_results": {
											"result": {"__typename": "Tweet", "rest_id": "600", "legacy": {"full_text": "home", "user_id_str": "1"}}
										}
									}
								}
							},
							{
								"entryId": "who-to-follow-1",
								"content": {
									"entryType": "TimelineTimelineModule",
									"itemContent": {"__typename": "TimelineWhoToFollow"}
								}
							}
						]
					}]
				}
			}
		}
	}`

	tweets, _, err := parseHomeTimeline("HomeTimeline", []byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(tweets) != 1 || tweets[0].ID != "600" {
		t.Fatalf("tweets = %v", tweets)
	}
}

func TestParseBookmarkTimeline(t *testing.T) {
	body := `{
		"data": {
			"bookmark_timeline_v2": {
				"timeline": {
					"instructions": [{
						"type": "TimelineAddEntries",
						"entries": [{
							"entryId": "tweet-700",
							"content": {
								"entryType": "TimelineTimelineItem",
								"itemContent": {
									"__typename": "TimelineTweet",
									"tweet_results": {
										"result": {"__typename": "Tweet", "rest_id": "700", "legacy": {"full_text": "saved", "user_id_str": "2"}}
									}
								}
							}
						}]
					}]
				}
			}
		}
	}`

	tweets, _, err := parseBookmarkTimeline([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(tweets) != 1 || tweets[0].ID != "700" {
		t.Fatalf("tweets = %v", tweets)
	}
}

func TestParseMutedTimeline_CursorByEntryID(t *testing.T) {
	body := `{
		"data": {
			"viewer": {
				"muting_timeline": {
					"timeline": {
						"instructions": [{
							"type": "TimelineAddEntries",
							"entries": [
								{
									"entryId": "user-444",
									"content": {
										"entryType": "TimelineTimelineItem",
										"itemContent": {
											"__typename": "TimelineUser",
											"user_results": {"result": {"__typename": "User", "rest_id": "444", "legacy": {"screen_name": "dave"}}}
										}
									}
								},
								{
									"entryId": "cursor-bottom-9",
									"content": {
										"__typename": "TimelineTimelineCursor",
										"value": "MUTED|9"
									}
								}
							]
						}]
					}
				}
			}
		}
	}`

	users, cursor, err := parseMutedTimeline([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].ID != "444" {
		t.Fatalf("users = %v", users)
	}
	if cursor != "MUTED|9" {
		t.Fatalf("cursor = %q", cursor)
	}
}

func TestParseTweetDetail(t *testing.T) {
	body := `{
		"data": {
			"threaded_conversation_with_injections_v2": {
				"instructions": [{
					"type": "TimelineAddEntries",
					"entries": [
						{
							"entryId": "tweet-500",
							"content": {
								"entryType": "TimelineTimelineItem",
								"itemContent": {
									"__typename": "TimelineTweet",
									"tweet_results": {
										"result": {
											"__typename": "Tweet",
											"rest_id": "500",
											"legacy": {
												"full_text": "the focal tweet",
												"favorite_count": 42,
												"retweet_count": 7,
												"reply_count": 3,
												"quote_count": 1,
												"bookmark_count": 9,
												"user_id_str": "888"
											},
											"views": {"count": "3141"}
										}
									}
								}
							}
						},
						{
							"entryId": "conversationthread-501",
							"content": {
								"entryType": "TimelineTimelineItem",
								"itemContent": {
									"__typename": "TimelineTweet",
									"tweet_results": {
										"result": {"__typename": "Tweet", "rest_id": "501", "legacy": {"full_text": "a reply", "user_id_str": "889"}}
									}
								}
							}
						}
					]
				}]
			}
		}
	}`

	tweet, err := parseTweetDetail([]byte(body), "500")
	if err != nil {
		t.Fatal(err)
	}
	if tweet.ID != "500" || tweet.Text != "the focal tweet" {
		t.Fatalf("tweet = %+v", tweet)
	}
	if tweet.Likes != 42 || tweet.Views != 3141 {
		t.Fatalf("counters = %+v", tweet)
	}
}

func TestParseTweetDetail_FocalMissing(t *testing.T) {
	body := `{"data":{"threaded_conversation_with_injections_v2":{"instructions":[]}}}`

	_, err := parseTweetDetail([]byte(body), "500")
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nfErr.Kind != "tweet" || nfErr.ID != "500" {
		t.Fatalf("NotFoundError = %+v", nfErr)
	}
}

func TestParseCreateTweet(t *testing.T) {
	body := `{
		"data": {
			"create_tweet": {
				"tweet_results": {
					"result": {
						"__typename": "Tweet",
						"rest_id": "1750000000000000001",
						"core": {
							"user_results": {"result": {"__typename": "User", "rest_id": "12345"}}
						},
						"legacy": {
							"full_text": "just posted",
							"created_at": "Tue Jan 16 10:00:00 +0000 2024"
						}
					}
				}
			}
		}
	}`

	tweet, err := parseCreateTweet([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if tweet.ID != "1750000000000000001" {
		t.Fatalf("ID = %s", tweet.ID)
	}
	if tweet.Text != "just posted" {
		t.Fatalf("Text = %q", tweet.Text)
	}
	if tweet.AuthorID != "12345" {
		t.Fatalf("AuthorID = %s (want core fallback)", tweet.AuthorID)
	}
}

func TestParseCreateTweet_Empty(t *testing.T) {
	_, err := parseCreateTweet([]byte(`{"data":{}}`))
	var shapeErr *UnexpectedShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected UnexpectedShapeError, got %v", err)
	}
}

func TestParseRetweetResult(t *testing.T) {
	body := `{"data":{"create_retweet":{"retweet_results":{"result":{"rest_id":"1750000000000000002"}}}}}`

	id, err := parseRetweetResult([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if id != "1750000000000000002" {
		t.Fatalf("id = %s", id)
	}

	if _, err = parseRetweetResult([]byte(`{"data":{}}`)); err == nil {
		t.Fatal("expected error for empty result")
	}
}

func TestParseLegacyUser(t *testing.T) {
	body := `{
		"id_str": "12345",
		"name": "Test User",
		"screen_name": "testuser",
		"location": "Berlin",
		"description": "bio here",
		"followers_count": 10,
		"friends_count": 20,
		"statuses_count": 30,
		"created_at": "Mon Jan 02 15:04:05 +0000 2020",
		"verified": true,
		"protected": false
	}`

	user, err := parseLegacyUser("Follow", []byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "12345" || user.ScreenName != "testuser" {
		t.Fatalf("user = %+v", user)
	}
	if user.Followers != 10 || user.Following != 20 || user.TweetCount != 30 {
		t.Fatalf("counters = %+v", user)
	}
	if !user.IsVerified {
		t.Fatal("expected verified")
	}
}

func TestParseLegacyUser_MissingID(t *testing.T) {
	_, err := parseLegacyUser("Follow", []byte(`{"screen_name":"x"}`))
	var shapeErr *UnexpectedShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected UnexpectedShapeError, got %v", err)
	}
	if shapeErr.Field != "id_str" {
		t.Fatalf("Field = %q", shapeErr.Field)
	}
}

func TestParseFriendship(t *testing.T) {
	body := `{
		"relationship": {
			"source": {
				"id_str": "12345",
				"following": true,
				"followed_by": false,
				"blocking": false,
				"muting": true,
				"following_requested": false,
				"can_dm": true
			},
			"target": {
				"id_str": "67890",
				"screen_name": "other"
			}
		}
	}`

	rel, err := parseFriendship([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if rel.UserID != "67890" || rel.ScreenName != "other" {
		t.Fatalf("target = %+v", rel)
	}
	if !rel.Following || rel.FollowedBy || !rel.Muting || !rel.CanDM {
		t.Fatalf("flags = %+v", rel)
	}
}

func TestParseTwitterTime(t *testing.T) {
	ts := parseTwitterTime("Mon Jan 02 15:04:05 +0000 2020")
	if ts.Year() != 2020 || ts.Month() != 1 || ts.Day() != 2 {
		t.Fatalf("parsed = %v", ts)
	}
	if !parseTwitterTime("").IsZero() {
		t.Fatal("expected zero time for empty input")
	}
	if !parseTwitterTime("garbage").IsZero() {
		t.Fatal("expected zero time for invalid input")
	}
}
