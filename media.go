package xsession

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/url"
	"strconv"
	"time"
)

// uploadChunkSize is the APPEND segment size. The upload endpoint rejects
// segments above 5 MB.
const uploadChunkSize = 4 << 20

// Media categories accepted by the upload endpoint. The tweet_* categories
// cover media attached to tweets, the dm_* ones media sent in messages.
const (
	MediaCategoryImage   = "tweet_image"
	MediaCategoryVideo   = "tweet_video"
	MediaCategoryGIF     = "tweet_gif"
	MediaCategoryDMImage = "dm_image"
	MediaCategoryDMVideo = "dm_video"
	MediaCategoryDMGIF   = "dm_gif"
)

// validCategory reports whether category is empty or one of the
// MediaCategory constants.
func validCategory(category string) bool {
	switch category {
	case "", MediaCategoryImage, MediaCategoryVideo, MediaCategoryGIF,
		MediaCategoryDMImage, MediaCategoryDMVideo, MediaCategoryDMGIF:
		return true
	}
	return false
}

type processingInfo struct {
	State           string `json:"state"`
	CheckAfterSecs  int    `json:"check_after_secs"`
	ProgressPercent int    `json:"progress_percent"`
	Error           struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// UploadMedia uploads media in chunks and returns the media ID to attach to
// a tweet. size must be the exact byte length of r. mediaType is the MIME
// type; category is one of the MediaCategory constants, or empty for plain
// images. Video and GIF uploads block until server-side processing settles.
func (c *Client) UploadMedia(ctx context.Context, r io.Reader, size int64, mediaType, category string) (string, error) {
	if size <= 0 {
		return "", &ValidationError{Field: "size", Reason: "must be positive"}
	}
	if mediaType == "" {
		return "", &ValidationError{Field: "media_type", Reason: "is empty"}
	}
	if !validCategory(category) {
		return "", &ValidationError{Field: "media_category", Reason: "unknown category " + strconv.Quote(category)}
	}

	mediaID, err := c.uploadInit(ctx, size, mediaType, category)
	if err != nil {
		return "", err
	}

	buf := make([]byte, uploadChunkSize)
	for segment := 0; ; segment++ {
		n, rerr := io.ReadFull(r, buf)
		if n > 0 {
			if err := c.uploadAppend(ctx, mediaID, segment, buf[:n]); err != nil {
				return "", err
			}
			slog.Debug("media segment uploaded",
				slog.String("media_id", mediaID),
				slog.Int("segment", segment),
				slog.Int("bytes", n))
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			return "", fmt.Errorf("read media: %w", rerr)
		}
	}

	info, err := c.uploadFinalize(ctx, mediaID)
	if err != nil {
		return "", err
	}
	if info != nil {
		if err := c.awaitProcessing(ctx, mediaID, info); err != nil {
			return "", err
		}
	}

	slog.Info("media uploaded",
		slog.String("media_id", mediaID),
		slog.Int64("bytes", size),
		slog.String("type", mediaType))
	return mediaID, nil
}

func (c *Client) uploadInit(ctx context.Context, size int64, mediaType, category string) (string, error) {
	form := url.Values{
		"command":     {"INIT"},
		"media_type":  {mediaType},
		"total_bytes": {strconv.FormatInt(size, 10)},
	}
	if category != "" {
		form.Set("media_category", category)
	}
	body, err := c.doForm(ctx, "MediaUpload", uploadURL, form)
	if err != nil {
		return "", err
	}
	var raw struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.Unmarshal(body, &raw); err != nil || raw.MediaIDString == "" {
		return "", &UnexpectedShapeError{Endpoint: "MediaUpload", Field: "media_id_string"}
	}
	return raw.MediaIDString, nil
}

func (c *Client) uploadAppend(ctx context.Context, mediaID string, segment int, chunk []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("command", "APPEND")
	_ = w.WriteField("media_id", mediaID)
	_ = w.WriteField("segment_index", strconv.Itoa(segment))
	fw, err := w.CreateFormFile("media", "blob")
	if err != nil {
		return fmt.Errorf("multipart: %w", err)
	}
	if _, err := fw.Write(chunk); err != nil {
		return fmt.Errorf("multipart: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("multipart: %w", err)
	}

	_, err = c.do(ctx, apiRequest{
		method:      "POST",
		endpoint:    "MediaUpload",
		url:         uploadURL,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	})
	return err
}

func (c *Client) uploadFinalize(ctx context.Context, mediaID string) (*processingInfo, error) {
	form := url.Values{
		"command":  {"FINALIZE"},
		"media_id": {mediaID},
	}
	body, err := c.doForm(ctx, "MediaUpload", uploadURL, form)
	if err != nil {
		return nil, err
	}
	var raw struct {
		ProcessingInfo *processingInfo `json:"processing_info"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &UnexpectedShapeError{Endpoint: "MediaUpload", Field: "processing_info"}
	}
	return raw.ProcessingInfo, nil
}

// awaitProcessing polls STATUS until the server finishes transcoding.
func (c *Client) awaitProcessing(ctx context.Context, mediaID string, info *processingInfo) error {
	for info.State == "pending" || info.State == "in_progress" {
		wait := time.Duration(info.CheckAfterSecs) * time.Second
		if wait <= 0 {
			wait = time.Second
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}

		q := url.Values{
			"command":  {"STATUS"},
			"media_id": {mediaID},
		}
		body, err := c.doGET(ctx, "MediaUpload", uploadURL+"?"+q.Encode())
		if err != nil {
			return err
		}
		var raw struct {
			ProcessingInfo *processingInfo `json:"processing_info"`
		}
		if err := json.Unmarshal(body, &raw); err != nil || raw.ProcessingInfo == nil {
			return &UnexpectedShapeError{Endpoint: "MediaUpload", Field: "processing_info"}
		}
		info = raw.ProcessingInfo
	}

	if info.State == "failed" {
		reason := info.Error.Message
		if reason == "" {
			reason = "media processing failed"
		}
		return &ClientError{Endpoint: "MediaUpload", Status: 200, Reason: reason}
	}
	return nil
}
