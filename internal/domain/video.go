package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Video represents one entry in the catalog.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	EmbedURL    string    `json:"embed_url"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Category    string    `json:"category"`
	IsPremium   bool      `json:"is_premium"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VideoListing is a catalog entry as seen by a particular viewer. IsLocked is
// derived per request: premium videos are locked unless the viewer holds an
// active paid plan.
type VideoListing struct {
	Video
	IsLocked bool `json:"is_locked"`
}

// Listing derives the viewer-facing form of the video. Locked entries carry
// no playable URL.
func (v Video) Listing(viewerHasPremium bool) VideoListing {
	l := VideoListing{Video: v}
	if v.IsPremium && !viewerHasPremium {
		l.IsLocked = true
		l.URL = ""
		l.EmbedURL = ""
	}
	return l
}

// NormalizeEmbedURL converts a YouTube watch or share link into its embed
// form. Already-embed URLs and non-YouTube URLs pass through unchanged.
func NormalizeEmbedURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse video url: %w", err)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if strings.HasPrefix(u.Path, "/embed/") {
			return raw, nil
		}
		id := u.Query().Get("v")
		if id == "" {
			return "", fmt.Errorf("youtube url missing video id: %s", raw)
		}
		return "https://www.youtube.com/embed/" + id, nil
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return "", fmt.Errorf("youtube short url missing video id: %s", raw)
		}
		return "https://www.youtube.com/embed/" + id, nil
	default:
		return raw, nil
	}
}
