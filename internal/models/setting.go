package models

import "time"

// SettingYoutubeLiveURL is the site_settings key of the live stream link.
const SettingYoutubeLiveURL = "youtube_live_url"

// SiteSetting is a row of the site_settings key/value table.
type SiteSetting struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// YoutubeLinkRequest updates the live stream link. An empty URL clears it.
type YoutubeLinkRequest struct {
	URL string `json:"url" validate:"omitempty,url,startswith=http"`
}
