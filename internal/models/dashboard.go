package models

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	ImagesCount     int           `json:"imagesCount"`
	UnreadCount     int           `json:"unreadCount"`
	CategoriesCount int           `json:"categoriesCount"`
	TodayDigitEntry *DigitResult  `json:"todayDigitEntry"`
	RecentUploads   []ImageResult `json:"recentUploads"`
}

// HomeSummary is what the public landing page shows.
type HomeSummary struct {
	LatestDigit  *DigitResult  `json:"latestDigit"`
	IsDigitToday bool          `json:"isDigitToday"`
	RecentImages []ImageResult `json:"recentImages"`
	IsImageToday bool          `json:"isImageToday"`
	YoutubeLink  string        `json:"youtubeLink"`
}
