package model

type StudyProgress struct {
	WebDev         int `json:"webDev"`
	DataStructures int `json:"dataStructures"`
}

type RecentAchievements struct {
	QuickLearner string `json:"quickLearner"`
	FocusMaster  string `json:"focusMaster"`
}

type ProgressResponse struct {
	User               string             `json:"user"`
	StudyProgress      StudyProgress      `json:"studyProgress"`
	RecentAchievements RecentAchievements `json:"recentAchievements"`
}
