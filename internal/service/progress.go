package service

import "github.com/studyhub/backend/internal/model"

// StudyProgress returns the demo progress payload for username.
func StudyProgress(username string) model.ProgressResponse {
	return model.ProgressResponse{
		User: username,
		StudyProgress: model.StudyProgress{
			WebDev:         50,
			DataStructures: 30,
		},
		RecentAchievements: model.RecentAchievements{
			QuickLearner: "Completed 5 modules quickly",
			FocusMaster:  "Studied 3 hours straight",
		},
	}
}
