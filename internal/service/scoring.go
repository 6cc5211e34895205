package service

import (
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/util"
	"time"

	"gorm.io/datatypes"
)

// AnswerOutcome is one scored answer routed to the statistics of its question's category.
type AnswerOutcome struct {
	QuestionID string
	Category   model.Category
	Correct    bool
}

// Score counts the answers marked correct.
func Score(answers []model.QuestionAnswer) int {
	score := 0
	for _, a := range answers {
		if a.IsCorrect {
			score++
		}
	}
	return score
}

// ElapsedSeconds truncates completedAt - startedAt to whole seconds.
func ElapsedSeconds(startedAt, completedAt time.Time) int {
	return int(completedAt.Sub(startedAt) / time.Second)
}

func accuracy(correct, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return util.Percent(correct, attempted)
}

// ApplyAnswer folds one answer into the user's overall and per-category statistics.
func ApplyAnswer(u *model.User, category model.Category, correct bool) {
	stats := u.Stats.Data()
	stats.TotalQuestionsAttempted++
	if correct {
		stats.CorrectAnswers++
	}
	stats.Accuracy = accuracy(stats.CorrectAnswers, stats.TotalQuestionsAttempted)
	u.Stats = datatypes.NewJSONType(stats)

	buckets := u.CategoryStats.Data()
	next := make(map[string]model.CategoryStats, len(buckets)+1)
	for k, v := range buckets {
		next[k] = v
	}
	bucket := next[string(category)]
	bucket.Attempted++
	if correct {
		bucket.Correct++
	}
	bucket.Accuracy = accuracy(bucket.Correct, bucket.Attempted)
	next[string(category)] = bucket
	u.CategoryStats = datatypes.NewJSONType(next)
}
