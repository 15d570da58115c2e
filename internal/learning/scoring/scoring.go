// Package scoring grades multiple-choice answers. It is pure: no storage, no
// credits and no model calls.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
)

const PassingPercentage = 70

type SubmittedAnswer struct {
	QuestionID    string `json:"questionId"`
	Answer        string `json:"answer"`
	SelectedIndex *int   `json:"selectedIndex,omitempty"`
}

type ReviewItem struct {
	QuestionID    string `json:"questionId"`
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
	Topic         string `json:"topic"`
}

type Result struct {
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Percentage     int          `json:"percentage"`
	Passed         bool         `json:"passed"`
	Review         []ReviewItem `json:"review"`
	AreasToImprove []string     `json:"areasToImprove"`
}

// Score grades submitted against questions. Unanswered questions count as
// wrong, unknown ids are ignored and the last answer for an id wins.
func Score(questions []learning.Question, submitted []SubmittedAnswer) Result {
	byID := make(map[string]string, len(submitted))
	for _, a := range submitted {
		id := strings.TrimSpace(a.QuestionID)
		if id == "" {
			continue
		}
		byID[id] = a.text(questions)
	}

	res := Result{
		TotalQuestions: len(questions),
		Review:         make([]ReviewItem, 0, len(questions)),
		AreasToImprove: []string{},
	}
	misses := map[string]int{}
	firstMiss := map[string]int{}
	for i, q := range questions {
		answer, answered := byID[q.ID]
		correct := answered && Matches(answer, q.CorrectAnswer)
		if correct {
			res.Score++
		} else {
			topic := strings.TrimSpace(q.Topic)
			if topic != "" {
				if _, seen := firstMiss[topic]; !seen {
					firstMiss[topic] = i
				}
				misses[topic]++
			}
		}
		res.Review = append(res.Review, ReviewItem{
			QuestionID:    q.ID,
			Question:      q.Text,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
			Explanation:   q.Explanation,
			Topic:         q.Topic,
		})
	}

	res.Percentage = Percentage(res.Score, res.TotalQuestions)
	res.Passed = res.Percentage >= PassingPercentage

	for topic := range misses {
		res.AreasToImprove = append(res.AreasToImprove, topic)
	}
	sort.Slice(res.AreasToImprove, func(i, j int) bool {
		a, b := res.AreasToImprove[i], res.AreasToImprove[j]
		if misses[a] != misses[b] {
			return misses[a] > misses[b]
		}
		return firstMiss[a] < firstMiss[b]
	})
	return res
}

// Percentage is round(correct/total*100), half away from zero; 0 when total is 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	if correct < 0 {
		correct = 0
	}
	if correct > total {
		correct = total
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Matches compares answers case-insensitively after trimming.
func Matches(answer, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(correct))
}

func (a SubmittedAnswer) text(questions []learning.Question) string {
	if s := strings.TrimSpace(a.Answer); s != "" || a.SelectedIndex == nil {
		return s
	}
	for _, q := range questions {
		if q.ID != a.QuestionID {
			continue
		}
		if i := *a.SelectedIndex; i >= 0 && i < len(q.Options) {
			return q.Options[i]
		}
		return ""
	}
	return ""
}
