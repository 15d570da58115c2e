package learning

import "time"

type ArtifactType string

const (
	ArtifactSummary ArtifactType = "summary"
	ArtifactQuiz    ArtifactType = "quiz"
	ArtifactMindMap ArtifactType = "mindmap"
	ArtifactRoadmap ArtifactType = "roadmap"
)

// RequiresCredit reports whether building the artifact calls the generative model.
func (a ArtifactType) RequiresCredit() bool {
	switch a {
	case ArtifactSummary, ArtifactQuiz, ArtifactRoadmap:
		return true
	default:
		return false
	}
}

type SummaryType string

const (
	SummaryShort    SummaryType = "short"
	SummaryMedium   SummaryType = "medium"
	SummaryDetailed SummaryType = "detailed"
)

type LearnerLevel string

const (
	LevelBeginner     LearnerLevel = "beginner"
	LevelIntermediate LearnerLevel = "intermediate"
	LevelAdvanced     LearnerLevel = "advanced"
)

type KeyTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type Summary struct {
	Short        string       `json:"short"`
	Medium       string       `json:"medium"`
	Detailed     string       `json:"detailed"`
	KeyInsights  []string     `json:"keyInsights"`
	KeyTerms     []KeyTerm    `json:"keyTerms"`
	Examples     []string     `json:"examples"`
	SummaryType  SummaryType  `json:"summaryType"`
	LearnerLevel LearnerLevel `json:"learnerLevel"`
	GeneratedAt  time.Time    `json:"generatedAt"`
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question stores CorrectAnswer as the text of the correct option.
type Question struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
	Difficulty    Difficulty `json:"difficulty"`
	Topic         string     `json:"topic"`
}

// PublicQuestion is a Question without its answer key.
type PublicQuestion struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Options    []string   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
	Topic      string     `json:"topic"`
}

func (q Question) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Text: q.Text, Options: q.Options, Difficulty: q.Difficulty, Topic: q.Topic}
}

type Quiz struct {
	Questions   []Question `json:"questions"`
	GeneratedAt time.Time  `json:"generatedAt"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type MindMapNode struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Position Position `json:"position"`
	Level    int      `json:"level"`
	Weight   float64  `json:"weight"`
}

type MindMapEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

const (
	MindMapMethodStatistical = "statistical"
	MindMapMethodEdited      = "edited"
)

type MindMap struct {
	Nodes       []MindMapNode `json:"nodes"`
	Edges       []MindMapEdge `json:"edges"`
	Confidence  float64       `json:"confidence"`
	Method      string        `json:"method"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Type  string `json:"type,omitempty"`
}

type Lesson struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	DurationMinutes int        `json:"durationMinutes"`
	Resources       []Resource `json:"resources"`
}

type Module struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Lessons     []Lesson `json:"lessons"`
}

type Phase struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Modules     []Module `json:"modules"`
}

type Roadmap struct {
	Title        string       `json:"title"`
	LearnerLevel LearnerLevel `json:"learnerLevel"`
	Phases       []Phase      `json:"phases"`
	GeneratedAt  time.Time    `json:"generatedAt"`
}

// RoadmapProgress stores lesson keys as moduleID + "::" + lessonID. Phase
// completion is always derived.
type RoadmapProgress struct {
	CompletedLessons []string  `json:"completedLessons"`
	CompletedModules []string  `json:"completedModules"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
