package trivia

// Question is a single multiple-choice question. The last question of a
// trivia is reserved as the tie-break spare and is not part of the
// regular run.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Trivia is an ordered question list keyed by trivia id.
type Trivia struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// QuestionAt returns the question at index, or nil when out of range.
func (t *Trivia) QuestionAt(index int) *Question {
	if index < 0 || index >= len(t.Questions) {
		return nil
	}
	return &t.Questions[index]
}

// SpareIndex returns the index of the reserved tie-break question, or -1
// when the trivia has no questions.
func (t *Trivia) SpareIndex() int {
	return len(t.Questions) - 1
}

// TotalQuestions is the number of questions in the regular run, which
// excludes the tie-break spare.
func (t *Trivia) TotalQuestions() int {
	if len(t.Questions) == 0 {
		return 0
	}
	return len(t.Questions) - 1
}
