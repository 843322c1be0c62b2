package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type SurveyStatus string

const (
	SurveyActive    SurveyStatus = "Active"
	SurveyCompleted SurveyStatus = "Completed"
	SurveyDraft     SurveyStatus = "Draft"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionRating         QuestionType = "rating"
	QuestionText           QuestionType = "text"
	QuestionCheckbox       QuestionType = "checkbox"
)

// DefaultRatingScale is the scale a rating question starts with.
const DefaultRatingScale = 5

// Bounds of a rating scale.
const (
	MinRatingScale = 2
	MaxRatingScale = 10
)

// Question is one survey question. The concrete variants are *MultipleChoice,
// *Checkbox, *Rating and *Text; callers switch over them exhaustively.
type Question interface {
	Base() *QuestionBase
	Type() QuestionType
	isQuestion()
}

// QuestionBase holds the fields shared by every variant.
type QuestionBase struct {
	ID       string
	Prompt   string
	Required bool
}

func (b *QuestionBase) Base() *QuestionBase { return b }
func (*QuestionBase) isQuestion()           {}

type MultipleChoice struct {
	QuestionBase
	Options []string
}

func (*MultipleChoice) Type() QuestionType { return QuestionMultipleChoice }

type Checkbox struct {
	QuestionBase
	Options []string
}

func (*Checkbox) Type() QuestionType { return QuestionCheckbox }

type Rating struct {
	QuestionBase
	Scale int
}

func (*Rating) Type() QuestionType { return QuestionRating }

type Text struct {
	QuestionBase
}

func (*Text) Type() QuestionType { return QuestionText }

// NewQuestion builds an empty question of the given type. Choice questions
// start with two blank options and ratings with the default scale.
func NewQuestion(t QuestionType, base QuestionBase) (Question, error) {
	switch t {
	case QuestionMultipleChoice:
		return &MultipleChoice{QuestionBase: base, Options: []string{"", ""}}, nil
	case QuestionCheckbox:
		return &Checkbox{QuestionBase: base, Options: []string{"", ""}}, nil
	case QuestionRating:
		return &Rating{QuestionBase: base, Scale: DefaultRatingScale}, nil
	case QuestionText:
		return &Text{QuestionBase: base}, nil
	}
	return nil, fmt.Errorf("unknown question type %q", t)
}

// Options returns a pointer to the option list of a choice question, or nil
// for variants without options.
func Options(q Question) *[]string {
	switch v := q.(type) {
	case *MultipleChoice:
		return &v.Options
	case *Checkbox:
		return &v.Options
	case *Rating, *Text:
		return nil
	}
	panic(fmt.Sprintf("unhandled question variant %T", q))
}

// Questions is the ordered question list of a survey. On the wire each
// question is a flat object tagged by "type".
type Questions []Question

type questionWire struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Question string       `json:"question"`
	Required bool         `json:"required"`
	Options  []string     `json:"options,omitempty"`
	Scale    int          `json:"scale,omitempty"`
}

func (qs Questions) MarshalJSON() ([]byte, error) {
	out := make([]questionWire, 0, len(qs))
	for _, q := range qs {
		b := q.Base()
		w := questionWire{ID: b.ID, Type: q.Type(), Question: b.Prompt, Required: b.Required}
		switch v := q.(type) {
		case *MultipleChoice:
			w.Options = v.Options
		case *Checkbox:
			w.Options = v.Options
		case *Rating:
			w.Scale = v.Scale
		case *Text:
		default:
			return nil, fmt.Errorf("unhandled question variant %T", q)
		}
		out = append(out, w)
	}
	return json.Marshal(out)
}

func (qs *Questions) UnmarshalJSON(data []byte) error {
	var wires []questionWire
	if err := json.Unmarshal(data, &wires); err != nil {
		return err
	}
	out := make(Questions, 0, len(wires))
	for _, w := range wires {
		base := QuestionBase{ID: w.ID, Prompt: w.Question, Required: w.Required}
		switch w.Type {
		case QuestionMultipleChoice:
			out = append(out, &MultipleChoice{QuestionBase: base, Options: w.Options})
		case QuestionCheckbox:
			out = append(out, &Checkbox{QuestionBase: base, Options: w.Options})
		case QuestionRating:
			// Stored scales outside the bounds were not written by a draft.
			scale := w.Scale
			switch {
			case scale == 0:
				scale = DefaultRatingScale
			case scale < MinRatingScale:
				scale = MinRatingScale
			case scale > MaxRatingScale:
				scale = MaxRatingScale
			}
			out = append(out, &Rating{QuestionBase: base, Scale: scale})
		case QuestionText:
			out = append(out, &Text{QuestionBase: base})
		default:
			return fmt.Errorf("question %q: unknown type %q", w.ID, w.Type)
		}
	}
	*qs = out
	return nil
}

type Survey struct {
	ID          string       `json:"$id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      SurveyStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
	Anonymous   bool         `json:"anonymous"`
	ShareLink   string       `json:"shareLink,omitempty"`
	Questions   Questions    `json:"questions"`
}

// Expired reports whether the survey no longer accepts responses at now.
func (s Survey) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// Answer is one respondent's answer to a question. Which field is set depends
// on the question variant: Choices for choice questions, Rating for ratings
// and Text for free text.
type Answer struct {
	QuestionID string   `json:"questionId"`
	Text       string   `json:"text,omitempty"`
	Rating     int      `json:"rating,omitempty"`
	Choices    []string `json:"choices,omitempty"`
}

// SurveyResponse is an immutable set of answers.
type SurveyResponse struct {
	ID          string    `json:"$id,omitempty"`
	SurveyID    string    `json:"surveyId"`
	Respondent  string    `json:"respondent"`
	SubmittedAt time.Time `json:"submittedAt"`
	Answers     []Answer  `json:"answers"`
}

type OptionCount struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// QuestionSummary aggregates the answers for one question.
type QuestionSummary struct {
	QuestionID   string        `json:"questionId"`
	Prompt       string        `json:"question"`
	Type         QuestionType  `json:"type"`
	Answered     int           `json:"answered"`
	OptionCounts []OptionCount `json:"optionCounts,omitempty"`
	RatingCounts []int         `json:"ratingCounts,omitempty"`
	Average      float64       `json:"average,omitempty"`
	TextAnswers  []string      `json:"textAnswers,omitempty"`
}

type SurveySummary struct {
	SurveyID       string            `json:"surveyId"`
	Title          string            `json:"title"`
	TotalResponses int               `json:"totalResponses"`
	Questions      []QuestionSummary `json:"questions"`
}
