package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldops.service/internal/core/model"
)

// Rating scale bounds accepted by the builder.
const (
	MinRatingScale = model.MinRatingScale
	MaxRatingScale = model.MaxRatingScale
)

// minOptions is the fewest options a choice question may have.
const minOptions = 2

// Draft edits fail with a *ValidationError wrapping one of these.
var (
	ErrLastQuestion     = errors.New("A survey needs at least one question")
	ErrMinOptions       = errors.New("A question needs at least two options")
	ErrQuestionNotFound = errors.New("Question not found")
	ErrNoOptions        = errors.New("This question type has no options")
	ErrNotRating        = errors.New("Only rating questions have a scale")
)

// SurveyDraft is the editable state of a survey being built. Questions keep
// their ids for the lifetime of the draft; new ids are never reused.
type SurveyDraft struct {
	Title       string
	Description string
	Anonymous   bool
	ExpiresAt   *time.Time
	Questions   model.Questions

	nextID int
}

// NewSurveyDraft starts a draft with one empty multiple-choice question.
func NewSurveyDraft() *SurveyDraft {
	d := &SurveyDraft{}
	d.AddQuestion()
	return d
}

// AddQuestion appends an empty multiple-choice question and returns it.
func (d *SurveyDraft) AddQuestion() model.Question {
	for _, q := range d.Questions {
		var n int
		if _, err := fmt.Sscanf(q.Base().ID, "q%d", &n); err == nil && n > d.nextID {
			d.nextID = n
		}
	}
	d.nextID++
	q := &model.MultipleChoice{
		QuestionBase: model.QuestionBase{ID: fmt.Sprintf("q%d", d.nextID)},
		Options:      []string{"", ""},
	}
	d.Questions = append(d.Questions, q)
	return q
}

func (d *SurveyDraft) RemoveQuestion(id string) error {
	i, err := d.index(id)
	if err != nil {
		return err
	}
	if len(d.Questions) == 1 {
		return rejected("questions", ErrLastQuestion)
	}
	d.Questions = append(d.Questions[:i:i], d.Questions[i+1:]...)
	return nil
}

// ChangeType replaces a question with a fresh one of type t, keeping its
// id, prompt and required flag.
func (d *SurveyDraft) ChangeType(id string, t model.QuestionType) error {
	i, err := d.index(id)
	if err != nil {
		return err
	}
	q, err := model.NewQuestion(t, *d.Questions[i].Base())
	if err != nil {
		return &ValidationError{Field: "type", Message: err.Error()}
	}
	d.Questions[i] = q
	return nil
}

func (d *SurveyDraft) SetPrompt(id, prompt string) error {
	q, err := d.Question(id)
	if err != nil {
		return err
	}
	q.Base().Prompt = prompt
	return nil
}

func (d *SurveyDraft) SetRequired(id string, required bool) error {
	q, err := d.Question(id)
	if err != nil {
		return err
	}
	q.Base().Required = required
	return nil
}

func (d *SurveyDraft) SetScale(id string, scale int) error {
	q, err := d.Question(id)
	if err != nil {
		return err
	}
	r, ok := q.(*model.Rating)
	if !ok {
		return rejected("scale", ErrNotRating)
	}
	if scale < MinRatingScale || scale > MaxRatingScale {
		return invalid("scale", "Scale must be between %d and %d", MinRatingScale, MaxRatingScale)
	}
	r.Scale = scale
	return nil
}

func (d *SurveyDraft) AddOption(id string) error {
	opts, err := d.options(id)
	if err != nil {
		return err
	}
	*opts = append(*opts, "")
	return nil
}

// RemoveOption deletes the option at index. Choice questions never drop
// below two options.
func (d *SurveyDraft) RemoveOption(id string, index int) error {
	opts, err := d.options(id)
	if err != nil {
		return err
	}
	if len(*opts) <= minOptions {
		return rejected("options", ErrMinOptions)
	}
	if index < 0 || index >= len(*opts) {
		return invalid("options", "Option %d does not exist", index+1)
	}
	*opts = append((*opts)[:index:index], (*opts)[index+1:]...)
	return nil
}

func (d *SurveyDraft) UpdateOption(id string, index int, text string) error {
	opts, err := d.options(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*opts) {
		return invalid("options", "Option %d does not exist", index+1)
	}
	(*opts)[index] = text
	return nil
}

// MoveUp swaps a question with the one before it. The first question stays
// where it is.
func (d *SurveyDraft) MoveUp(id string) error {
	i, err := d.index(id)
	if err != nil {
		return err
	}
	if i > 0 {
		d.Questions[i-1], d.Questions[i] = d.Questions[i], d.Questions[i-1]
	}
	return nil
}

func (d *SurveyDraft) MoveDown(id string) error {
	i, err := d.index(id)
	if err != nil {
		return err
	}
	if i < len(d.Questions)-1 {
		d.Questions[i+1], d.Questions[i] = d.Questions[i], d.Questions[i+1]
	}
	return nil
}

func (d *SurveyDraft) Question(id string) (model.Question, error) {
	i, err := d.index(id)
	if err != nil {
		return nil, err
	}
	return d.Questions[i], nil
}

// Validate checks the draft is complete enough to be saved.
func (d *SurveyDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return invalid("title", "Survey title is required")
	}
	if len(d.Questions) == 0 {
		return rejected("questions", ErrLastQuestion)
	}
	for n, q := range d.Questions {
		if strings.TrimSpace(q.Base().Prompt) == "" {
			return invalid("questions", "Question %d needs a prompt", n+1)
		}
		switch v := q.(type) {
		case *model.MultipleChoice:
			if err := validateOptions(n, v.Options); err != nil {
				return err
			}
		case *model.Checkbox:
			if err := validateOptions(n, v.Options); err != nil {
				return err
			}
		case *model.Rating:
			if v.Scale < MinRatingScale || v.Scale > MaxRatingScale {
				return invalid("scale", "Question %d: scale must be between %d and %d", n+1, MinRatingScale, MaxRatingScale)
			}
		case *model.Text:
		default:
			panic(fmt.Sprintf("unhandled question variant %T", q))
		}
	}
	return nil
}

func validateOptions(n int, opts []string) error {
	if len(opts) < minOptions {
		return rejected("options", ErrMinOptions)
	}
	for _, o := range opts {
		if strings.TrimSpace(o) == "" {
			return invalid("options", "Question %d has an empty option", n+1)
		}
	}
	return nil
}

func (d *SurveyDraft) index(id string) (int, error) {
	for i, q := range d.Questions {
		if q.Base().ID == id {
			return i, nil
		}
	}
	return -1, rejected("questions", ErrQuestionNotFound)
}

func (d *SurveyDraft) options(id string) (*[]string, error) {
	q, err := d.Question(id)
	if err != nil {
		return nil, err
	}
	opts := model.Options(q)
	if opts == nil {
		return nil, rejected("options", ErrNoOptions)
	}
	return opts, nil
}
