package core

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const anonymousRespondent = "Anonymous"

type SurveyService struct {
	docs    backend.Documents
	baseURL string
	now     func() time.Time
}

// NewSurveyService creates the survey service. Share links are built under
// baseURL.
func NewSurveyService(docs backend.Documents, baseURL string) *SurveyService {
	return &SurveyService{docs: docs, baseURL: strings.TrimRight(baseURL, "/"), now: now}
}

func (s *SurveyService) List(ctx context.Context) ([]model.Survey, error) {
	surveys, err := listAll[model.Survey](ctx, s.docs, backend.Surveys, backend.NewQuery().OrderDesc(backend.FieldCreatedAt))
	if err != nil {
		return nil, fail(ctx, "load surveys", err)
	}
	return surveys, nil
}

func (s *SurveyService) Get(ctx context.Context, id string) (model.Survey, error) {
	survey, err := get[model.Survey](ctx, s.docs, backend.Surveys, id)
	if err != nil {
		return model.Survey{}, fail(ctx, "load survey", err)
	}
	return survey, nil
}

// Create saves a validated draft with the given status and a fresh share
// link.
func (s *SurveyService) Create(ctx context.Context, d *SurveyDraft, status model.SurveyStatus) (model.Survey, error) {
	if err := d.Validate(); err != nil {
		return model.Survey{}, err
	}
	if status == "" {
		status = model.SurveyDraft
	}
	if err := validSurveyStatus(status); err != nil {
		return model.Survey{}, err
	}

	code := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	survey, err := create(ctx, s.docs, backend.Surveys, model.Survey{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Status:      status,
		CreatedAt:   s.now(),
		ExpiresAt:   d.ExpiresAt,
		Anonymous:   d.Anonymous,
		ShareLink:   fmt.Sprintf("%s/s/%s", s.baseURL, code),
		Questions:   d.Questions,
	})
	if err != nil {
		return model.Survey{}, fail(ctx, "create survey", err)
	}
	log.Ctx(ctx).Info().Str("surveyId", survey.ID).Msg("Survey created")
	return survey, nil
}

func (s *SurveyService) UpdateStatus(ctx context.Context, survey model.Survey, status model.SurveyStatus) (model.Survey, error) {
	if err := validSurveyStatus(status); err != nil {
		return survey, err
	}
	updated, err := update(ctx, s.docs, backend.Surveys, survey.ID, survey, map[string]any{"status": status})
	if err != nil {
		return survey, fail(ctx, "update survey", err)
	}
	return updated, nil
}

// SubmitResponse records one respondent's answers. The survey must be
// active and not expired, and every answer must fit its question.
func (s *SurveyService) SubmitResponse(ctx context.Context, surveyID, respondent string, answers []model.Answer) (model.SurveyResponse, error) {
	survey, err := s.Get(ctx, surveyID)
	if err != nil {
		return model.SurveyResponse{}, err
	}
	if survey.Status != model.SurveyActive {
		return model.SurveyResponse{}, invalid("survey", "This survey is not accepting responses")
	}
	submittedAt := s.now()
	if survey.Expired(submittedAt) {
		return model.SurveyResponse{}, invalid("survey", "This survey has expired")
	}
	if err := ValidateAnswers(survey, answers); err != nil {
		return model.SurveyResponse{}, err
	}

	if survey.Anonymous || strings.TrimSpace(respondent) == "" {
		respondent = anonymousRespondent
	}
	resp, err := create(ctx, s.docs, backend.SurveyResponses, model.SurveyResponse{
		SurveyID:    surveyID,
		Respondent:  respondent,
		SubmittedAt: submittedAt,
		Answers:     answers,
	})
	if err != nil {
		return model.SurveyResponse{}, fail(ctx, "submit response", err)
	}
	return resp, nil
}

// Responses returns every response of a survey, newest first.
func (s *SurveyService) Responses(ctx context.Context, surveyID string) ([]model.SurveyResponse, error) {
	q := backend.NewQuery().Equal("surveyId", surveyID).OrderDesc("submittedAt")
	responses, err := listAll[model.SurveyResponse](ctx, s.docs, backend.SurveyResponses, q)
	if err != nil {
		return nil, fail(ctx, "load responses", err)
	}
	return responses, nil
}

func (s *SurveyService) Summary(ctx context.Context, surveyID string) (model.SurveySummary, error) {
	survey, err := s.Get(ctx, surveyID)
	if err != nil {
		return model.SurveySummary{}, err
	}
	responses, err := s.Responses(ctx, surveyID)
	if err != nil {
		return model.SurveySummary{}, err
	}
	return Summarize(survey, responses), nil
}

func validSurveyStatus(status model.SurveyStatus) error {
	switch status {
	case model.SurveyActive, model.SurveyCompleted, model.SurveyDraft:
		return nil
	}
	return invalid("status", "Unknown survey status %q", status)
}

// ValidateAnswers checks answers against the survey's questions: required
// questions are answered and every answer fits its question variant.
func ValidateAnswers(survey model.Survey, answers []model.Answer) error {
	byQuestion := make(map[string]model.Answer, len(answers))
	for _, a := range answers {
		if _, dup := byQuestion[a.QuestionID]; dup {
			return invalid("answers", "Question %s answered twice", a.QuestionID)
		}
		byQuestion[a.QuestionID] = a
	}

	known := make(map[string]bool, len(survey.Questions))
	for n, q := range survey.Questions {
		b := q.Base()
		known[b.ID] = true
		a, ok := byQuestion[b.ID]
		if !ok || answerEmpty(q, a) {
			if b.Required {
				return invalid("answers", "Question %d is required", n+1)
			}
			continue
		}

		switch v := q.(type) {
		case *model.MultipleChoice:
			if len(a.Choices) != 1 || !slices.Contains(v.Options, a.Choices[0]) {
				return invalid("answers", "Question %d: choose one of the options", n+1)
			}
		case *model.Checkbox:
			seen := make(map[string]bool, len(a.Choices))
			for _, c := range a.Choices {
				if !slices.Contains(v.Options, c) || seen[c] {
					return invalid("answers", "Question %d: %q is not a valid option", n+1, c)
				}
				seen[c] = true
			}
		case *model.Rating:
			if a.Rating < 1 || a.Rating > v.Scale {
				return invalid("answers", "Question %d: rating must be between 1 and %d", n+1, v.Scale)
			}
		case *model.Text:
		default:
			panic(fmt.Sprintf("unhandled question variant %T", q))
		}
	}

	for id := range byQuestion {
		if !known[id] {
			return invalid("answers", "Unknown question %s", id)
		}
	}
	return nil
}

func answerEmpty(q model.Question, a model.Answer) bool {
	switch q.(type) {
	case *model.MultipleChoice, *model.Checkbox:
		return len(a.Choices) == 0
	case *model.Rating:
		return a.Rating == 0
	case *model.Text:
		return strings.TrimSpace(a.Text) == ""
	}
	panic(fmt.Sprintf("unhandled question variant %T", q))
}

// Summarize aggregates responses per question: option counts for choice
// questions, a histogram and average for ratings, and the collected text
// answers.
func Summarize(survey model.Survey, responses []model.SurveyResponse) model.SurveySummary {
	summary := model.SurveySummary{
		SurveyID:       survey.ID,
		Title:          survey.Title,
		TotalResponses: len(responses),
		Questions:      make([]model.QuestionSummary, 0, len(survey.Questions)),
	}

	for _, q := range survey.Questions {
		b := q.Base()
		qs := model.QuestionSummary{QuestionID: b.ID, Prompt: b.Prompt, Type: q.Type()}

		var answers []model.Answer
		for _, r := range responses {
			for _, a := range r.Answers {
				if a.QuestionID == b.ID && !answerEmpty(q, a) {
					answers = append(answers, a)
				}
			}
		}
		qs.Answered = len(answers)

		switch v := q.(type) {
		case *model.MultipleChoice:
			qs.OptionCounts = countOptions(v.Options, answers)
		case *model.Checkbox:
			qs.OptionCounts = countOptions(v.Options, answers)
		case *model.Rating:
			qs.RatingCounts = make([]int, max(v.Scale, 0))
			sum, n := 0, 0
			for _, a := range answers {
				if a.Rating >= 1 && a.Rating <= v.Scale {
					qs.RatingCounts[a.Rating-1]++
					sum += a.Rating
					n++
				}
			}
			if n > 0 {
				qs.Average = float64(sum) / float64(n)
			}
		case *model.Text:
			for _, a := range answers {
				qs.TextAnswers = append(qs.TextAnswers, a.Text)
			}
		default:
			panic(fmt.Sprintf("unhandled question variant %T", q))
		}
		summary.Questions = append(summary.Questions, qs)
	}
	return summary
}

func countOptions(options []string, answers []model.Answer) []model.OptionCount {
	counts := make([]model.OptionCount, len(options))
	index := make(map[string]int, len(options))
	for i, o := range options {
		counts[i].Option = o
		index[o] = i
	}
	for _, a := range answers {
		for _, c := range a.Choices {
			if i, ok := index[c]; ok {
				counts[i].Count++
			}
		}
	}
	return counts
}
