package core

import (
	"context"
	"strings"
	"testing"

	"fieldops.service/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurveyCreateBuildsShareLink(t *testing.T) {
	ctx := context.Background()
	svc := NewSurveyService(seededStore(t), "https://survey.example.com/")
	svc.now = fixedClock

	d := NewSurveyDraft()
	d.Title = "Onboarding"
	id := d.Questions[0].Base().ID
	require.NoError(t, d.SetPrompt(id, "Rate your onboarding"))
	require.NoError(t, d.ChangeType(id, model.QuestionRating))

	survey, err := svc.Create(ctx, d, "")
	require.NoError(t, err)
	assert.Equal(t, model.SurveyDraft, survey.Status)
	assert.True(t, strings.HasPrefix(survey.ShareLink, "https://survey.example.com/s/"))
	assert.Len(t, strings.TrimPrefix(survey.ShareLink, "https://survey.example.com/s/"), 10)
	require.Len(t, survey.Questions, 1)
	assert.Equal(t, model.QuestionRating, survey.Questions[0].Type())

	survey, err = svc.UpdateStatus(ctx, survey, model.SurveyActive)
	require.NoError(t, err)
	assert.Equal(t, model.SurveyActive, survey.Status)
	assert.Equal(t, "Onboarding", survey.Title)

	_, err = svc.UpdateStatus(ctx, survey, "Archived")
	assert.Error(t, err)
}

func TestSubmitResponseValidatesAnswers(t *testing.T) {
	ctx := context.Background()
	svc := NewSurveyService(seededStore(t), "")
	svc.now = fixedClock

	tests := []struct {
		name    string
		answers []model.Answer
		wantErr string
	}{
		{
			name:    "missing required",
			answers: []model.Answer{{QuestionID: "q1", Choices: []string{"Good"}}},
			wantErr: "Question 2 is required",
		},
		{
			name:    "choice outside options",
			answers: []model.Answer{{QuestionID: "q1", Choices: []string{"Great"}}, {QuestionID: "q2", Rating: 5}},
			wantErr: "Question 1: choose one of the options",
		},
		{
			name:    "rating above scale",
			answers: []model.Answer{{QuestionID: "q1", Choices: []string{"Good"}}, {QuestionID: "q2", Rating: 11}},
			wantErr: "Question 2: rating must be between 1 and 10",
		},
		{
			name:    "unknown question",
			answers: []model.Answer{{QuestionID: "q1", Choices: []string{"Good"}}, {QuestionID: "q2", Rating: 5}, {QuestionID: "q9", Text: "?"}},
			wantErr: "Unknown question q9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitResponse(ctx, "s1", "Ann", tt.answers)
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	resp, err := svc.SubmitResponse(ctx, "s1", "Ann", []model.Answer{
		{QuestionID: "q1", Choices: []string{"Average"}},
		{QuestionID: "q2", Rating: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", resp.Respondent, "anonymous surveys hide the respondent")
	assert.Equal(t, testNow, resp.SubmittedAt)

	_, err = svc.SubmitResponse(ctx, "s4", "Ann", nil)
	assert.EqualError(t, err, "This survey is not accepting responses")
}

func TestSurveySummary(t *testing.T) {
	svc := NewSurveyService(seededStore(t), "")

	summary, err := svc.Summary(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalResponses)
	require.Len(t, summary.Questions, 3)

	choice := summary.Questions[0]
	assert.Equal(t, []model.OptionCount{
		{Option: "Excellent", Count: 1}, {Option: "Good", Count: 1},
		{Option: "Average"}, {Option: "Poor"}, {Option: "Very Poor"},
	}, choice.OptionCounts)

	rating := summary.Questions[1]
	assert.InDelta(t, 8.5, rating.Average, 0.001)
	require.Len(t, rating.RatingCounts, 10)
	assert.Equal(t, 1, rating.RatingCounts[7])
	assert.Equal(t, 1, rating.RatingCounts[8])

	text := summary.Questions[2]
	assert.ElementsMatch(t, []string{"More detailed project updates", "Faster response times to inquiries"}, text.TextAnswers)
}

func TestSummarizeToleratesInvalidScale(t *testing.T) {
	survey := model.Survey{Questions: model.Questions{
		&model.Rating{QuestionBase: model.QuestionBase{ID: "q1"}, Scale: -1},
	}}
	responses := []model.SurveyResponse{{Answers: []model.Answer{{QuestionID: "q1", Rating: 3}}}}

	var summary model.SurveySummary
	require.NotPanics(t, func() { summary = Summarize(survey, responses) })
	require.Len(t, summary.Questions, 1)
	assert.Empty(t, summary.Questions[0].RatingCounts)
	assert.Zero(t, summary.Questions[0].Average)
}

func TestFilterSurveys(t *testing.T) {
	surveys := []model.Survey{{Title: "Customer Satisfaction"}, {Title: "Site", Description: "hazard walk"}}
	assert.Len(t, FilterSurveys(surveys, "HAZARD"), 1)
	assert.Len(t, FilterSurveys(surveys, ""), 2)
}
