package core

import (
	"testing"

	"fieldops.service/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveOptionKeepsTwo(t *testing.T) {
	d := NewSurveyDraft()
	id := d.Questions[0].Base().ID

	err := d.RemoveOption(id, 0)
	assert.ErrorIs(t, err, ErrMinOptions)
	assert.Len(t, *model.Options(d.Questions[0]), 2)

	require.NoError(t, d.AddOption(id))
	require.NoError(t, d.UpdateOption(id, 0, "a"))
	require.NoError(t, d.UpdateOption(id, 1, "b"))
	require.NoError(t, d.UpdateOption(id, 2, "c"))

	require.NoError(t, d.RemoveOption(id, 1))
	assert.Equal(t, []string{"a", "c"}, *model.Options(d.Questions[0]))
}

func TestChangeTypeReinitialisesFields(t *testing.T) {
	d := NewSurveyDraft()
	id := d.Questions[0].Base().ID
	require.NoError(t, d.SetPrompt(id, "How was the shift?"))
	require.NoError(t, d.SetRequired(id, true))

	require.NoError(t, d.ChangeType(id, model.QuestionRating))
	r, ok := d.Questions[0].(*model.Rating)
	require.True(t, ok)
	assert.Equal(t, model.DefaultRatingScale, r.Scale)
	assert.Equal(t, "How was the shift?", r.Prompt)
	assert.True(t, r.Required)
	assert.Equal(t, id, r.ID)

	assert.ErrorIs(t, d.AddOption(id), ErrNoOptions)
	require.NoError(t, d.SetScale(id, 10))
	assert.Error(t, d.SetScale(id, 11))

	require.NoError(t, d.ChangeType(id, model.QuestionCheckbox))
	assert.Equal(t, []string{"", ""}, *model.Options(d.Questions[0]))
	assert.ErrorIs(t, d.SetScale(id, 5), ErrNotRating)
}

func TestQuestionOrdering(t *testing.T) {
	d := NewSurveyDraft()
	q2 := d.AddQuestion().Base().ID
	q3 := d.AddQuestion().Base().ID
	q1 := d.Questions[0].Base().ID

	require.NoError(t, d.MoveUp(q1))
	require.NoError(t, d.MoveDown(q3))
	require.NoError(t, d.MoveUp(q3))
	assert.Equal(t, []string{q1, q3, q2}, questionIDs(d))

	require.NoError(t, d.RemoveQuestion(q3))
	require.NoError(t, d.RemoveQuestion(q1))
	assert.ErrorIs(t, d.RemoveQuestion(q2), ErrLastQuestion)
	assert.ErrorIs(t, d.MoveUp("missing"), ErrQuestionNotFound)

	q4 := d.AddQuestion().Base().ID
	assert.Equal(t, "q4", q4, "ids are never reused")
}

func TestSurveyDraftValidate(t *testing.T) {
	d := NewSurveyDraft()
	id := d.Questions[0].Base().ID
	assert.EqualError(t, d.Validate(), "Survey title is required")

	d.Title = "Site safety"
	assert.EqualError(t, d.Validate(), "Question 1 needs a prompt")

	require.NoError(t, d.SetPrompt(id, "Was PPE available?"))
	assert.EqualError(t, d.Validate(), "Question 1 has an empty option")

	require.NoError(t, d.UpdateOption(id, 0, "Yes"))
	require.NoError(t, d.UpdateOption(id, 1, "No"))
	assert.NoError(t, d.Validate())
}

func questionIDs(d *SurveyDraft) []string {
	ids := make([]string, 0, len(d.Questions))
	for _, q := range d.Questions {
		ids = append(ids, q.Base().ID)
	}
	return ids
}

func TestDraftErrorsAreIndependent(t *testing.T) {
	d := NewSurveyDraft()
	id := d.Questions[0].Base().ID

	err := d.RemoveOption(id, 0)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "options", ve.Field)
	ve.Message = "changed"

	err = d.RemoveOption(id, 0)
	assert.ErrorIs(t, err, ErrMinOptions)
	assert.EqualError(t, err, "A question needs at least two options")
}

func TestAddQuestionSkipsExistingIDs(t *testing.T) {
	d := &SurveyDraft{Questions: model.Questions{
		&model.Text{QuestionBase: model.QuestionBase{ID: "q1"}},
		&model.Text{QuestionBase: model.QuestionBase{ID: "q3"}},
	}}

	assert.Equal(t, "q4", d.AddQuestion().Base().ID)
	assert.Equal(t, "q5", d.AddQuestion().Base().ID)
}
