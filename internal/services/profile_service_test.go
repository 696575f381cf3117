package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villageofwisdom/genius-backend/internal/genius"
	"github.com/villageofwisdom/genius-backend/internal/models"
	"github.com/villageofwisdom/genius-backend/internal/utils"
)

var accessCodePattern = regexp.MustCompile(`^[A-HJ-NP-Z2-9]{4}-[A-HJ-NP-Z2-9]{4}$`)

func validCreateInput() CreateProfileInput {
	return CreateProfileInput{
		StudentName:  "Amara",
		GradeLevel:   "5",
		School:       "Oak Grove Elementary",
		Relationship: "parent",
	}
}

func TestProfileServiceCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo, newFakeCache())

	p, err := svc.Create(ctx, "user-1", validCreateInput())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, models.ProfileInProgress, p.Status)
	assert.Equal(t, 0, p.PercentComplete)
	assert.Regexp(t, accessCodePattern, p.AccessCode)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), p.AccessCodeExpiresAt, time.Minute)

	sections := p.Sections.Data()
	require.Len(t, sections, len(genius.SectionOrder))
	for _, s := range sections {
		assert.Equal(t, models.SectionNotStarted, s.Status)
	}
}

func TestProfileServiceCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(newFakeProfileRepo(), newFakeCache())
	young, old := 3, 19

	tests := []struct {
		name   string
		userID string
		mutate func(*CreateProfileInput)
	}{
		{"missing user", "", func(in *CreateProfileInput) {}},
		{"missing student name", "user-1", func(in *CreateProfileInput) { in.StudentName = "" }},
		{"missing grade level", "user-1", func(in *CreateProfileInput) { in.GradeLevel = "" }},
		{"invalid relationship", "user-1", func(in *CreateProfileInput) { in.Relationship = "stranger" }},
		{"age too low", "user-1", func(in *CreateProfileInput) { in.Age = &young }},
		{"age too high", "user-1", func(in *CreateProfileInput) { in.Age = &old }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)
			_, err := svc.Create(ctx, tt.userID, in)
			assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument), "got %v", err)
		})
	}
}

func TestProfileServiceGetReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo, newFakeCache())

	p, err := svc.Create(ctx, "user-1", validCreateInput())
	require.NoError(t, err)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	callsAfterMiss := repo.getCalls

	got, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, callsAfterMiss, repo.getCalls, "second lookup should be served from cache")
}

func TestProfileServiceGetNotFound(t *testing.T) {
	svc := NewProfileService(newFakeProfileRepo(), newFakeCache())
	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound), "got %v", err)
}

func TestProfileServiceGetOwned(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(newFakeProfileRepo(), newFakeCache())

	p, err := svc.Create(ctx, "user-1", validCreateInput())
	require.NoError(t, err)

	_, err = svc.GetOwned(ctx, p.ID, "user-1")
	assert.NoError(t, err)

	_, err = svc.GetOwned(ctx, p.ID, "user-2")
	assert.True(t, utils.IsCode(err, utils.CodeForbidden), "got %v", err)
}

func TestProfileServiceMarkSectionInProgress(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo, newFakeCache())

	p, err := svc.Create(ctx, "user-1", validCreateInput())
	require.NoError(t, err)
	section := genius.SectionOrder[0]

	require.NoError(t, svc.MarkSectionInProgress(ctx, p.ID, section))
	savesAfterFirst := repo.saves

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SectionInProgress, models.FindSection(got.Sections.Data(), section).Status)

	// already in progress: no further write
	require.NoError(t, svc.MarkSectionInProgress(ctx, p.ID, section))
	assert.Equal(t, savesAfterFirst, repo.saves)
}

func TestProfileServiceApplyProgress(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo, newFakeCache())

	p, err := svc.Create(ctx, "user-1", validCreateInput())
	require.NoError(t, err)

	// a reply that did not signal completion is a no-op
	updated, err := svc.ApplyProgress(ctx, p.ID, genius.SectionOrder[0], genius.Reply{Message: "more to explore"})
	require.NoError(t, err)
	assert.Nil(t, updated)
	assert.Zero(t, repo.saves)

	updated, err = svc.ApplyProgress(ctx, p.ID, genius.SectionOrder[0], genius.Reply{
		Message:         "On to the next topic!",
		SectionComplete: true,
		SectionContent:  "Amara is a curious learner.",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	sec := models.FindSection(updated.Sections.Data(), genius.SectionOrder[0])
	require.NotNil(t, sec)
	assert.Equal(t, models.SectionComplete, sec.Status)
	assert.Equal(t, "Amara is a curious learner.", sec.Description)
	assert.Equal(t, 17, updated.PercentComplete)
	assert.Equal(t, models.ProfileInProgress, updated.Status)
}

func TestProfileServiceApplyProgressCompletesProfile(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(newFakeProfileRepo(), newFakeCache())

	p, err := svc.Create(ctx, "user-1", validCreateInput())
	require.NoError(t, err)

	var updated *models.Profile
	for _, section := range genius.SectionOrder {
		updated, err = svc.ApplyProgress(ctx, p.ID, section, genius.Reply{
			SectionComplete: true,
			SectionContent:  "Summary of " + section,
		})
		require.NoError(t, err)
		require.NotNil(t, updated)
	}

	assert.Equal(t, 100, updated.PercentComplete)
	assert.Equal(t, models.ProfileComplete, updated.Status)
	for _, s := range updated.Sections.Data() {
		assert.Equal(t, models.SectionComplete, s.Status)
		assert.Equal(t, "Summary of "+s.Title, s.Description)
	}
}
