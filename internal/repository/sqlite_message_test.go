package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/roadmap/internal/llm"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/alexanderramin/roadmap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessageRepo_AppendAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	plan := testutil.NewTestPlan("launch")
	require.NoError(t, repository.NewSQLitePlanRepo(db).Create(ctx, plan))
	repo := repository.NewSQLiteChatMessageRepo(db)

	now := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
	user := planner.Message{ID: "m1", Role: llm.RoleUser, Content: "Create the plan", CreatedAt: now}
	reply := planner.Message{
		ID:             "m2",
		Role:           llm.RoleAssistant,
		Content:        "✅ Plan successfully imported!",
		Downloads:      []planner.Download{{Name: "roadmap-1.json", ContentType: "application/json", Content: "[]"}},
		ImportedEvents: 4,
		CreatedAt:      now.Add(time.Second),
	}
	require.NoError(t, repo.Append(ctx, plan.ID, 1, reply))
	require.NoError(t, repo.Append(ctx, plan.ID, 0, user))

	got, err := repo.ListByPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, []planner.Message{user, reply}, got)

	n, err := repo.CountByPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUploadedFileRepo_ReplaceAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	plan := testutil.NewTestPlan("launch")
	require.NoError(t, repository.NewSQLitePlanRepo(db).Create(ctx, plan))
	repo := repository.NewSQLiteUploadedFileRepo(db)

	files := []planner.File{
		{ID: "f1", Name: "brief.txt", Kind: planner.FileText, Content: "goal", Size: 4},
		{ID: "f2", Name: "cal.ics", Kind: planner.FileCalendar, Content: "BEGIN:VCALENDAR", Size: 15, ImportedEvents: 2},
	}
	require.NoError(t, repo.ReplaceAll(ctx, plan.ID, files))

	got, err := repo.ListByPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, files, got)

	require.NoError(t, repo.ReplaceAll(ctx, plan.ID, files[1:]))
	got, err = repo.ListByPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, files[1:], got)
}
