package handler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/monodash/internal/domain"
	"github.com/rezkam/monodash/internal/ptr"
)

func TestTodoToResponse_OmitsEmptyOptionalFields(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	item, err := domain.NewTodoItem("Write report", "", domain.Day{}, now)
	require.NoError(t, err)

	resp := todoToResponse(*item)
	assert.Nil(t, resp.Note)
	assert.Nil(t, resp.DueDay)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "note")
	assert.NotContains(t, string(raw), "dueDay")
}

func TestTodoToResponse_CopiesFields(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	due, err := domain.ParseDay("2025-03-20")
	require.NoError(t, err)
	item, err := domain.NewTodoItem("Plan sprint", "Discuss blockers", due, now)
	require.NoError(t, err)

	resp := todoToResponse(*item)
	assert.Equal(t, item.ID(), resp.ID)
	assert.Equal(t, "Plan sprint", resp.Title)
	assert.Equal(t, ptr.To("Discuss blockers"), resp.Note)
	assert.Equal(t, ptr.To("2025-03-20"), resp.DueDay)
	assert.Equal(t, now, resp.CreatedAt)
}

func TestTodoRequest_Fields(t *testing.T) {
	t.Run("absent optionals are empty", func(t *testing.T) {
		title, note, due, err := TodoRequest{Title: "A"}.fields()
		require.NoError(t, err)
		assert.Equal(t, "A", title)
		assert.Empty(t, note)
		assert.True(t, due.IsZero())
	})

	t.Run("bad due day is a validation error", func(t *testing.T) {
		_, _, _, err := TodoRequest{Title: "A", DueDay: ptr.To("20/03/2025")}.fields()
		assert.ErrorIs(t, err, domain.ErrInvalidDay)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestSummaryToResponse(t *testing.T) {
	got := summaryToResponse(domain.DashboardSummary{Total: 3, Active: 1, Completed: 2, Filter: domain.FilterCompleted})
	assert.Equal(t, SummaryResponse{Total: 3, Active: 1, Completed: 2, Filter: "Completed"}, got)
}
