package schema

import (
	"testing"

	"github.com/cmlabs-hris/timeclock-go/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID      string  `json:"id" validate:"required,uuid"`
	Kind    string  `json:"kind" validate:"oneof=clock_in clock_out"`
	Date    string  `json:"date" validate:"required,datetime=2006-01-02"`
	Clock   *string `json:"clock" validate:"omitempty,datetime=15:04"`
	EntryID string  `json:"entry_id" validate:"required_if=Kind clock_out,omitempty,uuid"`
}

func TestCheck(t *testing.T) {
	clock := "09:30"
	valid := sample{
		ID:    "0190a1b2-0000-7000-8000-000000000001",
		Kind:  "clock_in",
		Date:  "2025-01-06",
		Clock: &clock,
	}
	require.NoError(t, Check(valid))

	t.Run("clock-out needs an entry", func(t *testing.T) {
		s := valid
		s.Kind = "clock_out"
		err := Check(s)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.KindValidation))
		assert.Contains(t, err.Error(), "entry_id is required")

		s.EntryID = "0190a1b2-0000-7000-8000-0000000000e1"
		assert.NoError(t, Check(s))
	})

	t.Run("reports every field by json name", func(t *testing.T) {
		bad := "25:00"
		err := Check(sample{ID: "x", Kind: "lunch", Date: "06/01/2025", Clock: &bad})
		require.Error(t, err)
		msg := err.Error()
		assert.Contains(t, msg, "id must be a valid UUID")
		assert.Contains(t, msg, "kind must be one of [clock_in clock_out]")
		assert.Contains(t, msg, "date must match 2006-01-02")
		assert.Contains(t, msg, "clock must match 15:04")
	})
}
