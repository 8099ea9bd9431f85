package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/aggregates/session"
	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/batch"
)

func newSession(t *testing.T, ttl time.Duration) session.UploadSession {
	t.Helper()
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Raw: map[string]string{"Email": "Ada@Example.com"}},
		{Row: 2, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
	}
	fixes := []batch.AutoFix{
		{ID: "fix-1", Row: 1, Field: batch.FieldEmail, CurrentValue: "ada@gamil.com", SuggestedValue: "ada@gmail.com", Confidence: 0.95, Category: batch.FixEmailTypo},
	}
	return session.New("hires.xlsx", "hr@example.com", rows, nil, fixes, nil, 88, "", nil, ttl)
}

func TestNew_StartsInPreview(t *testing.T) {
	s := newSession(t, time.Hour)
	require.Equal(t, session.StatusPreview, s.Status())
	require.False(t, s.IsTerminal())
	require.Equal(t, 2, s.TotalRows())
	require.False(t, s.Expired(time.Now()))
	require.True(t, s.Expired(time.Now().Add(2*time.Hour)))
}

func TestFindFix(t *testing.T) {
	s := newSession(t, time.Hour)

	f, ok := s.FindFix("fix-1")
	require.True(t, ok)
	require.Equal(t, "ada@gmail.com", f.SuggestedValue)

	_, ok = s.FindFix("fix-999")
	require.False(t, ok)
}

func TestIsTerminal(t *testing.T) {
	for _, tc := range []struct {
		status   session.Status
		terminal bool
	}{
		{session.StatusPreview, false},
		{session.StatusProcessing, false},
		{session.StatusCompleted, true},
		{session.StatusPartial, true},
		{session.StatusFailed, true},
	} {
		s := session.Hydrate(
			newSession(t, time.Hour).ID(), tc.status, "f.csv", 0, "hr@example.com",
			nil, nil, nil, nil, session.QualityScoreUnknown, "", nil, nil,
			time.Now(), time.Now().Add(time.Hour),
		)
		require.Equal(t, tc.terminal, s.IsTerminal(), "status %s", tc.status)
	}
}

func TestWorkingRows_DoesNotAliasStoredRows(t *testing.T) {
	s := newSession(t, time.Hour)

	work := s.WorkingRows()
	work[0].Email = "changed@example.com"
	work[0].Raw["Email"] = "changed"

	require.Equal(t, "ada@example.com", s.Rows()[0].Email)
	require.Equal(t, "Ada@Example.com", s.Rows()[0].Raw["Email"])
}
