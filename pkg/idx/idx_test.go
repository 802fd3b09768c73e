package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/quizify/pkg/idx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.NotEmpty(t, id.String())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "   ", "not-a-ulid", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, s)
	}
}

func TestNewAtSortsByTime(t *testing.T) {
	a := idx.NewAt(time.Unix(1, 0).UTC())
	b := idx.NewAt(time.Unix(2, 0).UTC())

	require.Less(t, a.String(), b.String())
}

func TestNewQuizID(t *testing.T) {
	a, b := idx.NewQuizID(), idx.NewQuizID()
	require.NotEqual(t, a, b)

	u, err := uuid.Parse(a)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(4), u.Version())
}
