package revision_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcs-project/wcs/internal/revision"
	"github.com/wcs-project/wcs/pkg/errclass"
)

func TestParse_EmptyIsUnspecified(t *testing.T) {
	ref, err := revision.Parse("")
	require.NoError(t, err)
	assert.Equal(t, revision.Unspecified, ref.Kind)
	assert.True(t, ref.IsWorking())
}

func TestParse_Keywords(t *testing.T) {
	cases := map[string]revision.Kind{
		"HEAD":      revision.Head,
		"head":      revision.Head,
		"BASE":      revision.Base,
		"COMMITTED": revision.Committed,
		"PREV":      revision.Previous,
		" Head ":    revision.Head,
	}
	for spec, want := range cases {
		ref, err := revision.Parse(spec)
		require.NoError(t, err, "spec=%q", spec)
		assert.Equal(t, want, ref.Kind, "spec=%q", spec)
	}
}

func TestParse_Number(t *testing.T) {
	ref, err := revision.Parse("42")
	require.NoError(t, err)
	assert.Equal(t, revision.Number, ref.Kind)
	assert.Equal(t, int64(42), ref.Number)
}

func TestParse_NegativeNumber(t *testing.T) {
	_, err := revision.Parse("-1")
	require.ErrorIs(t, err, errclass.ErrInvalidRevision)
}

func TestParse_Date(t *testing.T) {
	ref, err := revision.Parse("{2024-01-31}")
	require.NoError(t, err)
	assert.Equal(t, revision.Date, ref.Kind)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), ref.Date)
}

func TestParse_BadDate(t *testing.T) {
	_, err := revision.Parse("{not-a-date}")
	require.ErrorIs(t, err, errclass.ErrInvalidRevision)
}

func TestParse_Garbage(t *testing.T) {
	for _, spec := range []string{"bogus", "HEAD~1", "1.5", "r42"} {
		_, err := revision.Parse(spec)
		require.ErrorIs(t, err, errclass.ErrInvalidRevision, "spec=%q", spec)
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "head", revision.Head.String())
	assert.Equal(t, "unspecified", revision.Unspecified.String())
}
