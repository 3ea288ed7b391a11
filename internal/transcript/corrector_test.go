package transcript_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxmate/voxmate/internal/moveparse"
	"github.com/voxmate/voxmate/internal/transcript"
	"github.com/voxmate/voxmate/internal/transcript/phonetic"
)

// stubMatcher replaces a fixed set of words and reports everything else
// unmatched.
type stubMatcher struct {
	repairs map[string]string
}

func (s *stubMatcher) Match(word string, _ []string) (string, float64, bool) {
	if repaired, ok := s.repairs[word]; ok {
		return repaired, 0.9, true
	}
	return word, 0, false
}

func TestAssist_KnownWordsPassThrough(t *testing.T) {
	t.Parallel()

	c := transcript.NewCorrector(&stubMatcher{}, []string{"knight", "takes"})
	text, corrections := c.Assist("knight takes e4")

	assert.Equal(t, "knight takes e4", text)
	assert.Empty(t, corrections)
	assert.NotNil(t, corrections)
}

func TestAssist_RepairsUnknownWords(t *testing.T) {
	t.Parallel()

	m := &stubMatcher{repairs: map[string]string{"knigh": "knight"}}
	c := transcript.NewCorrector(m, []string{"knight", "takes"})

	text, corrections := c.Assist("knigh takes e4")

	assert.Equal(t, "knight takes e4", text)
	require.Len(t, corrections, 1)
	assert.Equal(t, "knigh", corrections[0].Original)
	assert.Equal(t, "knight", corrections[0].Corrected)
	assert.InDelta(t, 0.9, corrections[0].Confidence, 0.001)
}

func TestAssist_NotationTokensAreNeverTouched(t *testing.T) {
	t.Parallel()

	// A matcher that would rewrite anything it sees.
	m := &stubMatcher{repairs: map[string]string{
		"e4": "east", "o-o": "oops", "g1f3": "golf",
	}}
	c := transcript.NewCorrector(m, []string{"knight"})

	text, corrections := c.Assist("e4 O-O g1f3")

	assert.Equal(t, "e4 O-O g1f3", text)
	assert.Empty(t, corrections)
}

func TestAssist_UnmatchedWordsStay(t *testing.T) {
	t.Parallel()

	c := transcript.NewCorrector(&stubMatcher{}, []string{"knight"})
	text, corrections := c.Assist("xyzzy knight")

	assert.Equal(t, "xyzzy knight", text)
	assert.Empty(t, corrections)
}

func TestAssist_EmptyText(t *testing.T) {
	t.Parallel()

	c := transcript.NewCorrector(&stubMatcher{}, []string{"knight"})
	text, corrections := c.Assist("   ")

	assert.Equal(t, "   ", text)
	assert.Empty(t, corrections)
	assert.NotNil(t, corrections)
}

func TestAssist_FeedsNormalizer(t *testing.T) {
	t.Parallel()

	c := transcript.NewCorrector(phonetic.New(), moveparse.Vocabulary())

	text, corrections := c.Assist("knigh taks f seven")
	require.NotEmpty(t, corrections)
	assert.True(t, strings.HasPrefix(text, "knight takes"), text)

	result := moveparse.Normalize(text)
	assert.Contains(t, result.Candidates, "Nxf7")
}

func TestAssist_FillerWordsSurviveRepair(t *testing.T) {
	t.Parallel()

	c := transcript.NewCorrector(phonetic.New(), moveparse.Vocabulary())

	text, _ := c.Assist("knight to f six")
	result := moveparse.Normalize(text)
	assert.Contains(t, result.Candidates, "Nf6")
}
