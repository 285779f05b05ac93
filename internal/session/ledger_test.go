package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingMirror counts saves and remembers the last value written.
type recordingMirror struct {
	saves int
	last  interface{}
}

func (m *recordingMirror) Save(key string, v interface{}) error {
	m.saves++
	m.last = v
	return nil
}

func (m *recordingMirror) Load(string, interface{}) (bool, error) { return false, nil }

func TestLedgerUpsertIsUniquePerQuestion(t *testing.T) {
	l := NewLedger([]string{"q1", "q2"}, nil, "k", nil)

	l.Upsert(Record{QuestionID: "q1", Answer: "first"})
	l.Upsert(Record{QuestionID: "q1", Answer: "revised"})

	require.Equal(t, 1, l.Len())
	all := l.All()
	require.Len(t, all, 1)
	require.Equal(t, "revised", all[0].Answer)
}

func TestLedgerOrderFollowsQuestionSequence(t *testing.T) {
	l := NewLedger([]string{"q1", "q2", "q3"}, nil, "k", nil)

	l.Upsert(Record{QuestionID: "q3", Answer: "c"})
	l.Upsert(Record{QuestionID: "q1", Answer: "a"})

	all := l.All()
	require.Len(t, all, 2)
	require.Equal(t, "q1", all[0].QuestionID)
	require.Equal(t, "q3", all[1].QuestionID)

	l.Upsert(Record{QuestionID: "q2", Answer: "b"})
	all = l.All()
	require.Equal(t, []string{"q1", "q2", "q3"},
		[]string{all[0].QuestionID, all[1].QuestionID, all[2].QuestionID})
}

func TestLedgerUnknownQuestionAppended(t *testing.T) {
	l := NewLedger([]string{"q1"}, nil, "k", nil)
	l.Upsert(Record{QuestionID: "extra", Answer: "x"})
	l.Upsert(Record{QuestionID: "q1", Answer: "a"})

	all := l.All()
	require.Equal(t, "q1", all[0].QuestionID)
	require.Equal(t, "extra", all[1].QuestionID)
}

func TestLedgerMirrorsEveryUpsert(t *testing.T) {
	m := &recordingMirror{}
	l := NewLedger([]string{"q1", "q2"}, m, "quiz_j_r_c", nil)

	l.Upsert(Record{QuestionID: "q1", Answer: "a"})
	l.Upsert(Record{QuestionID: "q2", Answer: "b"})
	l.Upsert(Record{QuestionID: "q1", Answer: "a2"})

	require.Equal(t, 3, m.saves)
	last, ok := m.last.([]Record)
	require.True(t, ok)
	require.Len(t, last, 2)
	require.Equal(t, "a2", last[0].Answer)
}

func TestLedgerSeedSkipsMirror(t *testing.T) {
	m := &recordingMirror{}
	l := NewLedger([]string{"q1", "q2"}, m, "k", nil)

	l.Seed([]Record{{QuestionID: "q1", Answer: "restored"}})
	require.Equal(t, 0, m.saves)
	require.True(t, l.Has("q1"))
	require.False(t, l.Has("q2"))
}

func TestFileMirrorRoundTrip(t *testing.T) {
	m, err := NewFileMirror(t.TempDir())
	require.NoError(t, err)

	key := SessionKey("quiz", "job1", "round1", "cand1")
	require.Equal(t, "quiz_job1_round1_cand1", key)

	in := []Record{{QuestionID: "q1", Answer: "a", ElapsedSec: 7}}
	require.NoError(t, m.Save(key, in))

	var out []Record
	ok, err := m.Load(key, &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in, out)

	ok, err = m.Load("missing_key", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileMirrorRejectsEmptyKey(t *testing.T) {
	m, err := NewFileMirror(filepath.Join(t.TempDir(), "sub"))
	require.NoError(t, err)
	require.Error(t, m.Save("", struct{}{}))
}
