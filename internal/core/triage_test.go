package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"triage-advisor/internal/llm"
	"triage-advisor/pkg"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubCompleter replays a canned reply and records what it was asked.
type stubCompleter struct {
	reply string
	err   error
	calls atomic.Int32

	mu   sync.Mutex
	last llm.CompletionRequest
}

func (s *stubCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.last = req
	s.mu.Unlock()
	return s.reply, s.err
}

const fluReply = `{"urgency_level":"High","possible_condition":"Flu","recommended_action":"Rest and hydrate","suggested_medication":"Paracetamol"}`

var flu = pkg.PatientInput{Gender: pkg.GenderMale, Age: "18", PreExisting: "None", Symptoms: "High fever, severe body pain, sore throat"}

func newService(t *testing.T, stub *stubCompleter, apiKey string) *TriageService {
	return NewTriageService(stub, DefaultSettings(apiKey), zaptest.NewLogger(t))
}

func requireKind(t *testing.T, err error, kind ErrorKind) *TriageError {
	t.Helper()
	var te *TriageError
	require.True(t, errors.As(err, &te), "expected *TriageError, got %T", err)
	require.Equal(t, kind, te.Kind)
	return te
}

func TestEvaluate_MissingAPIKey(t *testing.T) {
	inputs := []pkg.PatientInput{flu, {}, {Symptoms: "   "}}
	for _, in := range inputs {
		stub := &stubCompleter{reply: fluReply}
		rec, err := newService(t, stub, "").Evaluate(context.Background(), in)
		assert.Nil(t, rec)
		requireKind(t, err, KindConfig)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Zero(t, stub.calls.Load())
	}
}

func TestEvaluate_NilCompleterIsConfigError(t *testing.T) {
	svc := NewTriageService(nil, DefaultSettings("key"), nil)
	_, err := svc.Evaluate(context.Background(), flu)
	requireKind(t, err, KindConfig)
}

func TestEvaluate_BlankSymptoms(t *testing.T) {
	for _, symptoms := range []string{"", "   ", "\n\t "} {
		stub := &stubCompleter{reply: fluReply}
		in := pkg.PatientInput{Gender: pkg.GenderOther, Age: "40", Symptoms: symptoms}
		rec, err := newService(t, stub, "key").Evaluate(context.Background(), in)
		assert.Nil(t, rec)
		requireKind(t, err, KindEmptyInput)
		assert.ErrorIs(t, err, ErrEmptySymptoms)
		assert.Zero(t, stub.calls.Load())
	}
}

func TestEvaluate_ValidReply(t *testing.T) {
	stub := &stubCompleter{reply: fluReply}
	rec, err := newService(t, stub, "key").Evaluate(context.Background(), flu)
	require.NoError(t, err)
	assert.Equal(t, &pkg.TriageRecord{
		UrgencyLevel:        "High",
		PossibleCondition:   "Flu",
		RecommendedAction:   "Rest and hydrate",
		SuggestedMedication: "Paracetamol",
	}, rec)

	assert.EqualValues(t, 1, stub.calls.Load())
	assert.Equal(t, DefaultModel, stub.last.Model)
	assert.Equal(t, SystemPrompt, stub.last.System)
	assert.Equal(t, BuildPrompt(flu.Gender, flu.Age, flu.PreExisting, flu.Symptoms), stub.last.User)
	assert.InDelta(t, 0.3, stub.last.Temperature, 1e-6)
	assert.Equal(t, 600, stub.last.MaxTokens)
}

func TestEvaluate_FencedReplyWithExtraFields(t *testing.T) {
	reply := "Here you go:\n```json\n" +
		`{"urgency_level":"Low","possible_condition":"Cold","recommended_action":"Rest","suggested_medication":null,"confidence":0.4}` +
		"\n```"
	rec, err := newService(t, &stubCompleter{reply: reply}, "key").Evaluate(context.Background(), flu)
	require.NoError(t, err)
	assert.Equal(t, pkg.UrgencyLow, rec.UrgencyLevel)
	assert.Equal(t, "Cold", rec.PossibleCondition)
	assert.Empty(t, rec.SuggestedMedication)
}

func TestEvaluate_NonStringValuesAreRendered(t *testing.T) {
	reply := `{"urgency_level":"Moderate","possible_condition":["Angina","GERD"],"recommended_action":"See a GP","suggested_medication":2}`
	rec, err := newService(t, &stubCompleter{reply: reply}, "key").Evaluate(context.Background(), flu)
	require.NoError(t, err)
	assert.Equal(t, `["Angina","GERD"]`, rec.PossibleCondition)
	assert.Equal(t, "2", rec.SuggestedMedication)
}

func TestEvaluate_MissingField(t *testing.T) {
	reply := `{"urgency_level":"High","possible_condition":"Flu","recommended_action":"Rest and hydrate"}`
	rec, err := newService(t, &stubCompleter{reply: reply}, "key").Evaluate(context.Background(), flu)
	assert.Nil(t, rec)
	te := requireKind(t, err, KindShape)
	assert.Equal(t, reply, te.RawOutput)
	assert.Equal(t, []string{"suggested_medication"}, te.Missing)
	assert.Equal(t, "Flu", te.Partial["possible_condition"])
}

func TestEvaluate_NotJSON(t *testing.T) {
	reply := "I cannot help with that."
	rec, err := newService(t, &stubCompleter{reply: reply}, "key").Evaluate(context.Background(), flu)
	assert.Nil(t, rec)
	te := requireKind(t, err, KindParse)
	assert.Equal(t, reply, te.RawOutput)
	assert.NotEmpty(t, te.Err.Error())
}

func TestEvaluate_MultipleObjectsFailToParse(t *testing.T) {
	reply := fluReply + "\n" + fluReply
	_, err := newService(t, &stubCompleter{reply: reply}, "key").Evaluate(context.Background(), flu)
	requireKind(t, err, KindParse)
}

func TestEvaluate_NonObjectJSONIsShapeError(t *testing.T) {
	for _, reply := range []string{`["High"]`, `"High"`, `42`, `null`} {
		t.Run(reply, func(t *testing.T) {
			rec, err := newService(t, &stubCompleter{reply: reply}, "key").Evaluate(context.Background(), flu)
			assert.Nil(t, rec)
			te := requireKind(t, err, KindShape)
			assert.Equal(t, reply, te.RawOutput)
			assert.Equal(t, RequiredFields, te.Missing)
			assert.Nil(t, te.Partial)
		})
	}
}

func TestEvaluate_TransportFailure(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	stub := &stubCompleter{err: boom}
	rec, err := newService(t, stub, "key").Evaluate(context.Background(), flu)
	assert.Nil(t, rec)
	requireKind(t, err, KindTransport)
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, stub.calls.Load())
}

func TestEvaluate_ConcurrentCallsAreIndependent(t *testing.T) {
	stub := &stubCompleter{reply: fluReply}
	svc := NewTriageService(stub, DefaultSettings("key"), nil)
	done := make(chan error)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := svc.Evaluate(context.Background(), flu)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
	assert.EqualValues(t, 8, stub.calls.Load())
}

func TestNewAssessment(t *testing.T) {
	a := NewAssessment(DefaultModel, &pkg.TriageRecord{UrgencyLevel: pkg.UrgencyEmergency}, nil, 0)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, pkg.UrgencyEmergency, a.UrgencyLevel)
	assert.Empty(t, a.ErrorKind)

	a = NewAssessment(DefaultModel, nil, emptyInputError(), 0)
	assert.Equal(t, string(KindEmptyInput), a.ErrorKind)
	assert.Empty(t, a.UrgencyLevel)
}
