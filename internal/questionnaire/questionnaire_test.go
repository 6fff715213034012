package questionnaire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidetect/internal/features"
	"aidetect/internal/prediction"
	"aidetect/pkg/models"
)

type fakePredictor struct {
	calls int32
	last  features.Vector
	mu    sync.Mutex
	fn    func(v features.Vector) (string, error)
}

func (f *fakePredictor) Predict(ctx context.Context, v features.Vector) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.last = v
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(v)
	}
	return "Diabetes", nil
}

type fakeRecorder struct {
	mu   sync.Mutex
	subs []models.Submission
	err  error
}

func (r *fakeRecorder) Record(ctx context.Context, s models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, s)
	return r.err
}

func TestSubmit_EmptyFormShortCircuits(t *testing.T) {
	p := &fakePredictor{}
	s := NewSubmitter(p)

	res, err := s.Submit(context.Background(), models.FormState{})
	require.NoError(t, err)
	assert.Equal(t, "Analysis Result", res.Title)
	assert.Equal(t, "Predicted Disease: Normal Condition 🟢", res.Message)
	assert.False(t, res.Remote)
	assert.EqualValues(t, 0, atomic.LoadInt32(&p.calls))
}

func TestSubmit_EncodesAndPredicts(t *testing.T) {
	p := &fakePredictor{}
	rec := &fakeRecorder{}
	s := NewSubmitter(p, WithRecorder(rec))

	form := models.FormState{Age: "40+", Gender: "Male", Symptoms: []string{"Headache"}}
	res, err := s.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "Predicted Disease: Diabetes", res.Message)
	assert.Equal(t, "Diabetes", res.Prediction)
	assert.True(t, res.Remote)
	assert.Equal(t, []string{"40+", "Male", "Headache"}, p.last.Ones())

	require.Len(t, rec.subs, 1)
	assert.Equal(t, "Diabetes", rec.subs[0].Prediction)
	assert.Equal(t, form, rec.subs[0].Form)
	assert.Len(t, rec.subs[0].Vector, 62)
	assert.NotEmpty(t, rec.subs[0].ID)
}

func TestSubmit_UnmatchedValueStillSent(t *testing.T) {
	p := &fakePredictor{}
	s := NewSubmitter(p)

	_, err := s.Submit(context.Background(), models.FormState{Age: "not-a-real-value"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&p.calls))
	assert.Empty(t, p.last.Ones())
}

func TestSubmit_RecorderFailureIgnored(t *testing.T) {
	s := NewSubmitter(&fakePredictor{}, WithRecorder(&fakeRecorder{err: errors.New("qdrant down")}))
	res, err := s.Submit(context.Background(), models.FormState{Gender: "Female"})
	require.NoError(t, err)
	assert.Equal(t, "Diabetes", res.Prediction)
}

func TestSubmit_HTTPErrorBecomesNotification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("invalid input"))
	}))
	defer srv.Close()

	s := NewSubmitter(prediction.NewClient(srv.URL))
	res, err := s.Submit(context.Background(), models.FormState{BMI: ">=25"})
	require.Error(t, err)
	assert.Equal(t, Result{}, res, "no result dialog on failure")
	assert.ErrorIs(t, err, ErrSubmission)

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	var httpErr *prediction.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 422, httpErr.StatusCode)

	n := subErr.Notification()
	assert.Equal(t, "Error", n.Title)
	assert.Equal(t, "destructive", n.Variant)
	assert.Contains(t, n.Description, "422")
	assert.Contains(t, n.Description, "invalid input")
	assert.Contains(t, n.Description, "Could not connect to the server")
}

func TestSubmit_ExactRequestBody(t *testing.T) {
	var body map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(models.PredictionResponse{Prediction: "Migraine"})
	}))
	defer srv.Close()

	s := NewSubmitter(prediction.NewClient(srv.URL))
	res, err := s.Submit(context.Background(), models.FormState{
		Age: "40+", Gender: "Male", Symptoms: []string{"Headache"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Predicted Disease: Migraine", res.Message)

	want := map[string]int{}
	for _, k := range features.DefaultSchema().Keys() {
		want[k] = 0
	}
	want["40+"], want["Male"], want["Headache"] = 1, 1, 1
	assert.Equal(t, want, body)
}

func TestSession(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Select(models.FieldAge, "50+"))
	require.NoError(t, s.Select(models.FieldMassChange, "No change"))
	assert.Error(t, s.Select("height", "tall"))

	s.ToggleSymptom("Anxiety", true)
	s.ToggleSymptom("Insomnia", true)
	s.ToggleSymptom("Anxiety", true)
	s.ToggleSymptom("Insomnia", false)
	s.ToggleSymptom("Bone Pain", false)

	form := s.Form()
	assert.Equal(t, "50+", form.Age)
	assert.Equal(t, "No change", form.MassChange)
	assert.Equal(t, []string{"Anxiety"}, form.Symptoms)

	form.Symptoms[0] = "mutated"
	assert.Equal(t, []string{"Anxiety"}, s.Form().Symptoms)

	s.Reset()
	assert.True(t, s.Form().Empty())
}

func TestBatch(t *testing.T) {
	p := &fakePredictor{fn: func(v features.Vector) (string, error) {
		ones := v.Ones()
		if len(ones) == 1 && ones[0] == "Female" {
			return "", &prediction.HTTPError{StatusCode: 500, Body: "boom"}
		}
		return fmt.Sprintf("label-%d", len(ones)), nil
	}}
	s := NewSubmitter(p)

	forms := []models.FormState{
		{Age: "60+"},
		{},
		{Gender: "Female"},
		{Age: "5-15", Symptoms: []string{"Wheezing", "Short Breaths"}},
	}
	results := s.Batch(context.Background(), forms, 3)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, "label-1", results[0].Prediction)
	assert.Equal(t, "Predicted Disease: Normal Condition 🟢", results[1].Message)
	assert.Contains(t, results[2].Error, "status: 500")
	assert.Equal(t, "label-3", results[3].Prediction)
	assert.EqualValues(t, 3, atomic.LoadInt32(&p.calls))
}

func TestBatch_WorkerLimit(t *testing.T) {
	var inFlight, peak int32
	p := &fakePredictor{fn: func(v features.Vector) (string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return "Diabetes", nil
	}}
	s := NewSubmitter(p)

	forms := make([]models.FormState, 8)
	for i := range forms {
		forms[i] = models.FormState{Age: "60+"}
	}
	results := s.Batch(context.Background(), forms, 2)
	require.Len(t, results, 8)
	for _, r := range results {
		assert.Empty(t, r.Error)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.EqualValues(t, 8, atomic.LoadInt32(&p.calls))
}

func TestBatch_Cancelled(t *testing.T) {
	p := &fakePredictor{}
	s := NewSubmitter(p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := s.Batch(ctx, []models.FormState{{Age: "60+"}, {Gender: "Male"}}, 2)
	require.Len(t, results, 2)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, context.Canceled.Error(), r.Error)
	}
	assert.Zero(t, atomic.LoadInt32(&p.calls))
}
