package models

import "time"

// Single-choice questionnaire fields, in submission order.
const (
	FieldAge        = "age"
	FieldUrine      = "urine"
	FieldBMI        = "bmi"
	FieldWater      = "water"
	FieldBP         = "bp"
	FieldMass       = "mass"
	FieldMassChange = "massChange"
	FieldGender     = "gender"
)

// Fields lists the single-choice field names in the order they are encoded.
var Fields = []string{
	FieldAge,
	FieldUrine,
	FieldBMI,
	FieldWater,
	FieldBP,
	FieldMass,
	FieldMassChange,
	FieldGender,
}

// FormState is the user's possibly partial set of answers.
type FormState struct {
	Age        string   `json:"age" yaml:"age"`
	Urine      string   `json:"urine" yaml:"urine"`
	BMI        string   `json:"bmi" yaml:"bmi"`
	Water      string   `json:"water" yaml:"water"`
	BP         string   `json:"bp" yaml:"bp"`
	Mass       string   `json:"mass" yaml:"mass"`
	MassChange string   `json:"massChange" yaml:"massChange"`
	Gender     string   `json:"gender" yaml:"gender"`
	Symptoms   []string `json:"symptoms" yaml:"symptoms"`
}

// Values returns the single-choice answers in Fields order.
func (f FormState) Values() []string {
	return []string{f.Age, f.Urine, f.BMI, f.Water, f.BP, f.Mass, f.MassChange, f.Gender}
}

// Empty reports whether no field is answered and no symptom is selected.
func (f FormState) Empty() bool {
	for _, v := range f.Values() {
		if v != "" {
			return false
		}
	}
	return len(f.Symptoms) == 0
}

// Field returns a pointer to the named single-choice field, or nil.
func (f *FormState) Field(name string) *string {
	switch name {
	case FieldAge:
		return &f.Age
	case FieldUrine:
		return &f.Urine
	case FieldBMI:
		return &f.BMI
	case FieldWater:
		return &f.Water
	case FieldBP:
		return &f.BP
	case FieldMass:
		return &f.Mass
	case FieldMassChange:
		return &f.MassChange
	case FieldGender:
		return &f.Gender
	}
	return nil
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Status string `json:"status"`
}

// PredictionResponse is the body of a successful POST /predict.
type PredictionResponse struct {
	Prediction string `json:"prediction"`
}

// ErrorResponse is the error body returned by the local web front end.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Submission is a completed remote prediction kept in the history store.
type Submission struct {
	ID         string    `json:"id"`
	Form       FormState `json:"form"`
	Labels     []string  `json:"labels"`
	Vector     []float32 `json:"-"`
	Prediction string    `json:"prediction"`
	RecordedAt time.Time `json:"recorded_at"`
}

// HistoryMatch is a past submission returned by a similarity search.
type HistoryMatch struct {
	ID         string   `json:"id"`
	Prediction string   `json:"prediction"`
	Labels     []string `json:"labels"`
	Score      float32  `json:"score"`
	RecordedAt string   `json:"recorded_at,omitempty"`
}

// BatchJob is one form queued for concurrent submission.
type BatchJob struct {
	Index int
	Form  FormState
}

// BatchResult is the outcome of one BatchJob.
type BatchResult struct {
	Index      int    `json:"index"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Prediction string `json:"prediction,omitempty"`
	Error      string `json:"error,omitempty"`
}
