// Package features holds the fixed label schema the prediction model is
// trained on and encodes questionnaire answers into it.
package features

// defaultKeys is the model's input schema, in the order the service expects.
var defaultKeys = []string{
	// age
	"0-1", "5-15", "10-20", "40+", "45+", "50+", "60+", "65+",
	// urine output and water intake
	"<500", "<800", "350-550", "800-2000", "2000-3000", ">2000", ">3000",
	// bmi
	">=18.5", ">=25", "N/a",
	"<=2700", ">=3700",
	// blood pressure
	"120/80", ">130/80", "<130/80", ">=130/80", ">140/80", "95-145/80",
	// mass
	"Mass", "Negligible", "Overweight",
	// mass change
	"M+/-", "M+7Kg", "-M+7Kg or 10Kg", "M minus 1Kg", "M minus 5Kg", "M minus 10Kg",
	"M minus 0.5-1Kg", "<M", "No change", "Negligible.1",
	// gender
	"Male", "Female",
	// symptoms
	"Wheezing", "Headache", "Short Breaths", "Rapid Breathing", "Anxiety",
	"Urine at Night", "Irritability", "Blurred Vision", "Slow Healing", "Dry Mouth",
	"Muscle Aches", "Nausea/Vomiting", "Insomnia", "Chest Pain", "Dizziness",
	"Nosebleeds", "Foamy Urine", "Abdominal Pain", "Itchy Skin", "Dark Urine",
	"Bone Pain",
}

// Schema is an immutable, ordered set of feature labels.
type Schema struct {
	keys  []string
	index map[string]int
}

// NewSchema builds a schema from labels. Duplicates keep their first position.
func NewSchema(keys ...string) *Schema {
	s := &Schema{index: make(map[string]int, len(keys))}
	for _, k := range keys {
		if _, dup := s.index[k]; dup {
			continue
		}
		s.index[k] = len(s.keys)
		s.keys = append(s.keys, k)
	}
	return s
}

var defaultSchema = NewSchema(defaultKeys...)

// DefaultSchema returns the 62-label schema of the hosted model.
func DefaultSchema() *Schema {
	return defaultSchema
}

// Len returns the number of labels.
func (s *Schema) Len() int {
	return len(s.keys)
}

// Keys returns a copy of the labels in order.
func (s *Schema) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Has reports whether label is part of the schema. Matching is exact.
func (s *Schema) Has(label string) bool {
	_, ok := s.index[label]
	return ok
}
