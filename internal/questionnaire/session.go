package questionnaire

import (
	"fmt"
	"sync"

	"aidetect/pkg/models"
)

// Session holds the form state between input events.
type Session struct {
	mu   sync.Mutex
	form models.FormState
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Select sets a single-choice field. An empty value clears it.
func (s *Session) Select(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.form.Field(field)
	if target == nil {
		return fmt.Errorf("unknown field %q", field)
	}
	*target = value
	return nil
}

// ToggleSymptom checks or unchecks a symptom.
func (s *Session) ToggleSymptom(symptom string, checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, existing := range s.form.Symptoms {
		if existing == symptom {
			idx = i
			break
		}
	}
	switch {
	case checked && idx < 0:
		s.form.Symptoms = append(s.form.Symptoms, symptom)
	case !checked && idx >= 0:
		s.form.Symptoms = append(s.form.Symptoms[:idx:idx], s.form.Symptoms[idx+1:]...)
	}
}

// Form returns a copy of the current answers.
func (s *Session) Form() models.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()

	form := s.form
	form.Symptoms = append([]string(nil), s.form.Symptoms...)
	return form
}

// Reset clears every answer.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = models.FormState{}
}
