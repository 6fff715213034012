package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"aidetect/pkg/models"
)

// formFlags binds one questionnaire answer per flag.
type formFlags struct {
	form models.FormState
}

func (f *formFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.form.Age, "age", "", "Age range, e.g. 40+")
	fl.StringVar(&f.form.Urine, "urine", "", "Urine output band, e.g. <800")
	fl.StringVar(&f.form.BMI, "bmi", "", "BMI band, e.g. >=25")
	fl.StringVar(&f.form.Water, "water", "", "Water intake band, e.g. 2000-3000")
	fl.StringVar(&f.form.BP, "bp", "", "Blood pressure band, e.g. >140/80")
	fl.StringVar(&f.form.Mass, "mass", "", "Body mass, e.g. Overweight")
	fl.StringVar(&f.form.MassChange, "mass-change", "", "Mass change, e.g. \"M minus 5Kg\"")
	fl.StringVar(&f.form.Gender, "gender", "", "Male or Female")
	fl.StringArrayVar(&f.form.Symptoms, "symptom", nil, "Symptom label (repeatable)")
}

// loadForms reads a YAML or JSON file holding either one form or a list.
func loadForms(path string) ([]models.FormState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading forms file: %w", err)
	}

	var forms []models.FormState
	if err := yaml.Unmarshal(data, &forms); err == nil {
		return forms, nil
	}

	var single models.FormState
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("error parsing forms file %s: %w", path, err)
	}
	return []models.FormState{single}, nil
}
