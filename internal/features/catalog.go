package features

import "aidetect/pkg/models"

// Group is one single-choice question and the labels it offers.
type Group struct {
	Field   string   `json:"field" yaml:"field"`
	Label   string   `json:"label" yaml:"label"`
	Options []string `json:"options" yaml:"options"`
}

// Catalog is the full questionnaire: single-choice groups plus symptoms.
type Catalog struct {
	Groups   []Group  `json:"groups" yaml:"groups"`
	Symptoms []string `json:"symptoms" yaml:"symptoms"`
}

// DefaultCatalog returns the questionnaire for DefaultSchema.
func DefaultCatalog() Catalog {
	return Catalog{
		Groups: []Group{
			{Field: models.FieldAge, Label: "Age Range", Options: []string{"0-1", "5-15", "10-20", "40+", "45+", "50+", "60+", "65+"}},
			{Field: models.FieldGender, Label: "Gender", Options: []string{"Male", "Female"}},
			{Field: models.FieldUrine, Label: "Urine Output (ml/day)", Options: []string{"<500", "<800", "350-550", "800-2000"}},
			{Field: models.FieldWater, Label: "Water Intake (ml/day)", Options: []string{"2000-3000", ">2000", ">3000", "<=2700", ">=3700"}},
			{Field: models.FieldBMI, Label: "BMI", Options: []string{">=18.5", ">=25", "N/a"}},
			{Field: models.FieldBP, Label: "Blood Pressure", Options: []string{"120/80", ">130/80", "<130/80", ">=130/80", ">140/80", "95-145/80"}},
			{Field: models.FieldMass, Label: "Body Mass", Options: []string{"Mass", "Negligible", "Overweight"}},
			{Field: models.FieldMassChange, Label: "Mass Change", Options: []string{
				"M+/-", "M+7Kg", "-M+7Kg or 10Kg", "M minus 1Kg", "M minus 5Kg",
				"M minus 10Kg", "M minus 0.5-1Kg", "<M", "No change", "Negligible.1",
			}},
		},
		Symptoms: []string{
			"Wheezing", "Headache", "Short Breaths", "Rapid Breathing", "Anxiety",
			"Urine at Night", "Irritability", "Blurred Vision", "Slow Healing",
			"Dry Mouth", "Muscle Aches", "Nausea/Vomiting", "Insomnia",
			"Chest Pain", "Dizziness", "Nosebleeds", "Foamy Urine",
			"Abdominal Pain", "Itchy Skin", "Dark Urine", "Bone Pain",
		},
	}
}

// Group returns the group for field.
func (c Catalog) Group(field string) (Group, bool) {
	for _, g := range c.Groups {
		if g.Field == field {
			return g, true
		}
	}
	return Group{}, false
}
