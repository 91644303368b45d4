package analysis

import "strings"

// Category is the gateway's label for an entity. The upstream model emits
// its own group names (d4data/biomedical-ner-all style, e.g.
// "Disease_disorder", "Sign_symptom"); Categorize folds them into the ten
// labels the product exposes.
type Category string

const (
	CategoryDisease           Category = "Disease/Disorder"
	CategoryChemical          Category = "Chemical"
	CategoryGeneProtein       Category = "Gene/Protein"
	CategoryAnatomy           Category = "Anatomy"
	CategoryBiologicalProcess Category = "Biological Process"
	CategoryMedicalDevice     Category = "Medical Device"
	CategoryMedication        Category = "Medication"
	CategorySymptom           Category = "Symptom"
	CategoryTreatment         Category = "Treatment"
	CategoryOther             Category = "Other"
)

func Categorize(entityGroup string) Category {
	switch normalizeGroup(entityGroup) {
	case "disease_disorder", "disease", "disorder":
		return CategoryDisease
	case "chemical", "chemical_substance":
		return CategoryChemical
	case "gene_protein", "gene", "protein":
		return CategoryGeneProtein
	case "biological_structure", "anatomy", "anatomical_structure":
		return CategoryAnatomy
	case "biological_process", "biological_attribute":
		return CategoryBiologicalProcess
	case "medical_device", "device":
		return CategoryMedicalDevice
	case "medication", "drug":
		return CategoryMedication
	case "sign_symptom", "symptom", "sign":
		return CategorySymptom
	case "therapeutic_procedure", "treatment", "procedure":
		return CategoryTreatment
	}
	return CategoryOther
}

func normalizeGroup(group string) string {
	group = strings.ToLower(strings.TrimSpace(group))
	group = strings.ReplaceAll(group, " ", "_")
	group = strings.ReplaceAll(group, "-", "_")
	group = strings.ReplaceAll(group, "/", "_")
	return group
}
