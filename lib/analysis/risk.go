package analysis

import (
	"sort"
	"strings"

	"github.com/labsharedao/biomed-gateway/lib/biomed"
)

// Risk and relevance thresholds. These are product policy, not physics -
// keep every tunable here.
const (
	HighDiseaseScore          = 0.85
	HighSymptomScore          = 0.85
	MediumDiseaseSymptomScore = 0.6
	MediumMedicationScore     = 0.7

	MaxInsights = 5
	MaxKeyTerms = 8

	RelevancePerEntity     = 0.1
	RelevanceConfidentPart = 0.4
	ConfidentScore         = 0.8
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// recognisedSensorTypes are the clinical sensor families the risk policy
// trusts. An empty or unrecognised sensor type clamps risk to medium.
var recognisedSensorTypes = map[string]struct{}{
	"temperature":       {},
	"heart_rate":        {},
	"heartrate":         {},
	"blood_pressure":    {},
	"spo2":              {},
	"oxygen_saturation": {},
	"pulse_oximeter":    {},
	"glucose":           {},
	"ecg":               {},
	"respiration":       {},
	"respiratory_rate":  {},
	"motion":            {},
	"fall":              {},
}

func sensorTypeRecognised(sensorType string) bool {
	_, ok := recognisedSensorTypes[normalizeGroup(sensorType)]
	return ok
}

// ClassifyRisk is a pure function of the entities and the sensor type:
// identical inputs always yield the identical level.
func ClassifyRisk(entities []biomed.Entity, sensorType string) RiskLevel {
	var hasDevice bool
	for _, e := range entities {
		if Categorize(e.EntityGroup) == CategoryMedicalDevice {
			hasDevice = true
			break
		}
	}

	level := RiskLow
	for _, e := range entities {
		switch Categorize(e.EntityGroup) {
		case CategoryDisease:
			if e.Score >= HighDiseaseScore {
				level = maxRisk(level, RiskHigh)
			} else if e.Score >= MediumDiseaseSymptomScore {
				level = maxRisk(level, RiskMedium)
			}
		case CategorySymptom:
			if e.Score >= HighSymptomScore && hasDevice {
				level = maxRisk(level, RiskHigh)
			} else if e.Score >= MediumDiseaseSymptomScore {
				level = maxRisk(level, RiskMedium)
			}
		case CategoryMedication:
			if e.Score >= MediumMedicationScore {
				level = maxRisk(level, RiskMedium)
			}
		}
	}

	if level == RiskHigh && !sensorTypeRecognised(sensorType) {
		level = RiskMedium
	}
	return level
}

var riskOrder = map[RiskLevel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}

func maxRisk(a, b RiskLevel) RiskLevel {
	if riskOrder[b] > riskOrder[a] {
		return b
	}
	return a
}

var insightTemplates = map[Category]string{
	CategoryDisease:       "Mentions disease: %s",
	CategorySymptom:       "Mentions symptom: %s",
	CategoryChemical:      "Mentions chemical: %s",
	CategoryMedication:    "References medication: %s",
	CategoryMedicalDevice: "References medical device: %s",
	CategoryTreatment:     "References treatment: %s",
}

// Insights derives one short string per notable entity class that appears,
// using each class's highest-scoring span, ordered by descending score and
// bounded at MaxInsights.
func Insights(entities []biomed.Entity) []string {
	top := make(map[Category]biomed.Entity)
	for _, e := range entities {
		cat := Categorize(e.EntityGroup)
		if _, notable := insightTemplates[cat]; !notable {
			continue
		}
		if best, ok := top[cat]; !ok || e.Score > best.Score {
			top[cat] = e
		}
	}

	type insight struct {
		text  string
		score float64
	}
	insights := make([]insight, 0, len(top))
	for cat, e := range top {
		insights = append(insights, insight{
			text:  strings.Replace(insightTemplates[cat], "%s", e.Word, 1),
			score: e.Score,
		})
	}
	sort.SliceStable(insights, func(a, b int) bool {
		if insights[a].score != insights[b].score {
			return insights[a].score > insights[b].score
		}
		return insights[a].text < insights[b].text
	})

	out := make([]string, 0, len(insights))
	for _, i := range insights {
		if len(out) == MaxInsights {
			break
		}
		out = append(out, i.text)
	}
	return out
}
