package biomed

// Entity is one span tagged by the upstream NER model. Offsets are half-open
// character offsets [Start, End) into the source text.
type Entity struct {
	Word        string  `json:"word"`
	EntityGroup string  `json:"entity_group"`
	Score       float64 `json:"score"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

type NERResponse struct {
	InputText     string   `json:"input_text"`
	Entities      []Entity `json:"entities"`
	TotalEntities int      `json:"total_entities"`
}

type SummarizeParams struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
	MinLength int    `json:"min_length"`
	DoSample  bool   `json:"do_sample"`
}

type SummaryResponse struct {
	OriginalText     string  `json:"original_text"`
	Summary          string  `json:"summary"`
	OriginalLength   int     `json:"original_length"`
	SummaryLength    int     `json:"summary_length"`
	CompressionRatio float64 `json:"compression_ratio"`
	MaxLength        int     `json:"max_length"`
	MinLength        int     `json:"min_length"`
}

type ModelsLoaded struct {
	NER        bool `json:"ner"`
	Summarizer bool `json:"summarizer"`
}

type HealthResponse struct {
	Status       string       `json:"status"`
	ModelsLoaded ModelsLoaded `json:"models_loaded"`
}
