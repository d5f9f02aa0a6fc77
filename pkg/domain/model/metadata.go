package model

// Metadata is the publish summary suggested for a generated tool
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// GenerationResult is the outcome of one pass through the generation pipeline
type GenerationResult struct {
	HTML           string
	FromCache      bool
	Classification string
}
