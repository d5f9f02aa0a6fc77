package usecase

import "github.com/secmon-lab/toolforge/pkg/domain/types"

// ParseMetadata is exported for testing
var ParseMetadata = parseMetadata

// ClassifySystemPrompt is exported for testing
var ClassifySystemPrompt = classifySystemPrompt

// GenerationPrompt returns the rendered instruction template of c
func GenerationPrompt(c types.Classification) string {
	return generationPrompts[c]
}

// RenderMetadataPrompt is exported for testing template rendering
func RenderMetadataPrompt(prompt, toolType string) (string, error) {
	return renderTemplate(metadataTemplate, metadataInput{Prompt: prompt, ToolType: toolType})
}
