package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
)

// MetadataSuggester proposes a gallery name, description and category for a
// generated tool. The client is expected to use a low temperature.
type MetadataSuggester struct {
	llm     gollem.LLMClient
	timeout time.Duration
}

func NewMetadataSuggester(llm gollem.LLMClient, timeout time.Duration) *MetadataSuggester {
	return &MetadataSuggester{llm: llm, timeout: timeout}
}

var metadataSchema = &gollem.Parameter{
	Title:       "ToolMetadata",
	Description: "Gallery metadata for a generated tool",
	Type:        gollem.TypeObject,
	Properties: map[string]*gollem.Parameter{
		"name": {
			Type:        gollem.TypeString,
			Description: "Short Title Case name of the tool",
		},
		"description": {
			Type:        gollem.TypeString,
			Description: "One sentence describing what the tool does",
		},
		"category": {
			Type:        gollem.TypeString,
			Description: "One friendly category word such as Text, Image, Data or Workflow",
		},
	},
}

type metadataInput struct {
	Prompt   string
	ToolType string
}

func (s *MetadataSuggester) SuggestMetadata(ctx context.Context, rawPrompt, toolType string) (*model.Metadata, error) {
	prompt, err := renderTemplate(metadataTemplate, metadataInput{
		Prompt:   rawPrompt,
		ToolType: toolType,
	})
	if err != nil {
		return nil, wrapAs(ErrMetadataFailed, err, "failed to build metadata prompt")
	}

	out, err := complete(ctx, s.llm, roleMetadata, s.timeout, completion{
		input:  prompt,
		schema: metadataSchema,
	})
	if err != nil {
		return nil, wrapAs(ErrMetadataFailed, err, "failed to suggest metadata",
			goerr.V("tool_type", toolType))
	}

	meta, err := parseMetadata(out)
	if err != nil {
		return nil, err
	}
	if meta.Category == "" {
		meta.Category = defaultCategory(types.Classification(toolType))
	}
	return meta, nil
}

// parseMetadata decodes the span between the first '{' and the last '}'
func parseMetadata(text string) (*model.Metadata, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, goerr.Wrap(ErrMalformedResponse, "no JSON object in metadata response",
			goerr.V("response", text))
	}

	var meta model.Metadata
	if err := json.Unmarshal([]byte(text[start:end+1]), &meta); err != nil {
		return nil, wrapAs(ErrMalformedResponse, err, "failed to decode metadata response",
			goerr.V("response", text))
	}

	meta.Name = strings.TrimSpace(meta.Name)
	meta.Description = strings.TrimSpace(meta.Description)
	meta.Category = strings.TrimSpace(meta.Category)
	if meta.Name == "" || meta.Description == "" {
		return nil, goerr.Wrap(ErrMalformedResponse, "metadata response lacks name or description",
			goerr.V("response", text))
	}
	return &meta, nil
}

func defaultCategory(c types.Classification) string {
	switch c {
	case types.ClassificationTextTool:
		return "Text"
	case types.ClassificationImageTool:
		return "Image"
	case types.ClassificationDataTool:
		return "Data"
	case types.ClassificationWorkflow:
		return "Workflow"
	default:
		return "Other"
	}
}
