package usecase

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
)

//go:embed prompt/*.md
var promptFS embed.FS

//go:embed prompt/classify.md
var classifySystemPrompt string

var (
	generationTemplates = map[types.Classification]*template.Template{
		types.ClassificationTextTool:  mustParseGeneration("text_tool.md"),
		types.ClassificationImageTool: mustParseGeneration("image_tool.md"),
		types.ClassificationDataTool:  mustParseGeneration("data_tool.md"),
		types.ClassificationWorkflow:  mustParseGeneration("workflow.md"),
	}

	metadataTemplate = template.Must(template.New("metadata.md").
				Option("missingkey=error").
				ParseFS(promptFS, "prompt/metadata.md"))
)

func mustParseGeneration(name string) *template.Template {
	t := template.Must(template.New(name).
		Option("missingkey=error").
		ParseFS(promptFS, "prompt/common_rules.md", "prompt/"+name))
	return t
}

func renderTemplate(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt template", goerr.V("template", t.Name()))
	}
	return buf.String(), nil
}

// generationPrompts are rendered once; they take no parameters
var generationPrompts = func() map[types.Classification]string {
	out := make(map[types.Classification]string, len(generationTemplates))
	for c, t := range generationTemplates {
		s, err := renderTemplate(t, nil)
		if err != nil {
			panic(err)
		}
		out[c] = s
	}
	return out
}()
