package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/invopop/jsonschema"

	"github.com/BaSui01/orgflow/hierarchy"
)

// DefaultPromptTemplate 默认环路裁决提示模板
const DefaultPromptTemplate = `You are a corporate organization researcher helping to resolve circular reporting relationships in a company hierarchy.

You have detected a CYCLE in the reporting structure where the following people form a circular reporting chain:

<cycle_members>
{{range $i, $m := .Members}}{{if $i}}
{{end}}Name: {{$m.Name}}
Title: {{$m.Title}}
Project: {{$m.Project}}
Current Manager: {{or $m.CurrentManager "null"}}
Reason: {{$m.Reason}}
{{end}}</cycle_members>

This creates an impossible reporting structure. Your task is to break this cycle by determining the correct reporting relationships.

Here are OTHER people in the organization who could be potential managers:

<possible_managers>
{{range .Candidates}}- {{.Name}}: {{.Title}}, working on {{.Project}}
{{end}}</possible_managers>
{{if .Omitted}}
({{.Omitted}} more people were left out to fit the context window.)
{{end}}
Consider:
- Job titles and seniority levels
- Project responsibilities and scope
- The reasoning provided for each current assignment
- Typical organizational structures (e.g., external consultants report to internal leaders, junior roles report to senior)
- You can assign managers from OUTSIDE the cycle to break it
- Only set manager to null if someone is truly at the top (e.g., CEO, or external engagement lead with no internal oversight)

Please output the corrected manager assignments for ONLY the people in this cycle. At least one person's manager should be changed to someone outside the cycle or set to null.

Return your response as a JSON object matching this schema:
{{.Schema}}

Example:
{"user_managers": [
  {"name": "Person A", "manager": "Correct Manager or null", "reason": "Brief explanation"},
  {"name": "Person B", "manager": "Correct Manager", "reason": "Brief explanation"}
]}`

type promptData struct {
	Members    []hierarchy.CycleMember
	Candidates []hierarchy.Candidate
	Omitted    int
	Schema     string
}

// responseSchema 生成响应结构的 JSON Schema（内联，无 $ref）
func responseSchema() (string, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&resolution{})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal response schema: %w", err)
	}
	return string(data), nil
}

func parsePromptTemplate(text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultPromptTemplate
	}
	return template.New("cycle_resolution").Parse(text)
}

func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}
