package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/job_extraction.md
var jobExtractionPromptRaw string

// jobExtractionTemplate is the parsed prompt template for structured
// job extraction. Parsed once at package init; reused on every call.
var jobExtractionTemplate = template.Must(template.New("job_extraction").Parse(jobExtractionPromptRaw))

// extractionSystemPrompt pins the extractor role; the user prompt
// carries the document and the output format.
const extractionSystemPrompt = "你是一个专业的招聘信息提取助手。你只输出符合要求的 JSON。"
