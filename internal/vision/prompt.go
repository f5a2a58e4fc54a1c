package vision

import (
	"encoding/json"
	"fmt"

	"infograph/internal/domain"
)

const identificationPrompt = `You are a data extraction assistant. Analyze this image and identify all data visualizations and infographics present.

For each distinct element, provide:
1. type: one of [bar_chart, grouped_bar_chart, stacked_bar_chart, line_chart, multi_line_chart, pie_chart, table, kpi_panel, map_data, other]
2. title: the title or heading of this element (if visible), or null if not visible
3. description: brief description of what data it contains
4. data_preview: estimated structure (e.g., "5 categories, 3 series", "12 monthly values")
5. bbox: bounding box as {"x": int, "y": int, "width": int, "height": int} in pixels from top-left
6. confidence: 0.0-1.0 how confident you are in this detection
7. warnings: array of any concerns about extraction accuracy (empty array if none)

Respond ONLY with valid JSON in this exact format:
{
  "detected_items": [
    {
      "type": "bar_chart",
      "title": "Sales by Region",
      "description": "Bar chart showing sales figures for 5 regions",
      "data_preview": "5 categories, single value each",
      "bbox": {"x": 100, "y": 50, "width": 400, "height": 300},
      "confidence": 0.95,
      "warnings": []
    }
  ],
  "image_width": 1000,
  "image_height": 800
}

Important rules:
- Identify SEPARATE elements, not one merged infographic
- Include standalone KPIs/metrics as kpi_panel type
- Note if values are annotated on the chart vs. need to be read from axes (add to warnings)
- bbox coordinates must be integers
- If no visual elements found, return {"detected_items": [], "image_width": ..., "image_height": ...}
`

// BuildIdentificationPrompt returns the prompt for the identify call.
func BuildIdentificationPrompt() string {
	return identificationPrompt
}

const extractionPromptHeader = `You are a data extraction assistant. Extract structured data from ONE element of this image.

Element to extract:
%s

`

const extractionRulesAnnotatedOnly = `Extract ONLY the values that are explicitly annotated/labeled on the chart.

Rules:
- Extract ONLY values that are explicitly shown as text/numbers on the chart
- Do NOT estimate or read values from axes
- Column names should be clear and descriptive
- Each row should be a dictionary with column names as keys
`

const extractionRulesFull = `Extract ALL numeric data from this element into a structured table format.

Rules:
- Use the exact values shown (do not round or approximate)
- If values must be read from an axis (not annotated), estimate them carefully
- Column names should be clear and descriptive
- Each row should be a dictionary with column names as keys
- Preserve the original meaning and context

MANDATORY for time series / line charts:
1. Identify ALL tick marks on the X-axis (e.g., Jan, Feb, Mar, ..., Dec)
2. For EACH series/line in the chart, read the Y-value at EVERY X-axis tick mark
3. You MUST output one row per (series, time_point) combination
4. If a value is not annotated, read it from the Y-axis gridlines
5. DO NOT summarize or aggregate - extract the raw granular data
`

const extractionRulesFullWithSource = `Extract ALL numeric data from this element into a structured table format, marking whether each value is annotated or estimated.

Rules:
- Use the exact values shown (do not round or approximate)
- Column names should be clear and descriptive
- Each row should be a dictionary with column names as keys
- IMPORTANT: Add a "source" column with value "annotated" or "estimated" for each row
  - "annotated" = value is explicitly shown as text on the chart
  - "estimated" = value was read from the axis/gridlines

MANDATORY for time series / line charts:
1. Identify ALL tick marks on the X-axis (e.g., Jan, Feb, Mar, ..., Dec)
2. For EACH series/line in the chart, read the Y-value at EVERY X-axis tick mark
3. You MUST output one row per (series, time_point) combination
4. Mark each row with source="annotated" or source="estimated"
`

const extractionResponseFormat = `
Respond ONLY with valid JSON in this exact format:
{
  "item_id": "%s",
  "title": "Detected or user-provided title",
  "columns": ["Category", "Value"],
  "rows": [
    {"Category": "A", "Value": 100},
    {"Category": "B", "Value": 200}
  ],
  "confidence": 0.95,
  "notes": null
}

Important:
- Numbers should be actual numbers, not strings
- If uncertain, provide your best estimate and lower the confidence score
`

// promptItem is the element description embedded into an extraction prompt.
type promptItem struct {
	ItemID string              `json:"item_id"`
	Type   domain.ElementKind  `json:"type"`
	Title  string              `json:"title"`
	BBox   domain.BoundingBox  `json:"bbox"`
}

// BuildExtractionPrompt returns the prompt for extracting a single planned
// item. Each item gets its own call so one cluttered chart cannot poison
// the others, and the prompt stays focused on one element's geometry.
func BuildExtractionPrompt(item domain.PlannedItem, opts domain.ExtractionOptions) string {
	title := item.Title
	if title == "" {
		title = "Untitled"
	}
	itemJSON, _ := json.MarshalIndent(promptItem{
		ItemID: item.ItemID,
		Type:   item.Kind,
		Title:  title,
		BBox:   item.BoundingBox,
	}, "", "  ")

	prompt := fmt.Sprintf(extractionPromptHeader, itemJSON)

	switch opts.Granularity {
	case domain.GranularityAnnotatedOnly:
		prompt += extractionRulesAnnotatedOnly
	case domain.GranularityFullWithSource:
		prompt += extractionRulesFullWithSource
	default:
		prompt += extractionRulesFull
	}

	prompt += fmt.Sprintf(extractionResponseFormat, item.ItemID)

	if opts.OutputLanguage != "" {
		prompt += fmt.Sprintf("\nWrite all column names, labels and notes in this language: %s\n", opts.OutputLanguage)
	}

	return prompt
}
