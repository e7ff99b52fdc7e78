package analysis

import "github.com/jonathan/resume-match/internal/llm"

// ResultSchema returns the response schema declared to the model.
// Field names and descriptions are part of the contract with the model.
func ResultSchema() *llm.Schema {
	minScore, maxScore := 0.0, 100.0
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"score": {
				Type:        llm.TypeNumber,
				Description: "A matching score from 0 to 100.",
				Minimum:     &minScore,
				Maximum:     &maxScore,
			},
			"summary": {
				Type:        llm.TypeString,
				Description: "A concise executive summary of the match.",
			},
			"strengths": {
				Type:        llm.TypeArray,
				Items:       &llm.Schema{Type: llm.TypeString},
				Description: "List of matching skills and experiences found in the resume.",
			},
			"missingSkills": {
				Type:        llm.TypeArray,
				Items:       &llm.Schema{Type: llm.TypeString},
				Description: "Critical skills or keywords from the JD missing in the resume.",
			},
			"recommendations": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"category": {
							Type:        llm.TypeString,
							Description: "E.g., Formatting, Skills, Experience, Keywords",
						},
						"suggestion": {
							Type:        llm.TypeString,
							Description: "Specific advice on what to improve.",
						},
						"example": {
							Type:        llm.TypeString,
							Description: "A concrete example of how to write it better.",
						},
					},
				},
				Description: "Actionable advice to improve the resume for this specific JD.",
			},
		},
		Required: []string{"score", "summary", "strengths", "missingSkills", "recommendations"},
	}
}
