// internal/service/template_service.go
package service

import (
	"strings"
)

// suggestionTemplates are rendered with {objective}.
var suggestionTemplates = []string{
	"Dear Customer, our goal is to {objective}. We are excited to offer you special deals to help us achieve this together!",
	"Hello! We want to {objective}. Check out our amazing offers tailored just for you.",
}

func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

// Suggestions returns canned message texts for a campaign objective.
func Suggestions(objective string) []string {
	data := map[string]string{"objective": strings.TrimSpace(objective)}
	out := make([]string, 0, len(suggestionTemplates))
	for _, t := range suggestionTemplates {
		out = append(out, RenderTemplate(t, data))
	}
	return out
}
