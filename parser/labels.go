package parser

import "encoding/json"

// ClassifyKind tags the shape a classification result arrived in. The
// backend is loosely typed: sometimes a structured object, sometimes a
// JSON-encoded string, sometimes plain text, sometimes nothing.
type ClassifyKind int

const (
	// ClassifyEmpty means the backend returned null or nothing.
	ClassifyEmpty ClassifyKind = iota
	// ClassifyStructured means the backend returned a native object with
	// a labels list.
	ClassifyStructured
	// ClassifyText means the backend returned a string, which may or may
	// not itself be JSON.
	ClassifyText
)

// ClassifyResult is the tagged union of classification response shapes.
type ClassifyResult struct {
	Kind   ClassifyKind
	Labels []string
	Text   string
}

// StructuredResult wraps a native label list.
func StructuredResult(labels []string) ClassifyResult {
	return ClassifyResult{Kind: ClassifyStructured, Labels: labels}
}

// TextResult wraps a raw string response.
func TextResult(text string) ClassifyResult {
	return ClassifyResult{Kind: ClassifyText, Text: text}
}

// EmptyResult represents an absent classification.
func EmptyResult() ClassifyResult {
	return ClassifyResult{Kind: ClassifyEmpty}
}

// ExtractLabels is a total function over the classification union. It never
// returns nil and never fails: a structured result yields its labels, a
// string that decodes to a labels object yields those labels, any other
// valid JSON yields no labels, and a plain non-JSON string is treated as a
// single-element label list.
func ExtractLabels(result ClassifyResult) []string {
	switch result.Kind {
	case ClassifyStructured:
		if result.Labels == nil {
			return []string{}
		}
		return result.Labels

	case ClassifyText:
		if result.Text == "" {
			return []string{}
		}
		var parsed map[string]any
		if err := json.Unmarshal([]byte(result.Text), &parsed); err != nil {
			if json.Valid([]byte(result.Text)) {
				// Valid JSON but not an object: no labels to extract.
				return []string{}
			}
			return []string{result.Text}
		}
		return labelStrings(parsed["labels"])

	default:
		return []string{}
	}
}

func labelStrings(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return []string{}
	}
	labels := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			labels = append(labels, s)
		}
	}
	return labels
}
