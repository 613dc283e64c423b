package state

import "fmt"

// Violation describes state the backend should never have produced.
// The mirror is left as is; violations are only reported.
type Violation struct {
	Rule    string
	Path    string
	Message string
}

const (
	RuleDuplicateDocument = "duplicate_document_path"
	RuleDanglingDocument  = "dangling_current_document"
	RuleKeyframeRange     = "keyframe_index_out_of_range"
)

// CheckInvariants reports contract violations in s.
func CheckInvariants(s *AppState) []Violation {
	if s == nil {
		return nil
	}
	var out []Violation

	seen := make(map[string]int, len(s.Documents))
	for i, doc := range s.Documents {
		if first, ok := seen[doc.Path]; ok {
			out = append(out, Violation{
				Rule:    RuleDuplicateDocument,
				Path:    fmt.Sprintf("/documents/%d/path", i),
				Message: fmt.Sprintf("document path %q already used by /documents/%d", doc.Path, first),
			})
			continue
		}
		seen[doc.Path] = i
	}

	if s.CurrentDocumentPath != nil {
		if _, ok := seen[*s.CurrentDocumentPath]; !ok {
			out = append(out, Violation{
				Rule:    RuleDanglingDocument,
				Path:    "/currentDocumentPath",
				Message: fmt.Sprintf("current document %q is not open", *s.CurrentDocumentPath),
			})
		}
	}

	for i, doc := range s.Documents {
		if doc.CurrentKeyframeIndex == nil || doc.CurrentAnimationName == nil || doc.CurrentSequenceDirection == nil {
			continue
		}
		animation, ok := doc.Sheet.Animations[*doc.CurrentAnimationName]
		if !ok {
			continue
		}
		sequence, ok := animation.Sequences[*doc.CurrentSequenceDirection]
		if !ok {
			continue
		}
		index := *doc.CurrentKeyframeIndex
		if index < 0 || index >= len(sequence.Keyframes) {
			out = append(out, Violation{
				Rule:    RuleKeyframeRange,
				Path:    fmt.Sprintf("/documents/%d/currentKeyframeIndex", i),
				Message: fmt.Sprintf("keyframe index %d outside sequence of length %d", index, len(sequence.Keyframes)),
			})
		}
	}

	return out
}
