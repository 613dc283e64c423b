package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestCheckInvariants(t *testing.T) {
	walk := Animation{
		Name: "Walk",
		Sequences: map[Direction]Sequence{
			East: {Keyframes: []Keyframe{{Frame: "a.png"}}},
		},
	}

	tests := []struct {
		name  string
		state *AppState
		rules []string
	}{
		{
			name:  "nil state",
			state: nil,
		},
		{
			name: "consistent",
			state: &AppState{
				Documents:           []Document{{Path: "/a"}, {Path: "/b"}},
				CurrentDocumentPath: ptr("/b"),
			},
		},
		{
			name: "duplicate paths",
			state: &AppState{
				Documents: []Document{{Path: "/a"}, {Path: "/a"}},
			},
			rules: []string{RuleDuplicateDocument},
		},
		{
			name: "dangling current document",
			state: &AppState{
				Documents:           []Document{{Path: "/a"}},
				CurrentDocumentPath: ptr("/z"),
			},
			rules: []string{RuleDanglingDocument},
		},
		{
			name: "keyframe index out of range",
			state: &AppState{
				Documents: []Document{{
					Path:                     "/a",
					Sheet:                    Sheet{Animations: map[string]Animation{"Walk": walk}},
					CurrentAnimationName:     ptr("Walk"),
					CurrentSequenceDirection: ptr(East),
					CurrentKeyframeIndex:     ptr(3),
				}},
			},
			rules: []string{RuleKeyframeRange},
		},
		{
			name: "dangling animation name is not a violation",
			state: &AppState{
				Documents: []Document{{
					Path:                     "/a",
					CurrentAnimationName:     ptr("Gone"),
					CurrentSequenceDirection: ptr(East),
					CurrentKeyframeIndex:     ptr(0),
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rules []string
			for _, v := range CheckInvariants(tt.state) {
				rules = append(rules, v.Rule)
			}
			assert.Equal(t, tt.rules, rules)
		})
	}
}

func TestDirectionOrdinal(t *testing.T) {
	assert.Equal(t, 0, East.Ordinal())
	assert.Equal(t, 7, SouthEast.Ordinal())
	assert.Equal(t, len(Directions), Direction("Up").Ordinal())
}
