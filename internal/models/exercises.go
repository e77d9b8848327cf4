// ABOUTME: Exercise vocabulary and fuzzy name standardization.
// ABOUTME: Maps free-form exercise names onto canonical lowercase names.
package models

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// MatchCutoff is the minimum similarity ratio for a fuzzy vocabulary match.
const MatchCutoff = 0.8

// KnownExercises is the canonical exercise vocabulary.
var KnownExercises = []string{
	// Push
	"bench press", "incline bench press", "decline bench press",
	"overhead press", "push press", "dumbbell press", "dumbbell fly",
	"tricep extension", "tricep pushdown", "diamond pushup", "dip",

	// Pull
	"pull up", "chin up", "lat pulldown", "row", "barbell row",
	"dumbbell row", "face pull", "curl", "hammer curl", "preacher curl",

	// Legs
	"squat", "front squat", "back squat", "deadlift", "romanian deadlift",
	"sumo deadlift", "leg press", "leg extension", "leg curl", "calf raise",

	// Core
	"plank", "sit up", "crunch", "russian twist", "leg raise",

	// Cardio
	"run", "jog", "sprint", "bike", "swim",

	// Bodyweight
	"pushup", "pullup", "lunge", "burpee",
}

// Vocabulary is an immutable set of canonical exercise names.
type Vocabulary struct {
	names []string
	set   map[string]struct{}
}

// NewVocabulary builds a Vocabulary from canonical names.
// Names are stored trimmed and lowercased.
func NewVocabulary(names []string) *Vocabulary {
	v := &Vocabulary{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, ok := v.set[n]; ok {
			continue
		}
		v.set[n] = struct{}{}
		v.names = append(v.names, n)
	}
	sort.Strings(v.names)
	return v
}

// DefaultVocabulary is built from KnownExercises.
var DefaultVocabulary = NewVocabulary(KnownExercises)

// Names returns the canonical names in sorted order.
func (v *Vocabulary) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Contains reports whether name is a canonical entry.
func (v *Vocabulary) Contains(name string) bool {
	_, ok := v.set[name]
	return ok
}

// Standardize maps a raw exercise name onto the vocabulary.
//
// The name is trimmed and lowercased. An exact hit is returned as is; otherwise
// the single closest entry with a similarity ratio of at least MatchCutoff wins,
// ties going to the lexicographically greater entry. When nothing is close
// enough the normalized name is returned. Blank input comes back unchanged.
func (v *Vocabulary) Standardize(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return raw
	}
	if v.Contains(name) {
		return name
	}
	if best, ok := v.closest(name); ok {
		return best
	}
	return name
}

// closest returns the best vocabulary entry scoring at least MatchCutoff.
func (v *Vocabulary) closest(name string) (string, bool) {
	// seq2 holds the name so its index is built once for all candidates.
	m := difflib.NewMatcher(nil, splitChars(name))

	best, bestScore := "", -1.0
	for _, candidate := range v.names {
		m.SetSeq1(splitChars(candidate))
		if m.RealQuickRatio() < MatchCutoff || m.QuickRatio() < MatchCutoff {
			continue
		}
		score := m.Ratio()
		if score < MatchCutoff {
			continue
		}
		if score > bestScore || (score == bestScore && candidate > best) {
			best, bestScore = candidate, score
		}
	}
	return best, bestScore >= 0
}

func splitChars(s string) []string {
	return strings.Split(s, "")
}

// StandardizeExercise maps a raw name through DefaultVocabulary.
func StandardizeExercise(raw string) string {
	return DefaultVocabulary.Standardize(raw)
}
