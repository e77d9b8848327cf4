// ABOUTME: WorkoutRecord is the partial workout assembled from a chat message.
// ABOUTME: Covers coercion of raw model output, merging, validation, and storage shape.
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field names, in the order missing fields are reported.
const (
	FieldExercise = "exercise"
	FieldWeight   = "weight"
	FieldReps     = "reps"
	FieldSets     = "sets"
)

// RequiredFields lists every field a complete workout needs.
var RequiredFields = []string{FieldExercise, FieldWeight, FieldReps, FieldSets}

// WorkoutRecord is a possibly incomplete workout. Nil fields are absent.
type WorkoutRecord struct {
	Exercise *string  `json:"exercise"`
	Weight   *float64 `json:"weight"`
	Reps     *int     `json:"reps"`
	Sets     *int     `json:"sets"`
}

// NewWorkoutRecord creates an empty record.
func NewWorkoutRecord() *WorkoutRecord {
	return &WorkoutRecord{}
}

// WithExercise sets the exercise name.
func (r *WorkoutRecord) WithExercise(name string) *WorkoutRecord {
	r.Exercise = &name
	return r
}

// WithWeight sets the weight.
func (r *WorkoutRecord) WithWeight(weight float64) *WorkoutRecord {
	r.Weight = &weight
	return r
}

// WithReps sets the reps per set.
func (r *WorkoutRecord) WithReps(reps int) *WorkoutRecord {
	r.Reps = &reps
	return r
}

// WithSets sets the number of sets.
func (r *WorkoutRecord) WithSets(sets int) *WorkoutRecord {
	r.Sets = &sets
	return r
}

func (r *WorkoutRecord) hasExercise() bool {
	return r.Exercise != nil && strings.TrimSpace(*r.Exercise) != ""
}

func (r *WorkoutRecord) hasWeight() bool {
	return r.Weight != nil
}

func (r *WorkoutRecord) hasReps() bool {
	return r.Reps != nil && *r.Reps > 0
}

func (r *WorkoutRecord) hasSets() bool {
	return r.Sets != nil && *r.Sets > 0
}

// MissingFields returns the absent fields in reporting order.
// A nil record is missing everything.
func (r *WorkoutRecord) MissingFields() []string {
	if r == nil {
		out := make([]string, len(RequiredFields))
		copy(out, RequiredFields)
		return out
	}
	missing := []string{}
	if !r.hasExercise() {
		missing = append(missing, FieldExercise)
	}
	if !r.hasWeight() {
		missing = append(missing, FieldWeight)
	}
	if !r.hasReps() {
		missing = append(missing, FieldReps)
	}
	if !r.hasSets() {
		missing = append(missing, FieldSets)
	}
	return missing
}

// Validate reports whether the record is complete, along with its missing fields.
func (r *WorkoutRecord) Validate() (bool, []string) {
	missing := r.MissingFields()
	return len(missing) == 0, missing
}

// IsComplete reports whether all four fields are present.
func (r *WorkoutRecord) IsComplete() bool {
	ok, _ := r.Validate()
	return ok
}

// MergeWith fills absent fields from other. Present fields are never overwritten.
func (r *WorkoutRecord) MergeWith(other *WorkoutRecord) {
	if other == nil {
		return
	}
	if !r.hasExercise() && other.hasExercise() {
		v := *other.Exercise
		r.Exercise = &v
	}
	if !r.hasWeight() && other.hasWeight() {
		v := *other.Weight
		r.Weight = &v
	}
	if !r.hasReps() && other.hasReps() {
		v := *other.Reps
		r.Reps = &v
	}
	if !r.hasSets() && other.hasSets() {
		v := *other.Sets
		r.Sets = &v
	}
}

// StandardizeExerciseName rewrites the exercise through the vocabulary.
// A nil vocabulary means DefaultVocabulary.
func (r *WorkoutRecord) StandardizeExerciseName(v *Vocabulary) {
	if !r.hasExercise() {
		return
	}
	if v == nil {
		v = DefaultVocabulary
	}
	name := v.Standardize(*r.Exercise)
	r.Exercise = &name
}

// Clone returns a deep copy.
func (r *WorkoutRecord) Clone() *WorkoutRecord {
	if r == nil {
		return nil
	}
	out := &WorkoutRecord{}
	if r.Exercise != nil {
		out.WithExercise(*r.Exercise)
	}
	if r.Weight != nil {
		out.WithWeight(*r.Weight)
	}
	if r.Reps != nil {
		out.WithReps(*r.Reps)
	}
	if r.Sets != nil {
		out.WithSets(*r.Sets)
	}
	return out
}

// Sanitized returns a copy holding only the fields Normalize would accept.
// Negative, NaN, and infinite weights are dropped.
func (r *WorkoutRecord) Sanitized() *WorkoutRecord {
	out := r.Clone()
	if out == nil || out.Weight == nil {
		return out
	}
	if w := *out.Weight; w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		out.Weight = nil
	}
	return out
}

// StorageShape is a record with every field filled for persistence.
type StorageShape struct {
	Exercise string
	Weight   Weight
	Reps     int
	Sets     int
}

// ToStorageShape fills absent numbers with zero and an absent exercise with "".
func (r *WorkoutRecord) ToStorageShape() StorageShape {
	var s StorageShape
	if r.Exercise != nil {
		s.Exercise = *r.Exercise
	}
	if r.Weight != nil {
		s.Weight = NewWeight(*r.Weight)
	} else {
		s.Weight = NewWeight(0)
	}
	if r.Reps != nil {
		s.Reps = *r.Reps
	}
	if r.Sets != nil {
		s.Sets = *r.Sets
	}
	return s
}

// RawWorkout is an untyped mapping as decoded from model output or a request body.
type RawWorkout map[string]any

// Normalize coerces the raw mapping into a typed record.
// Values that cannot be coerced become absent; it never panics.
func (raw RawWorkout) Normalize() *WorkoutRecord {
	r := NewWorkoutRecord()
	if raw == nil {
		return r
	}
	if s, ok := raw[FieldExercise].(string); ok {
		r.Exercise = &s
	}
	if w, ok := coerceFloat(raw[FieldWeight]); ok && w >= 0 {
		r.Weight = &w
	}
	if n, ok := coerceInt(raw[FieldReps]); ok {
		r.Reps = &n
	}
	if n, ok := coerceInt(raw[FieldSets]); ok {
		r.Sets = &n
	}
	return r
}

// coerceFloat accepts numbers and numeric strings. NaN and infinities are rejected.
func coerceFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// coerceInt accepts integers, truncates fractional numbers toward zero,
// and parses integer strings. Fractional strings are rejected.
func coerceInt(v any) (int, bool) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return intInRange(float64(n))
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return truncate(f)
	case float64:
		return truncate(x)
	case float32:
		return truncate(float64(x))
	case int:
		return x, true
	case int64:
		return intInRange(float64(x))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		return intInRange(float64(n))
	default:
		return 0, false
	}
}

func truncate(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return intInRange(math.Trunc(f))
}

func intInRange(f float64) (int, bool) {
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
