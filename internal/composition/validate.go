package composition

import (
	"fmt"
	"strings"
)

// Code identifies the rule a set of lines violates.
type Code string

const (
	Valid                     Code = ""
	MissingFood               Code = "MISSING_FOOD"
	InvalidGrams              Code = "INVALID_GRAMS"
	DuplicateFood             Code = "DUPLICATE_FOOD"
	FoundationCountOutOfRange Code = "FOUNDATION_COUNT_OUT_OF_RANGE"
	InsufficientIngredients   Code = "INSUFFICIENT_INGREDIENTS"
	NotMixable                Code = "NOT_MIXABLE"
	UnknownKind               Code = "UNKNOWN_KIND"
)

const (
	MinFoundation   = 1
	MaxFoundation   = 3
	MinSaladLines   = 1
	MinMixtureLines = 3
	MinGrams        = 1
)

// Result is the outcome of Validate. Index and FoodRef point at the offending
// line when the failure concerns a single line; Index is -1 otherwise.
type Result struct {
	Code            Code
	Index           int
	FoodRef         string
	FoundationCount int
}

// OK reports whether the lines can be submitted.
func (r Result) OK() bool {
	return r.Code == Valid
}

// Message returns a user-facing explanation of the violated rule.
func (r Result) Message() string {
	switch r.Code {
	case Valid:
		return ""
	case MissingFood:
		if strings.TrimSpace(r.FoodRef) == "" {
			return fmt.Sprintf("Ingredient %d has no food selected.", r.Index+1)
		}
		return fmt.Sprintf("Food %q was not found.", r.FoodRef)
	case InvalidGrams:
		return fmt.Sprintf("Ingredient %d must weigh at least %d gram.", r.Index+1, MinGrams)
	case DuplicateFood:
		return fmt.Sprintf("Food %q is listed more than once.", r.FoodRef)
	case FoundationCountOutOfRange:
		return fmt.Sprintf("A salad needs between %d and %d foundation ingredients, found %d.", MinFoundation, MaxFoundation, r.FoundationCount)
	case InsufficientIngredients:
		return "Not enough ingredients for this composition."
	case NotMixable:
		return fmt.Sprintf("Food %q cannot be used in a mixture.", r.FoodRef)
	case UnknownKind:
		return "Unknown composition kind."
	}
	return string(r.Code)
}

func failure(code Code, index int, ref string) Result {
	return Result{Code: code, Index: index, FoodRef: ref}
}

// Validate checks lines against the rules for kind. The first violated rule
// is reported in this order: missing food, invalid grams, duplicate food, then
// the kind-specific structural rule.
func Validate(kind Kind, lines []Line, catalog Catalog) Result {
	resolved := make([]FoodFacts, len(lines))
	for i, line := range lines {
		facts, ok := lookup(catalog, line.FoodRef)
		if !ok {
			return failure(MissingFood, i, line.FoodRef)
		}
		resolved[i] = facts
	}

	for i, line := range lines {
		if line.Grams < MinGrams {
			return failure(InvalidGrams, i, line.FoodRef)
		}
	}

	seen := make(map[string]struct{}, len(lines))
	for i, line := range lines {
		if _, dup := seen[line.FoodRef]; dup {
			return failure(DuplicateFood, i, line.FoodRef)
		}
		seen[line.FoodRef] = struct{}{}
	}

	switch kind {
	case KindSalad:
		return validateSalad(lines, resolved)
	case KindMixture:
		return validateMixture(lines, resolved)
	}
	return failure(UnknownKind, -1, "")
}

func validateSalad(lines []Line, resolved []FoodFacts) Result {
	count := FoundationCount(resolved)
	if len(lines) < MinSaladLines {
		return Result{Code: InsufficientIngredients, Index: -1, FoundationCount: count}
	}
	if count < MinFoundation || count > MaxFoundation {
		return Result{Code: FoundationCountOutOfRange, Index: -1, FoundationCount: count}
	}
	return Result{Code: Valid, Index: -1, FoundationCount: count}
}

func validateMixture(lines []Line, resolved []FoodFacts) Result {
	count := FoundationCount(resolved)
	if len(lines) < MinMixtureLines {
		return Result{Code: InsufficientIngredients, Index: -1, FoundationCount: count}
	}
	for i, facts := range resolved {
		if !facts.Mixable {
			res := failure(NotMixable, i, lines[i].FoodRef)
			res.FoundationCount = count
			return res
		}
	}
	return Result{Code: Valid, Index: -1, FoundationCount: count}
}

// FoundationCount returns how many of the supplied foods are foundation ingredients.
func FoundationCount(foods []FoodFacts) int {
	count := 0
	for _, food := range foods {
		if food.Foundation {
			count++
		}
	}
	return count
}
