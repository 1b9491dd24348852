package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	maxCodeLength     = 16
	namePartLength    = 6
	categoryLength    = 4
	subcategoryLength = 4
	maxCodeAttempts   = 99
)

var (
	// ErrCodeSource is returned when a code component has no letters or digits.
	ErrCodeSource = errors.New("catalog: code source must contain letters or digits")
	// ErrCodeExhausted is returned when every collision suffix is taken.
	ErrCodeExhausted = errors.New("catalog: unable to generate a unique code")
)

// CodeExists reports whether a code is already in use.
type CodeExists func(code string) (bool, error)

// GenerateFoodCode builds a NAME-CAT-SUB code from the first word of name and
// the category and subcategory (6, 4 and 4 characters). On collision the
// name part is shortened and suffixed with 1 through 99.
func GenerateFoodCode(name, category, subcategory string, exists CodeExists) (string, error) {
	namePart, err := cleanAndTruncate(firstWord(name), namePartLength)
	if err != nil {
		return "", fmt.Errorf("name: %w", err)
	}
	catPart, err := cleanAndTruncate(category, categoryLength)
	if err != nil {
		return "", fmt.Errorf("category: %w", err)
	}
	subPart, err := cleanAndTruncate(subcategory, subcategoryLength)
	if err != nil {
		return "", fmt.Errorf("subcategory: %w", err)
	}

	build := func(prefix string) string {
		return prefix + "-" + catPart + "-" + subPart
	}
	return firstFree(build(namePart), exists, func(suffix string) string {
		return build(truncate(namePart, namePartLength-len(suffix)) + suffix)
	})
}

// GenerateCode builds a code of up to 16 characters from the first word of name.
func GenerateCode(name string, exists CodeExists) (string, error) {
	base, err := cleanAndTruncate(firstWord(name), maxCodeLength)
	if err != nil {
		return "", fmt.Errorf("name: %w", err)
	}
	return firstFree(base, exists, func(suffix string) string {
		return truncate(base, maxCodeLength-len(suffix)) + suffix
	})
}

func firstFree(base string, exists CodeExists, candidate func(suffix string) string) (string, error) {
	taken, err := exists(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for i := 1; i <= maxCodeAttempts; i++ {
		code := candidate(strconv.Itoa(i))
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrCodeExhausted, base)
}

func firstWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func cleanAndTruncate(text string, limit int) (string, error) {
	var b strings.Builder
	for _, r := range text {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return "", ErrCodeSource
	}
	return truncate(cleaned, limit), nil
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
