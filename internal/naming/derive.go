package naming

import (
	"fmt"
	"strings"
	"time"

	"stratforge/internal/logging"
)

const (
	// MinTerms is how many vocabulary terms a description needs before the
	// remaining identifier words are taken from ordinary tokens.
	MinTerms = 2

	// MaxTerms caps the words joined into a base identifier.
	MaxTerms = 2

	// maxRecognized caps the vocabulary terms reported by Terms.
	maxRecognized = 3

	// TypeSuffix ends every derived type name.
	TypeSuffix = "Strategy"

	fallbackType    = "GenericStrategy"
	fallbackDisplay = "Generic Trading Strategy"
	imageSuffix     = "-algo"
	timestampLayout = "20060102_150405"
)

// Identity is the set of identifiers derived from one description.
type Identity struct {
	Terms        []string
	Keywords     []string
	BaseName     string
	ProjectName  string
	StrategyName string
	ClassName    string
	ImageName    string
}

// Tokenize splits text into lowercase alphanumeric words.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(c rune) bool {
		return c > 127 || !isAlnum(byte(c))
	})
}

// Terms returns the vocabulary terms present in text, in vocabulary order,
// at most three.
func Terms(text string) []string {
	present := make(map[string]bool)
	for _, tok := range Tokenize(text) {
		if _, ok := vocabularyRank[tok]; ok {
			present[tok] = true
		}
	}
	var out []string
	for _, term := range Vocabulary {
		if present[term] {
			out = append(out, term)
			if len(out) == maxRecognized {
				break
			}
		}
	}
	return out
}

// Keywords selects the words of a base identifier: recognized vocabulary
// terms first, then, if fewer than MinTerms matched, the first non-stopword
// tokens of text in input order. At most MaxTerms words are returned.
func Keywords(text string) []string {
	words := Terms(text)
	if len(words) < MinTerms {
		seen := make(map[string]bool, len(words))
		for _, w := range words {
			seen[w] = true
		}
		for _, tok := range Tokenize(text) {
			if len(words) >= MaxTerms {
				break
			}
			if seen[tok] || IsStopword(tok) {
				continue
			}
			seen[tok] = true
			words = append(words, tok)
		}
	}
	if len(words) > MaxTerms {
		words = words[:MaxTerms]
	}
	return words
}

// BaseName derives the short project identifier, e.g. "rsi-momentum".
func BaseName(text string) string {
	return ProjectRules.BaseName(text)
}

// BaseName derives the short project identifier under r.
func (r Rules) BaseName(text string) string {
	words := Keywords(text)
	if len(words) == 0 {
		return r.Sanitize(r.Fallback)
	}
	return r.Sanitize(strings.Join(words, Separator))
}

// TypeName derives a type-style identifier, e.g. "RsiMomentumStrategy".
// The result starts with a letter and ends with TypeSuffix.
func TypeName(text string) string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return fallbackType
	}
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(capitalize(tok))
	}
	name := b.String()
	if c := name[0]; c < 'A' || c > 'Z' {
		name = TypeSuffix + name
	}
	if !strings.HasSuffix(name, TypeSuffix) {
		name += TypeSuffix
	}
	return name
}

// DisplayName renders words as a title, e.g. "Rsi Momentum Strategy".
func DisplayName(words []string) string {
	if len(words) == 0 {
		return fallbackDisplay
	}
	parts := make([]string, 0, len(words)+1)
	for _, w := range words {
		parts = append(parts, capitalize(strings.ToLower(w)))
	}
	if !strings.EqualFold(parts[len(parts)-1], TypeSuffix) {
		parts = append(parts, TypeSuffix)
	}
	return strings.Join(parts, " ")
}

// ImageName derives a container image name from a base identifier.
func ImageName(base string) string {
	return ProjectRules.ImageName(base)
}

// ImageName derives a container image name using r's prefix, fallback and
// length with the image character set.
func (r Rules) ImageName(base string) string {
	img := r
	img.Extra = ImageRules.Extra
	return img.Sanitize(strings.TrimSuffix(base, imageSuffix) + imageSuffix)
}

// ProjectName appends a timestamp to base so repeated generations of the
// same description land in distinct directories.
func ProjectName(base string, at time.Time) string {
	return ProjectRules.ProjectName(base, at)
}

// ProjectName is the package-level ProjectName under r.
func (r Rules) ProjectName(base string, at time.Time) string {
	return r.Sanitize(fmt.Sprintf("%s_%s", base, at.Format(timestampLayout)))
}

// Derive computes every identifier for description at time now.
func Derive(description string, now time.Time) Identity {
	return ProjectRules.Derive(description, now)
}

// Derive computes every identifier for description under r.
func (r Rules) Derive(description string, now time.Time) Identity {
	keywords := Keywords(description)
	base := r.BaseName(description)

	id := Identity{
		Terms:        Terms(description),
		Keywords:     keywords,
		BaseName:     base,
		ProjectName:  r.ProjectName(base, now),
		StrategyName: DisplayName(keywords),
		ClassName:    fallbackType,
		ImageName:    r.ImageName(base),
	}
	if len(keywords) > 0 {
		id.ClassName = TypeName(strings.Join(keywords, " "))
	}

	logging.Get(logging.CategoryNaming).Debug("derived identity base=%s class=%s image=%s terms=%v",
		id.BaseName, id.ClassName, id.ImageName, id.Terms)
	return id
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
