package service

import (
	"fmt"
	"strings"
	"testing"

	"edconnect_backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestBuildTutorSystemPrompt(t *testing.T) {
	assert.Equal(t, tutorSystemPrompt, BuildTutorSystemPrompt("", ""))
	assert.Equal(t, tutorSystemPrompt+"\n\nSubject: Algebra", BuildTutorSystemPrompt("Algebra", ""))
	assert.Equal(t, tutorSystemPrompt+"\n\nSubject: Algebra\nTopic: Linear equations", BuildTutorSystemPrompt("Algebra", "Linear equations"))
	assert.Equal(t, tutorSystemPrompt+"\nTopic: Fractions", BuildTutorSystemPrompt("", "Fractions"))
}

func TestExtractUsesSubjectTable(t *testing.T) {
	e := NewConceptExtractor(nil)
	text := "An equation balances both sides. Photosynthesis is not relevant here, but each variable and every Variable counts once."

	assert.Equal(t, []string{"Equation", "Variable"}, e.Extract("Algebra II", text))
	assert.Equal(t, []string{"Photosynthesis"}, e.Extract("AP Biology", text))
}

func TestExtractFallsBackToUnion(t *testing.T) {
	e := NewConceptExtractor(nil)
	text := "The treaty ended the war; a metaphor and an atom walk into an equation."

	got := e.Extract("Art", text)
	assert.Equal(t, []string{"Treaty", "War", "Metaphor", "Atom", "Equation"}, got)
}

func TestExtractCapsAtTen(t *testing.T) {
	e := NewConceptExtractor(nil)
	var words []string
	for _, k := range DefaultConceptCategories["math"].Keywords {
		words = append(words, k, strings.ToUpper(k))
	}

	got := e.Extract("Music", strings.Join(words, " "))
	assert.Len(t, got, maxConcepts)
	seen := map[string]bool{}
	for _, c := range got {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
		assert.Equal(t, strings.ToUpper(c[:1]), c[:1])
	}
}

func TestExtractPluralsAndWordBoundaries(t *testing.T) {
	e := NewConceptExtractor(map[string]config.ConceptCategory{
		"math": {Subjects: []string{"math"}, Keywords: []string{"fraction", "integer", "integral"}},
	})
	got := e.Extract("math", "Fractions, integers and integrals; not fractional or integerish.")
	assert.Equal(t, []string{"Fraction", "Integer", "Integral"}, got)
	assert.Empty(t, e.Extract("math", ""))
}

func TestSetCategoriesSwapsTables(t *testing.T) {
	e := NewConceptExtractor(nil)
	e.SetCategories(map[string]config.ConceptCategory{
		"coding": {Subjects: []string{"computer"}, Keywords: []string{"loop", "array"}},
	})
	assert.Equal(t, []string{"Loop", "Array"}, e.Extract("Computer Science", "A loop walks an array."))
	assert.Empty(t, e.Extract("Algebra", "An equation."))
}

func ExampleConceptExtractor_Extract() {
	e := NewConceptExtractor(nil)
	fmt.Println(e.Extract("Geometry", "Every triangle has three angles."))
	// Output: [Triangle Angle]
}
