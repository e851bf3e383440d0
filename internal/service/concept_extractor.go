package service

import (
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"edconnect_backend/internal/config"
)

const maxConcepts = 10

// DefaultConceptCategories is used when the tutor config has no concept tables.
var DefaultConceptCategories = map[string]config.ConceptCategory{
	"math": {
		Subjects: []string{"math", "algebra", "geometry", "calculus", "trigonometry", "statistics"},
		Keywords: []string{"equation", "variable", "fraction", "exponent", "polynomial", "function", "slope", "coefficient", "integer", "derivative", "integral", "angle", "triangle", "probability", "ratio"},
	},
	"science": {
		Subjects: []string{"science", "biology", "chemistry", "physics"},
		Keywords: []string{"photosynthesis", "cell", "atom", "molecule", "energy", "force", "gravity", "velocity", "ecosystem", "element", "reaction", "evolution", "mass"},
	},
	"english": {
		Subjects: []string{"english", "literature", "writing", "reading", "grammar"},
		Keywords: []string{"metaphor", "simile", "theme", "thesis", "paragraph", "grammar", "noun", "verb", "adjective", "narrative", "character", "plot", "essay"},
	},
	"history": {
		Subjects: []string{"history", "social studies", "civics", "geography"},
		Keywords: []string{"revolution", "constitution", "democracy", "empire", "civilization", "treaty", "amendment", "colonization", "independence", "war"},
	},
}

type conceptTable struct {
	name     string
	subjects []string
	pattern  *regexp.Regexp
}

type conceptTables struct {
	tables []conceptTable
	union  *regexp.Regexp
}

// ConceptExtractor 根据科目选择关键词表，从回答中提取讨论过的概念
type ConceptExtractor struct {
	current atomic.Pointer[conceptTables]
}

func NewConceptExtractor(categories map[string]config.ConceptCategory) *ConceptExtractor {
	e := &ConceptExtractor{}
	e.SetCategories(categories)
	return e
}

// SetCategories swaps the keyword tables. Safe to call while Extract runs.
func (e *ConceptExtractor) SetCategories(categories map[string]config.ConceptCategory) {
	if len(categories) == 0 {
		categories = DefaultConceptCategories
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	next := &conceptTables{}
	var all []string
	for _, name := range names {
		cat := categories[name]
		subjects := make([]string, 0, len(cat.Subjects))
		for _, s := range cat.Subjects {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				subjects = append(subjects, s)
			}
		}
		next.tables = append(next.tables, conceptTable{
			name:     name,
			subjects: subjects,
			pattern:  keywordPattern(cat.Keywords),
		})
		all = append(all, cat.Keywords...)
	}
	next.union = keywordPattern(all)
	e.current.Store(next)
}

// keywordPattern matches any keyword as a whole word, optionally plural.
func keywordPattern(keywords []string) *regexp.Regexp {
	seen := map[string]bool{}
	var quoted []string
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		quoted = append(quoted, k)
	}
	if len(quoted) == 0 {
		return nil
	}
	// 长词优先，避免 "integral" 被 "integer" 之类的短词截断
	sort.Slice(quoted, func(i, j int) bool {
		if len(quoted[i]) != len(quoted[j]) {
			return len(quoted[i]) > len(quoted[j])
		}
		return quoted[i] < quoted[j]
	})
	for i, k := range quoted {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)(?:s|es)?\b`)
}

func (t *conceptTables) patternFor(subject string) *regexp.Regexp {
	subject = strings.ToLower(subject)
	if subject != "" {
		for _, table := range t.tables {
			for _, s := range table.subjects {
				if strings.Contains(subject, s) {
					return table.pattern
				}
			}
		}
	}
	return t.union
}

// Extract returns up to ten distinct capitalized keywords found in text, in
// order of first appearance.
func (e *ConceptExtractor) Extract(subject, text string) []string {
	concepts := []string{}
	pattern := e.current.Load().patternFor(subject)
	if pattern == nil || text == "" {
		return concepts
	}

	seen := map[string]bool{}
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		word := strings.ToLower(m[1])
		if seen[word] {
			continue
		}
		seen[word] = true
		concepts = append(concepts, capitalize(word))
		if len(concepts) == maxConcepts {
			break
		}
	}
	return concepts
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
