// Package privacy removes personally identifiable information from student
// text before it leaves the system.
package privacy

import (
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

type Category string

const (
	CategoryName      Category = "name"
	CategoryEmail     Category = "email"
	CategoryStudentID Category = "student_id"
	CategorySchool    Category = "school"
	CategorySSN       Category = "ssn"
	CategoryPhone     Category = "phone"
	CategoryDOB       Category = "dob"
	CategoryAddress   Category = "address"
	CategoryZIP       Category = "zip"
)

const (
	TokenStudentName = "[STUDENT_NAME]"
	TokenEmail       = "[EMAIL_REDACTED]"
	TokenStudentID   = "[STUDENT_ID]"
	TokenSchoolName  = "[SCHOOL_NAME]"
	TokenSSN         = "[SSN_REDACTED]"
	TokenPhone       = "[PHONE_REDACTED]"
	TokenDOB         = "[DOB_REDACTED]"
	TokenAddress     = "[ADDRESS_REDACTED]"
	TokenZIP         = "[ZIP_REDACTED]"
)

// placeholderPattern matches every token the redactor emits. Text inside a
// placeholder is never scanned again.
var placeholderPattern = regexp.MustCompile(`\[(?:STUDENT_NAME|EMAIL_REDACTED|STUDENT_ID|SCHOOL_NAME|SSN_REDACTED|PHONE_REDACTED|DOB_REDACTED|ADDRESS_REDACTED|ZIP_REDACTED)\]`)

// DefaultSchoolNames is used when no list is configured.
var DefaultSchoolNames = []string{
	"Lincoln High School",
	"Washington Middle School",
	"Roosevelt Elementary School",
	"Jefferson Academy",
}

// Identity is what the caller knows about the student who wrote the text.
type Identity struct {
	FullName   string `json:"fullName,omitempty"`
	Email      string `json:"email,omitempty"`
	StudentID  string `json:"studentId,omitempty"`
	SchoolName string `json:"schoolName,omitempty"`
}

type rule struct {
	category Category
	re       *regexp.Regexp
	token    string
	// literal rules capture the neighbouring characters in groups 1 and 3
	literal bool
}

// Generic patterns, applied in this order after the identity fields. Email
// rules of either kind always run first.
var genericRules = []rule{
	{CategoryEmail, regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`), TokenEmail, false},
	{CategorySSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), TokenSSN, false},
	{CategoryDOB, regexp.MustCompile(`(?i)\b(?:(?:0?[1-9]|1[0-2])[/\-.](?:0?[1-9]|[12]\d|3[01])[/\-.](?:19|20)\d{2}|(?:19|20)\d{2}-(?:0[1-9]|1[0-2])-(?:0[1-9]|[12]\d|3[01])|(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sept?(?:ember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+(?:19|20)\d{2})\b`), TokenDOB, false},
	{CategoryPhone, regexp.MustCompile(`(?:\+?1[\s.\-]?)?(?:\(\d{3}\)|\b\d{3})[\s.\-]?\d{3}[\s.\-]?\d{4}\b`), TokenPhone, false},
	{CategoryAddress, regexp.MustCompile(`(?i)\b\d{1,6}\s+(?:[a-z0-9.'\-]+\s+){0,4}?(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|way|place|pl|terrace|circle|cir|parkway|pkwy)\b\.?`), TokenAddress, false},
	{CategoryZIP, regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`), TokenZIP, false},
}

// Result carries the redacted text and how many substitutions were made per
// category.
type Result struct {
	Text   string
	Counts map[Category]int
}

func (r Result) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// Redactor is safe for concurrent use. The known-school list can be replaced
// at runtime.
type Redactor struct {
	log     *zap.Logger
	schools atomic.Pointer[[]rule]
}

func NewRedactor(schoolNames []string, log *zap.Logger) *Redactor {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Redactor{log: log}
	if len(schoolNames) == 0 {
		schoolNames = DefaultSchoolNames
	}
	r.SetSchoolNames(schoolNames)
	return r
}

func (r *Redactor) SetSchoolNames(names []string) {
	rules := make([]rule, 0, len(names))
	for _, name := range names {
		if re := literalRegexp(name); re != nil {
			rules = append(rules, rule{category: CategorySchool, re: re, token: TokenSchoolName, literal: true})
		}
	}
	r.schools.Store(&rules)
}

// Redact replaces the fields of every given identity and generic PII in
// text. Applying it to its own output changes nothing.
func (r *Redactor) Redact(text string, ids ...*Identity) Result {
	res := Result{Text: text, Counts: map[Category]int{}}
	if strings.TrimSpace(text) == "" {
		return res
	}

	rules := identityRules(ids)
	rules = append(rules, genericRules...)
	rules = append(rules, *r.schools.Load()...)
	// 邮箱必须先于姓名处理，否则 jane.doe@example.org 会被拆开
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].category == CategoryEmail && rules[j].category != CategoryEmail
	})

	// Each substitution shrinks the unprotected text, so this terminates.
	for {
		changed := false
		for _, ru := range rules {
			var n int
			res.Text, n = replaceOutsidePlaceholders(res.Text, ru)
			if n > 0 {
				res.Counts[ru.category] += n
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	if total := res.Total(); total > 0 {
		fields := []zap.Field{zap.Int("total", total)}
		cats := make([]string, 0, len(res.Counts))
		for c := range res.Counts {
			cats = append(cats, string(c))
		}
		sort.Strings(cats)
		for _, c := range cats {
			fields = append(fields, zap.Int(c, res.Counts[Category(c)]))
		}
		r.log.Info("PII redacted from outgoing message", fields...)
	}
	return res
}

// RedactText is Redact without the counts.
func (r *Redactor) RedactText(text string, ids ...*Identity) string {
	return r.Redact(text, ids...).Text
}

// identityRules orders whole values of all identities before single name
// parts, so "Jane Doe" is replaced as one name.
func identityRules(ids []*Identity) []rule {
	var rules []rule
	add := func(value string, cat Category, token string) {
		if re := literalRegexp(value); re != nil {
			rules = append(rules, rule{category: cat, re: re, token: token, literal: true})
		}
	}

	for _, id := range ids {
		if id == nil {
			continue
		}
		add(id.FullName, CategoryName, TokenStudentName)
		add(id.Email, CategoryEmail, TokenEmail)
		add(id.StudentID, CategoryStudentID, TokenStudentID)
		add(id.SchoolName, CategorySchool, TokenSchoolName)
	}

	// 单独出现的名或姓也要替换
	for _, id := range ids {
		if id == nil {
			continue
		}
		parts := strings.Fields(id.FullName)
		if len(parts) < 2 {
			continue
		}
		for _, part := range parts {
			part = strings.Trim(part, ".,;:!?\"")
			if utf8.RuneCountInString(part) >= 2 {
				add(part, CategoryName, TokenStudentName)
			}
		}
	}
	return rules
}

// wordEdge is a Unicode-aware stand-in for \b, which only knows ASCII.
const wordEdge = `[^\p{L}\p{N}_]`

// literalRegexp matches value case-insensitively as a whole word, tolerating
// any run of whitespace between its words. Group 2 is the value, groups 1 and
// 3 the characters around it.
func literalRegexp(value string) *regexp.Regexp {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}

	before, after := `()`, `()`
	if first, _ := utf8.DecodeRuneInString(fields[0]); isWordRune(first) {
		before = `(^|` + wordEdge + `)`
	}
	if last, _ := utf8.DecodeLastRuneInString(fields[len(fields)-1]); isWordRune(last) {
		after = `($|` + wordEdge + `)`
	}
	return regexp.MustCompile(`(?i)` + before + `(` + strings.Join(quoted, `\s+`) + `)` + after)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func replaceOutsidePlaceholders(text string, ru rule) (string, int) {
	locs := placeholderPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return replaceCount(text, ru)
	}

	var b strings.Builder
	b.Grow(len(text))
	total := 0
	prev := 0
	for _, loc := range locs {
		seg, n := replaceCount(text[prev:loc[0]], ru)
		b.WriteString(seg)
		b.WriteString(text[loc[0]:loc[1]])
		total += n
		prev = loc[1]
	}
	seg, n := replaceCount(text[prev:], ru)
	b.WriteString(seg)
	total += n
	return b.String(), total
}

func replaceCount(s string, ru rule) (string, int) {
	if !ru.literal {
		n := 0
		out := ru.re.ReplaceAllStringFunc(s, func(string) string {
			n++
			return ru.token
		})
		return out, n
	}

	matches := ru.re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, 0
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := 0
	for _, m := range matches {
		// 保留两侧的分隔字符，只替换 group 2
		b.WriteString(s[prev:m[4]])
		b.WriteString(ru.token)
		prev = m[5]
	}
	b.WriteString(s[prev:])
	return b.String(), len(matches)
}
