package service

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"edconnect_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const (
	DefaultSummaryText      = "Session completed"
	DefaultPerformanceScore = 75
	minPerformanceScore     = 1
	maxPerformanceScore     = 100
)

type SessionSummary struct {
	Summary          string   `json:"summary"`
	PerformanceScore int      `json:"performanceScore"`
	ConceptsCovered  []string `json:"conceptsCovered"`
	ImprovementAreas []string `json:"improvementAreas"`
	StrengthAreas    []string `json:"strengthAreas"`
}

func DefaultSessionSummary() SessionSummary {
	return SessionSummary{
		Summary:          DefaultSummaryText,
		PerformanceScore: DefaultPerformanceScore,
		ConceptsCovered:  []string{},
		ImprovementAreas: []string{},
		StrengthAreas:    []string{},
	}
}

// SessionSummarizer asks the model for a JSON report on a finished session.
// It never fails: provider and parse errors fall back to defaults.
type SessionSummarizer struct {
	completer ChatCompleter
	timeout   time.Duration
	log       *zap.Logger
}

func NewSessionSummarizer(completer ChatCompleter, timeout time.Duration, log *zap.Logger) *SessionSummarizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionSummarizer{completer: completer, timeout: timeout, log: log}
}

func (s *SessionSummarizer) Summarize(ctx context.Context, subject, topic string, transcript []ChatMessage) SessionSummary {
	if len(transcript) == 0 {
		return DefaultSessionSummary()
	}

	prompt := BuildSummaryPrompt(subject, topic, transcript)
	text, err := completeTraced(ctx, s.completer, s.timeout, "summary", summarySystemPrompt, []ChatMessage{{Role: "user", Content: prompt}})
	if err != nil {
		s.log.Warn("Session summary request failed, using defaults", zap.Error(err))
		monitoring.SummaryFallbacks.Inc()
		return DefaultSessionSummary()
	}

	summary, complete := ParseSessionSummary(text)
	if !complete {
		s.log.Warn("Session summary was incomplete, defaults applied", zap.Int("responseLength", len(text)))
		monitoring.SummaryFallbacks.Inc()
	}
	return summary
}

// ParseSessionSummary extracts the first JSON object from a model reply.
// Missing or malformed fields take their defaults and the score is clamped
// to [1, 100]. The bool reports whether every field was usable.
func ParseSessionSummary(text string) (SessionSummary, bool) {
	result := DefaultSessionSummary()

	fields, ok := firstJSONObject(text)
	if !ok {
		return result, false
	}

	complete := true
	if s, ok := parseString(fields["summary"]); ok {
		result.Summary = s
	} else {
		complete = false
	}
	if score, ok := parseScore(fields["performanceScore"]); ok {
		result.PerformanceScore = score
	} else {
		complete = false
	}
	result.PerformanceScore = clampScore(result.PerformanceScore)

	for name, dst := range map[string]*[]string{
		"conceptsCovered":  &result.ConceptsCovered,
		"improvementAreas": &result.ImprovementAreas,
		"strengthAreas":    &result.StrengthAreas,
	} {
		if list, ok := parseStringList(fields[name]); ok {
			*dst = list
		} else {
			complete = false
		}
	}
	return result, complete
}

// firstJSONObject tries every '{' in order, so braces in leading prose do not
// hide the object that follows.
func firstJSONObject(text string) (map[string]json.RawMessage, bool) {
	for offset := 0; offset < len(text); {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i
		var fields map[string]json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&fields); err == nil {
			return fields, true
		}
		offset = start + 1
	}
	return nil, false
}

func clampScore(score int) int {
	if score < minPerformanceScore {
		return minPerformanceScore
	}
	if score > maxPerformanceScore {
		return maxPerformanceScore
	}
	return score
}

func parseString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// parseScore 接受整数、小数（四舍五入）和数字字符串
func parseScore(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0, false
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) {
		return 0, false
	}
	if math.IsInf(f, 0) || math.Abs(f) > 1e9 {
		return clampScore(int(math.Copysign(maxPerformanceScore+1, f))), true
	}
	return int(math.Round(f)), true
}

func parseStringList(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return []string{}, false
	}
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		var single string
		if json.Unmarshal(raw, &single) == nil && strings.TrimSpace(single) != "" {
			return []string{strings.TrimSpace(single)}, true
		}
		return []string{}, false
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
	}
	return list, true
}
