package forecast

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/angelmondragon/mise-backend/pkg/enums"
)

const (
	maxReasoningRunes = 160
	maxOverrideDays   = 3650
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")
	blankLineRe  = regexp.MustCompile(`\n[ \t]*\r?\n`)

	daysLabelRe = regexp.MustCompile(`(?i)days?\s+(?:until|to|before)\s+stock\s*-?\s*out\W{0,6}(\d+)`)
	daysRe      = regexp.MustCompile(`(?i)\b(\d+)\s*(?:-\s*)?days?\b`)

	priorityLabelRe  = regexp.MustCompile(`(?i)\bpriority\W{0,6}(high|medium|low)\b`)
	prioritySuffixRe = regexp.MustCompile(`(?i)\b(high|medium|low)[\s-]+priority\b`)
	priorityBareRe   = regexp.MustCompile(`(?i)\b(high|medium|low)\b`)

	reasonLabelRe = regexp.MustCompile(`(?i)\breason(?:ing)?[\s*_]*[:\-]\s*([^\n]+)`)
	becauseRe     = regexp.MustCompile(`(?i)\bbecause\s+([^\n.]+)`)
)

// Reconcile merges overrides found in the full completion text into the
// baseline. It never adds, removes or reorders suggestions; a suggestion with
// nothing extracted is returned unchanged.
func Reconcile(baseline []Suggestion, fullText string) []Suggestion {
	detailed := ReconcileDetailed(baseline, fullText)
	out := make([]Suggestion, len(detailed))
	for i, r := range detailed {
		out[i] = r.Merged()
	}
	return out
}

// ReconcileDetailed returns each baseline suggestion paired with its override.
// An entry in a JSON array takes precedence for the item it names; items the
// array leaves out fall back to the free-text search.
func ReconcileDetailed(baseline []Suggestion, fullText string) []Reconciled {
	out := make([]Reconciled, len(baseline))
	structured, ok := structuredOverrides(fullText)
	for i, s := range baseline {
		out[i] = Reconciled{Baseline: s}
		if ok {
			if o := structured[strings.ToLower(strings.TrimSpace(s.Name))]; o != nil {
				out[i].Override = o
				continue
			}
		}
		out[i].Override = textOverride(s.Name, fullText)
	}
	return out
}

type structuredEntry struct {
	Name              string   `json:"name"`
	DaysUntilStockout *float64 `json:"daysUntilStockout"`
	Priority          *string  `json:"priority"`
	Reasoning         *string  `json:"reasoning"`
}

func structuredOverrides(text string) (map[string]*Override, bool) {
	var candidates []string
	for _, m := range fencedJSONRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	for _, raw := range candidates {
		var entries []structuredEntry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			continue
		}
		overrides := make(map[string]*Override, len(entries))
		for _, e := range entries {
			key := strings.ToLower(strings.TrimSpace(e.Name))
			if key == "" {
				continue
			}
			o := &Override{}
			if e.DaysUntilStockout != nil {
				o.DaysUntilStockout = validDays(int(math.Round(*e.DaysUntilStockout)))
			}
			if e.Priority != nil {
				o.Priority = parsePriority(*e.Priority)
			}
			if e.Reasoning != nil {
				o.Reasoning = cleanReasoning(*e.Reasoning)
			}
			if !o.Empty() {
				overrides[key] = o
			}
		}
		if len(overrides) > 0 {
			return overrides, true
		}
	}
	return nil, false
}

// textOverride looks at each block that mentions name and returns the first
// one that yields at least one field. A block starts at the name itself and
// runs to the next blank line or the end of text, so text earlier on the same
// line never counts.
func textOverride(name, text string) *Override {
	nameRe := nameMatcher(name)
	if nameRe == nil {
		return nil
	}
	for _, loc := range nameRe.FindAllStringIndex(text, -1) {
		start := loc[0]
		end := len(text)
		if m := blankLineRe.FindStringIndex(text[loc[1]:]); m != nil {
			end = loc[1] + m[0]
		}
		if o := extract(text[start:end]); !o.Empty() {
			return o
		}
	}
	return nil
}

func extract(block string) *Override {
	o := &Override{}

	if m := daysLabelRe.FindStringSubmatch(block); m != nil {
		o.DaysUntilStockout = parseDays(m[1])
	} else if m := daysRe.FindStringSubmatch(block); m != nil {
		o.DaysUntilStockout = parseDays(m[1])
	}

	for _, re := range []*regexp.Regexp{priorityLabelRe, prioritySuffixRe, priorityBareRe} {
		if m := re.FindStringSubmatch(block); m != nil {
			o.Priority = parsePriority(m[1])
			break
		}
	}

	if m := reasonLabelRe.FindStringSubmatch(block); m != nil {
		o.Reasoning = cleanReasoning(m[1])
	} else if m := becauseRe.FindStringSubmatch(block); m != nil {
		o.Reasoning = cleanReasoning(m[1])
	}
	return o
}

// nameMatcher matches name case-insensitively, on word boundaries where the
// name itself starts or ends with a word character.
func nameMatcher(name string) *regexp.Regexp {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	pattern := regexp.QuoteMeta(name)
	if first, _ := utf8.DecodeRuneInString(name); isWordRune(first) {
		pattern = `\b` + pattern
	}
	if last, _ := utf8.DecodeLastRuneInString(name); isWordRune(last) {
		pattern += `\b`
	}
	return regexp.MustCompile(`(?i)` + pattern)
}

func isWordRune(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

func parseDays(raw string) *int {
	n := 0
	for _, r := range raw {
		n = n*10 + int(r-'0')
		if n > maxOverrideDays {
			return nil
		}
	}
	return validDays(n)
}

func validDays(n int) *int {
	if n < 0 || n > maxOverrideDays {
		return nil
	}
	return &n
}

func parsePriority(raw string) *enums.Priority {
	p, err := enums.ParsePriority(raw)
	if err != nil {
		return nil
	}
	return &p
}

func cleanReasoning(raw string) *string {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "*_`\"'"))
	s = strings.TrimRight(s, " .,;:")
	if s == "" {
		return nil
	}
	if utf8.RuneCountInString(s) > maxReasoningRunes {
		runes := []rune(s)
		s = strings.TrimSpace(string(runes[:maxReasoningRunes]))
	}
	return &s
}
