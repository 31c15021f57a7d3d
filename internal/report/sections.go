package report

import (
	"regexp"
	"strings"
)

const maxSectionItems = 3

// KeyTerms are bolded wherever they appear in a report line.
var KeyTerms = []string{
	"Social Engagement", "Self-Efficacy", "Temperament",
	"Internalizing", "Self-Esteem", "School Refusal",
	"Emotional Expression", "Dependent Behavior",
	"Parental Reinforcement", "Communication",
	"Independence", "Social Interaction",
}

var listMarker = regexp.MustCompile(`^(?:[-*•+]\s+|\d+[.)]\s*)`)

type section int

const (
	sectionNone section = iota
	sectionStrengths
	sectionWeaknesses
	sectionRecommendations
)

// FormatItem bolds every key term that is not already bold.
func FormatItem(item string) string {
	for _, term := range KeyTerms {
		if strings.Contains(item, term) && !strings.Contains(item, "**"+term+"**") {
			item = strings.ReplaceAll(item, term, "**"+term+"**")
		}
	}
	return item
}

// ParseSections splits a model answer into strengths, weaknesses and
// recommendations. Each list holds at most three entries and never comes
// back empty.
func ParseSections(text string) (strengths, weaknesses, recommendations []string) {
	buckets := map[section][]string{}
	current := sectionNone

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if s := headingOf(line); s != sectionNone {
			current = s
			continue
		}
		if current == sectionNone {
			continue
		}
		item := strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if item == "" {
			continue
		}
		buckets[current] = append(buckets[current], FormatItem(item))
	}

	return capSection(buckets[sectionStrengths], "strengths"),
		capSection(buckets[sectionWeaknesses], "weaknesses"),
		capSection(buckets[sectionRecommendations], "recommendations")
}

func headingOf(line string) section {
	lower := strings.ToLower(line)
	var s section
	switch {
	case strings.Contains(lower, "strength"):
		s = sectionStrengths
	case strings.Contains(lower, "weakness"),
		strings.Contains(lower, "area for improvement"),
		strings.Contains(lower, "areas for improvement"):
		s = sectionWeaknesses
	case strings.Contains(lower, "recommendation"):
		s = sectionRecommendations
	default:
		return sectionNone
	}
	if !looksLikeHeading(line) {
		return sectionNone
	}
	return s
}

func looksLikeHeading(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	bare := strings.TrimSpace(strings.Trim(line, "*#_ "))
	if strings.HasSuffix(bare, ":") {
		return true
	}
	bare = listMarker.ReplaceAllString(bare, "")
	return len(strings.Fields(bare)) <= 8
}

func capSection(items []string, name string) []string {
	if len(items) == 0 {
		return []string{"No " + name + " identified"}
	}
	if len(items) > maxSectionItems {
		items = items[:maxSectionItems]
	}
	return items
}
