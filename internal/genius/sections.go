// Package genius holds the interview domain: the genius element catalog,
// prompt construction, bounded history windowing, progressive extraction of
// fields from a partial JSON stream, and final response parsing.
package genius

import "github.com/villageofwisdom/genius-backend/internal/models"

// Element describes one genius element and how the guide should explore it.
type Element struct {
	Title       string
	Description string
	Prompts     string
}

// SectionOrder is the fixed interview order. Conversations walk it front to
// back; a profile is complete when every entry is complete.
var SectionOrder = []string{
	"Interest Awareness",
	"Racial/Cultural Pride",
	"Can-Do Attitude",
	"Multicultural Navigation",
	"Selective Trust",
	"Social Justice",
}

var elements = map[string]Element{
	"Interest Awareness": {
		Title:       "Interest Awareness",
		Description: "Understanding the student's unique interests, passions, curiosities, and how they engage with learning.",
		Prompts:     "Ask about hobbies, favorite subjects, what excites them about learning, how they spend free time, and what topics they could talk about for hours.",
	},
	"Racial/Cultural Pride": {
		Title:       "Racial/Cultural Pride",
		Description: "Exploring the student's sense of cultural identity, heritage, traditions, and pride in their background.",
		Prompts:     "Ask about family traditions, cultural practices they enjoy, what they love about their heritage, role models from their community, and how their culture shapes who they are.",
	},
	"Can-Do Attitude": {
		Title:       "Can-Do Attitude",
		Description: "Understanding the student's resilience, perseverance, growth mindset, and how they handle challenges.",
		Prompts:     "Ask about times they overcame difficulties, how they respond to setbacks, what motivates them to keep trying, and examples of persistence or determination.",
	},
	"Multicultural Navigation": {
		Title:       "Multicultural Navigation",
		Description: "Exploring how the student interacts across different cultural contexts, adapts to diverse environments, and builds bridges between communities.",
		Prompts:     "Ask about friendships across backgrounds, experiences in diverse settings, how they adapt to different social contexts, and their comfort navigating multiple cultural spaces.",
	},
	"Selective Trust": {
		Title:       "Selective Trust",
		Description: "Understanding the student's discernment in relationships, who they trust and look up to, and how they evaluate trustworthiness in others.",
		Prompts:     "Ask about trusted adults and mentors outside the family, how they decide who to trust, relationships with teachers or community members, and what qualities they value in people.",
	},
	"Social Justice": {
		Title:       "Social Justice",
		Description: "Exploring the student's awareness of fairness, equity, and their inclination to speak up or act when they see injustice.",
		Prompts:     "Ask about times they noticed something unfair, how they responded, causes they care about, and their thoughts on making the world a better place.",
	},
}

// ElementByTitle returns the catalog entry for a section title.
func ElementByTitle(title string) (Element, bool) {
	e, ok := elements[title]
	return e, ok
}

// NextSection returns the section after the given one, or "" when the given
// section is the last (or unknown).
func NextSection(current string) string {
	for i, title := range SectionOrder {
		if title == current {
			if i+1 < len(SectionOrder) {
				return SectionOrder[i+1]
			}
			return ""
		}
	}
	return ""
}

// IsLastSection reports whether the given section closes the interview.
func IsLastSection(current string) bool {
	return len(SectionOrder) > 0 && current == SectionOrder[len(SectionOrder)-1]
}

// DefaultSections seeds a new profile's section list, all not-started.
func DefaultSections() []models.Section {
	out := make([]models.Section, 0, len(SectionOrder))
	for _, title := range SectionOrder {
		out = append(out, models.Section{Title: title, Status: models.SectionNotStarted})
	}
	return out
}

// PercentComplete derives the completion percentage from section statuses.
func PercentComplete(sections []models.Section) int {
	if len(sections) == 0 {
		return 0
	}
	done := 0
	for _, s := range sections {
		if s.Status == models.SectionComplete {
			done++
		}
	}
	return int(float64(done)/float64(len(sections))*100 + 0.5)
}
