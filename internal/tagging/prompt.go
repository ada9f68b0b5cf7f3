package tagging

import (
	"fmt"
	"strings"
)

const (
	excerptLength = 1000
	maxTags       = 7
)

// BuildPrompt asks the model for 3 to 7 comma-separated tags, preferring names
// already in the vocabulary.
func BuildPrompt(title, content string, existing []string) string {
	excerpt := "No content available"
	if content != "" {
		excerpt = truncate(content, excerptLength)
	}
	vocabulary := "None"
	if len(existing) > 0 {
		vocabulary = strings.Join(existing, ", ")
	}

	return fmt.Sprintf(`Based on the document title and content, please suggest relevant tags for categorizing this document.

Document Title: %s

Document Content: %s

Existing tags in the system: %s

Please provide 3-7 relevant tags that would help categorize this document.
Prefer using existing tags when appropriate to avoid redundancy.
Return only the tags as a comma-separated list without any other text.

Example response format: technology,python,web development
`, title, excerpt, vocabulary)
}

// ParseTags splits a raw model answer into at most 7 trimmed, lower-cased,
// unique tag names in first-seen order.
func ParseTags(raw string) []string {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	seen := make(map[string]struct{}, len(parts))
	tags := make([]string, 0, maxTags)
	for _, p := range parts {
		tag := strings.ToLower(strings.TrimSpace(p))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
