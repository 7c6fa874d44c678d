package nhs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// GetHealthTopic looks up a condition page by its URL slug, e.g. "asthma".
// It returns a not_found error for unrecognized slugs.
func (c *Client) GetHealthTopic(ctx context.Context, slug string) (HealthTopic, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return HealthTopic{}, InvalidArgument("topic", "must not be empty")
	}

	endpoint := fmt.Sprintf("%s/conditions/%s",
		strings.TrimSuffix(c.cfg.Endpoint, "/"), slug)

	c.logger.Info("fetching health topic", "slug", slug)

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return HealthTopic{}, NotFound("health topic %q not found", slug)
		}
		return HealthTopic{}, err
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return HealthTopic{}, UpstreamProtocolError("decode health topic response", err)
	}

	topic := HealthTopic{
		Name:         stringField(data, "name"),
		Description:  stringField(data, "description"),
		DateModified: stringField(data, "dateModified"),
		LastReviewed: stringSlice(data["lastReviewed"]),
		Genre:        stringSlice(data["genre"]),
		Sections:     extractSections(data),
	}
	if topic.Name == "" {
		return HealthTopic{}, UpstreamProtocolError("health topic response missing name", nil)
	}

	// The content API reports its own host; callers want the public site.
	if apiURL := stringField(data, "url"); apiURL != "" {
		topic.URL = strings.Replace(apiURL, "api.nhs.uk", "www.nhs.uk", 1)
	}

	return topic, nil
}

// extractSections walks mainEntityOfPage/hasPart trees and flattens every
// headline/text pair in document order, dropping duplicates.
func extractSections(data map[string]any) []ContentSection {
	var sections []ContentSection

	var walk func(part any)
	walk = func(part any) {
		switch node := part.(type) {
		case []any:
			for _, item := range node {
				walk(item)
			}
		case map[string]any:
			section := ContentSection{
				Headline: stringField(node, "headline"),
				Text:     stringField(node, "text"),
			}
			if section.Text == "" {
				section.Text = stringField(node, "description")
			}
			if section.Headline != "" || section.Text != "" {
				sections = append(sections, section)
			}
			if sub, ok := node["hasPart"]; ok {
				walk(sub)
			}
		}
	}

	if main, ok := data["mainEntityOfPage"]; ok {
		walk(main)
	}
	if parts, ok := data["hasPart"]; ok {
		walk(parts)
	}
	walk(data)

	return dedupeSections(sections)
}

func dedupeSections(sections []ContentSection) []ContentSection {
	seen := make(map[string]bool, len(sections))
	unique := sections[:0:0]
	for _, s := range sections {
		key := truncate(s.Headline, 50) + "\x00" + truncate(s.Text, 50)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, s)
	}
	return unique
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
