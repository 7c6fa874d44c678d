package nhs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const asthmaResponse = `{
	"name": "Asthma",
	"description": "Find out about asthma, a common lung condition.",
	"url": "https://api.nhs.uk/conditions/asthma/",
	"dateModified": "2023-03-08T12:00:00+00:00",
	"lastReviewed": ["2021-04-19T00:00:00+00:00", "2024-04-19T00:00:00+00:00"],
	"genre": ["Condition"],
	"mainEntityOfPage": [
		{
			"headline": "Overview",
			"text": "Asthma is a common lung condition that causes breathing difficulties.",
			"hasPart": [
				{"headline": "Symptoms", "text": "Wheezing, breathlessness and a tight chest."}
			]
		},
		{"headline": "Treatment", "description": "Inhalers are the main treatment."}
	]
}`

func TestGetHealthTopic(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/conditions/asthma") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(asthmaResponse))
	})

	topic, err := client.GetHealthTopic(context.Background(), "Asthma")
	if err != nil {
		t.Fatal(err)
	}
	if topic.Name != "Asthma" {
		t.Fatalf("expected name 'Asthma', got %q", topic.Name)
	}
	if topic.URL != "https://www.nhs.uk/conditions/asthma/" {
		t.Fatalf("expected public site URL, got %q", topic.URL)
	}
	if len(topic.Sections) == 0 {
		t.Fatal("expected non-empty content sections")
	}

	// Nested hasPart content is flattened in document order.
	if topic.Sections[0].Headline != "Overview" {
		t.Fatalf("expected 'Overview' first, got %q", topic.Sections[0].Headline)
	}
	var foundSymptoms, foundTreatment bool
	for _, s := range topic.Sections {
		if s.Headline == "Symptoms" {
			foundSymptoms = true
		}
		// description falls back into text when text is absent
		if s.Headline == "Treatment" && s.Text == "Inhalers are the main treatment." {
			foundTreatment = true
		}
	}
	if !foundSymptoms || !foundTreatment {
		t.Fatalf("missing extracted sections: %+v", topic.Sections)
	}
}

func TestGetHealthTopic_Deduplicates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "Flu",
			"mainEntityOfPage": [{"headline": "Overview", "text": "Flu basics."}],
			"hasPart": [{"headline": "Overview", "text": "Flu basics."}]
		}`))
	})

	topic, err := client.GetHealthTopic(context.Background(), "flu")
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, s := range topic.Sections {
		if s.Headline == "Overview" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected duplicate sections to be dropped, got %d", count)
	}
}

func TestGetHealthTopic_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := client.GetHealthTopic(context.Background(), "not-a-real-topic"); KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got: %v", err)
	}
}

func TestGetHealthTopic_EmptySlug(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an empty slug")
	}))
	defer ts.Close()

	client, err := NewClient(Config{Endpoint: ts.URL, SubscriptionKey: "test-key"}, ts.Client())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.GetHealthTopic(context.Background(), "  "); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument, got: %v", err)
	}
}
