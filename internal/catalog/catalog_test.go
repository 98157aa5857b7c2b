package catalog

import (
	"testing"

	"lessonhub/internal/domain"
)

func TestDefaultCatalogIsConsistent(t *testing.T) {
	courses := Default()
	if len(courses) != 5 {
		t.Fatalf("got %d courses, want 5", len(courses))
	}
	slugs := map[string]bool{}
	for i, c := range courses {
		if c.Order != i {
			t.Errorf("%s: order %d, want %d", c.Slug, c.Order, i)
		}
		if slugs[c.Slug] {
			t.Errorf("duplicate slug %s", c.Slug)
		}
		slugs[c.Slug] = true
		for _, l := range c.Lessons {
			if _, err := domain.ParseDuration(l.Duration); err != nil {
				t.Errorf("%s/%s: bad duration %q", c.Slug, l.ID, l.Duration)
			}
		}
	}
}

func TestDefaultReturnsFreshCopy(t *testing.T) {
	a := Default()
	a[0].Lessons[0].Title = "changed"
	if Default()[0].Lessons[0].Title == "changed" {
		t.Fatal("Default shares state between calls")
	}
}
