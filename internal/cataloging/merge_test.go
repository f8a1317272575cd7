package cataloging

import (
	"reflect"
	"testing"

	"github.com/homelibrary/bookworm/internal/models"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		cover    models.Partial
		catalog  models.Record
		expected models.Record
	}{
		{
			name:     "cover fills unknown title",
			cover:    models.Partial{Title: "Территория"},
			catalog:  models.Record{Author: "Куваев О", Year: 2020},
			expected: models.Record{Title: "Территория", Author: "Куваев О", Year: 2020},
		},
		{
			name:     "catalog title wins",
			cover:    models.Partial{Title: "ТЕРРИТОРИЯ РОМАН", Author: "Олег Куваев"},
			catalog:  models.Record{Title: "Территория", Author: "Куваев О"},
			expected: models.Record{Title: "Территория", Author: "Куваев О"},
		},
		{
			name:     "cover fills unknown author",
			cover:    models.Partial{Author: "Олег Куваев"},
			catalog:  models.Record{Title: "Территория", ISBN: "9785389123456"},
			expected: models.Record{Title: "Территория", Author: "Олег Куваев", ISBN: "9785389123456"},
		},
		{
			name:     "both empty",
			expected: models.Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.cover, tt.catalog)
			if got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestMergeRecomputesAuthors(t *testing.T) {
	got := Merge(models.Partial{Author: "Олег Куваев"}, models.Record{})
	if !reflect.DeepEqual(got.Authors(), []string{"Олег Куваев"}) {
		t.Errorf("Expected authors from merged author, got %v", got.Authors())
	}
	if len(Merge(models.Partial{}, models.Record{}).Authors()) != 0 {
		t.Error("Expected no authors when author is unknown")
	}
}
