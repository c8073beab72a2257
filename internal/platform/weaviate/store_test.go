package weaviate

import (
	"testing"

	"github.com/weaviate/weaviate/entities/models"
)

func TestClassName(t *testing.T) {
	cases := map[string]string{
		"admission":       "MyuAdmission",
		"student-support": "MyuStudentSupport",
		"web_search":      "MyuWebSearch",
	}
	for in, want := range cases {
		if got := ClassName("Myu", in); got != want {
			t.Fatalf("ClassName(%q): want=%q got=%q", in, want, got)
		}
	}
	if got := ClassName("", "9lives"); got != "C9lives" {
		t.Fatalf("leading digit: got=%q", got)
	}
}

func TestParseMatches(t *testing.T) {
	data := map[string]models.JSONObject{
		"Get": map[string]interface{}{
			"MyuAdmission": []interface{}{
				map[string]interface{}{
					"content":     "Học phí ngành Luật",
					"source":      "hoc_phi.txt",
					"point_id":    "hoc_phi.txt#3",
					"_additional": map[string]interface{}{"certainty": 0.82},
				},
				"garbage",
			},
		},
	}
	got := parseMatches(data, "MyuAdmission")
	if len(got) != 1 {
		t.Fatalf("matches: want=1 got=%d", len(got))
	}
	if got[0].ID != "hoc_phi.txt#3" || got[0].Score != 0.82 || got[0].Source != "hoc_phi.txt" {
		t.Fatalf("match: got=%+v", got[0])
	}
	if parseMatches(map[string]models.JSONObject{}, "MyuAdmission") != nil {
		t.Fatalf("expected nil for empty data")
	}
}

func TestObjectIDDeterministic(t *testing.T) {
	a := objectID("MyuAdmission", "x#1")
	if a != objectID("MyuAdmission", "x#1") {
		t.Fatalf("object id not deterministic")
	}
	if a == objectID("MyuStudentSupport", "x#1") {
		t.Fatalf("object id should differ across classes")
	}
}
