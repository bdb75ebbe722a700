package vault

import (
	"reflect"
	"testing"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

func snap(payload prompt.Payload) prompt.Snapshot {
	return prompt.Snapshot{ID: "s", ProjectID: "p", Version: 1, Payload: payload}
}

func frag(text string, weight float64) prompt.Fragment {
	return prompt.Fragment{ID: "id-" + text, Text: text, Type: prompt.TypeCustom, Weight: weight}
}

func TestCompareSnapshotsSelf(t *testing.T) {
	s := snap(prompt.Payload{
		Title:    "Neon City",
		Positive: []prompt.Fragment{frag("cyberpunk", 1.0), frag("neon", 1.5)},
		Negative: []prompt.Fragment{frag("blurry", 1.0)},
		Tags:     []string{"city", "night"},
	})

	diff := CompareSnapshots(s, s)
	if !diff.Empty() {
		t.Errorf("self-diff should be empty, got %+v", diff)
	}
}

func TestCompareSnapshotsWeightChange(t *testing.T) {
	a := snap(prompt.Payload{Positive: []prompt.Fragment{frag("cat", 1.0)}})
	b := snap(prompt.Payload{Positive: []prompt.Fragment{frag("cat", 1.5)}})

	diff := CompareSnapshots(a, b)
	want := []string{"cat (1 → 1.5)"}
	if !reflect.DeepEqual(diff.PositiveModified, want) {
		t.Errorf("PositiveModified = %v, want %v", diff.PositiveModified, want)
	}
	if len(diff.PositiveAdded) != 0 || len(diff.PositiveRemoved) != 0 {
		t.Errorf("added/removed should be empty: %+v", diff)
	}
	if diff.TitleChanged || diff.DescriptionChanged {
		t.Error("title/description should be unchanged")
	}
}

func TestCompareSnapshotsAddedRemovedOrder(t *testing.T) {
	a := snap(prompt.Payload{Positive: []prompt.Fragment{frag("one", 1), frag("two", 1), frag("three", 1)}})
	b := snap(prompt.Payload{Positive: []prompt.Fragment{frag("three", 1), frag("four", 1), frag("five", 1)}})

	diff := CompareSnapshots(a, b)
	if want := []string{"four", "five"}; !reflect.DeepEqual(diff.PositiveAdded, want) {
		t.Errorf("PositiveAdded = %v, want %v (b's array order)", diff.PositiveAdded, want)
	}
	if want := []string{"one", "two"}; !reflect.DeepEqual(diff.PositiveRemoved, want) {
		t.Errorf("PositiveRemoved = %v, want %v (a's array order)", diff.PositiveRemoved, want)
	}
}

func TestCompareSnapshotsNegativeAsymmetry(t *testing.T) {
	// Negative fragments get add/remove tracking but, unlike positives, no
	// weight-modified tracking.
	a := snap(prompt.Payload{Negative: []prompt.Fragment{frag("lowres", 1.0)}})
	b := snap(prompt.Payload{Negative: []prompt.Fragment{frag("lowres", 2.0), frag("blurry", 1.0)}})

	diff := CompareSnapshots(a, b)
	if want := []string{"blurry"}; !reflect.DeepEqual(diff.NegativeAdded, want) {
		t.Errorf("NegativeAdded = %v, want %v", diff.NegativeAdded, want)
	}
	if len(diff.NegativeRemoved) != 0 {
		t.Errorf("NegativeRemoved = %v, want empty", diff.NegativeRemoved)
	}
	if len(diff.PositiveModified) != 0 {
		t.Errorf("no weight tracking should exist for negatives, got %v", diff.PositiveModified)
	}
}

func TestCompareSnapshotsDuplicateTextCollision(t *testing.T) {
	// Two a-fragments with the same text are both compared against the
	// first same-text fragment of b.
	a := snap(prompt.Payload{Positive: []prompt.Fragment{frag("glow", 1), frag("glow", 2)}})
	b := snap(prompt.Payload{Positive: []prompt.Fragment{frag("glow", 3), frag("glow", 4)}})

	diff := CompareSnapshots(a, b)
	want := []string{"glow (1 → 3)", "glow (2 → 3)"}
	if !reflect.DeepEqual(diff.PositiveModified, want) {
		t.Errorf("PositiveModified = %v, want %v", diff.PositiveModified, want)
	}
	if len(diff.PositiveAdded) != 0 || len(diff.PositiveRemoved) != 0 {
		t.Errorf("duplicate texts collapse for add/remove: %+v", diff)
	}
}

func TestCompareSnapshotsTags(t *testing.T) {
	a := snap(prompt.Payload{Tags: []string{"city", "night"}})
	b := snap(prompt.Payload{Tags: []string{"night", "rain"}})

	diff := CompareSnapshots(a, b)
	if want := []string{"rain"}; !reflect.DeepEqual(diff.TagsAdded, want) {
		t.Errorf("TagsAdded = %v, want %v", diff.TagsAdded, want)
	}
	if want := []string{"city"}; !reflect.DeepEqual(diff.TagsRemoved, want) {
		t.Errorf("TagsRemoved = %v, want %v", diff.TagsRemoved, want)
	}
}

func TestCompareSnapshotsDescription(t *testing.T) {
	empty := ""
	filled := "moody"

	cases := []struct {
		name string
		a, b *string
		want bool
	}{
		{"both unset", nil, nil, false},
		{"unset vs empty", nil, &empty, true}, // unset and "" are distinct
		{"empty vs empty", &empty, &empty, false},
		{"changed", &empty, &filled, true},
	}
	for _, tc := range cases {
		a := snap(prompt.Payload{Description: tc.a})
		b := snap(prompt.Payload{Description: tc.b})
		if got := CompareSnapshots(a, b).DescriptionChanged; got != tc.want {
			t.Errorf("%s: DescriptionChanged = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCompareSnapshotsPure(t *testing.T) {
	a := snap(prompt.Payload{
		Title:    "A",
		Positive: []prompt.Fragment{frag("cat", 1.0), frag("dog", 0.5)},
		Negative: []prompt.Fragment{frag("blurry", 1.0)},
		Tags:     []string{"x"},
	})
	b := snap(prompt.Payload{
		Title:    "B",
		Positive: []prompt.Fragment{frag("cat", 2.0), frag("bird", 1.0)},
		Tags:     []string{"y"},
	})

	first := CompareSnapshots(a, b)
	for i := 0; i < 5; i++ {
		if again := CompareSnapshots(a, b); !reflect.DeepEqual(first, again) {
			t.Fatalf("diff is not deterministic: %+v vs %+v", first, again)
		}
	}
}
