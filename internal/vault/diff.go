package vault

import (
	"strconv"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

// DiffResult is a structural comparison of two snapshot payloads. It is
// computed on demand and never persisted. Modified entries are rendered as
// "text (oldWeight → newWeight)".
type DiffResult struct {
	TitleChanged       bool     `json:"titleChanged"`
	DescriptionChanged bool     `json:"descriptionChanged"`
	PositiveAdded      []string `json:"positiveAdded"`
	PositiveRemoved    []string `json:"positiveRemoved"`
	PositiveModified   []string `json:"positiveModified"`
	NegativeAdded      []string `json:"negativeAdded"`
	NegativeRemoved    []string `json:"negativeRemoved"`
	TagsAdded          []string `json:"tagsAdded"`
	TagsRemoved        []string `json:"tagsRemoved"`
}

// Empty reports whether the diff found no changes at all.
func (d DiffResult) Empty() bool {
	return !d.TitleChanged && !d.DescriptionChanged &&
		len(d.PositiveAdded) == 0 && len(d.PositiveRemoved) == 0 &&
		len(d.PositiveModified) == 0 &&
		len(d.NegativeAdded) == 0 && len(d.NegativeRemoved) == 0 &&
		len(d.TagsAdded) == 0 && len(d.TagsRemoved) == 0
}

// CompareSnapshots computes the structural diff between two snapshots.
// Pure and deterministic: identical inputs always produce identical output,
// including list order (added lists follow b's order, removed lists a's).
//
// Fragments are compared by Text value, not ID; duplicate texts collapse to
// one logical tag, and weight changes are matched against the first
// occurrence in b. Weight changes are only tracked for positive fragments.
func CompareSnapshots(a, b prompt.Snapshot) DiffResult {
	diff := DiffResult{
		TitleChanged:       a.Payload.Title != b.Payload.Title,
		DescriptionChanged: !equalStringPtr(a.Payload.Description, b.Payload.Description),
	}

	diff.PositiveAdded, diff.PositiveRemoved = addedRemovedTexts(a.Payload.Positive, b.Payload.Positive)
	diff.PositiveModified = modifiedWeights(a.Payload.Positive, b.Payload.Positive)

	diff.NegativeAdded, diff.NegativeRemoved = addedRemovedTexts(a.Payload.Negative, b.Payload.Negative)

	diff.TagsAdded = missingFrom(b.Payload.Tags, a.Payload.Tags)
	diff.TagsRemoved = missingFrom(a.Payload.Tags, b.Payload.Tags)

	return diff
}

// equalStringPtr treats unset (nil) and empty ("") descriptions as distinct.
func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func addedRemovedTexts(a, b []prompt.Fragment) (added, removed []string) {
	aTexts := fragmentTexts(a)
	bTexts := fragmentTexts(b)
	return missingFrom(bTexts, aTexts), missingFrom(aTexts, bTexts)
}

func fragmentTexts(fragments []prompt.Fragment) []string {
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	return texts
}

// missingFrom returns the entries of list absent from other, preserving
// list's order. Duplicates in list that are absent appear once per
// occurrence of the source, matching a plain filter over the array.
func missingFrom(list, other []string) []string {
	index := make(map[string]struct{}, len(other))
	for _, s := range other {
		index[s] = struct{}{}
	}
	out := []string{}
	for _, s := range list {
		if _, ok := index[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// modifiedWeights emits "text (old → new)" for every fragment of a whose
// first same-text match in b carries a different weight. Two a-fragments
// with the same text are both compared against that same first match.
func modifiedWeights(a, b []prompt.Fragment) []string {
	out := []string{}
	for _, fa := range a {
		for _, fb := range b {
			if fb.Text != fa.Text {
				continue
			}
			if fb.Weight != fa.Weight {
				out = append(out, fa.Text+" ("+formatWeight(fa.Weight)+" → "+formatWeight(fb.Weight)+")")
			}
			break
		}
	}
	return out
}

// formatWeight prints a weight without trailing zeros: 1 → "1", 1.5 → "1.5".
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
