package prompt

import (
	"fmt"
	"math"
	"strings"
)

// Target formats for rendered prompts.
const (
	FormatMidjourney      = "midjourney"
	FormatStableDiffusion = "stable-diffusion"
)

// weightEpsilon: a fragment whose weight is within 0.01 of 1.0 renders as
// bare text with no weighting syntax.
const weightEpsilon = 0.01

// BuildMidjourney renders the project as a Midjourney prompt string:
// weighted fragments joined with ", ", followed by "key value" parameters.
func BuildMidjourney(p Project) string {
	var parts []string

	if positive := fragmentsToString(p.Content.Positive, FormatMidjourney); positive != "" {
		parts = append(parts, positive)
	}
	if params := paramsToMidjourney(p.Content.Params); params != "" {
		parts = append(parts, params)
	}

	return strings.Join(parts, " ")
}

// BuildStableDiffusion renders the project as a Stable Diffusion prompt:
// positive line, optional "Negative prompt:" line and a parameter line,
// newline-separated.
func BuildStableDiffusion(p Project) string {
	var parts []string

	if positive := fragmentsToString(p.Content.Positive, FormatStableDiffusion); positive != "" {
		parts = append(parts, positive)
	}
	if negative := fragmentsToString(p.Content.Negative, FormatStableDiffusion); negative != "" {
		parts = append(parts, "Negative prompt: "+negative)
	}
	if params := paramsToStableDiffusion(p.Content.Params); params != "" {
		parts = append(parts, params)
	}

	return strings.Join(parts, "\n")
}

// BuildAll renders every supported target format. The version manager calls
// this once at snapshot creation and caches the result.
func BuildAll(p Project) FullString {
	return FullString{
		Midjourney:      BuildMidjourney(p),
		StableDiffusion: BuildStableDiffusion(p),
	}
}

// fragmentsToString joins rendered fragments with ", ". Weights are printed
// with one decimal place: Midjourney uses (text::w), Stable Diffusion (text:w).
func fragmentsToString(fragments []Fragment, format string) string {
	if len(fragments) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if math.Abs(f.Weight-1.0) < weightEpsilon {
			rendered = append(rendered, f.Text)
			continue
		}
		if format == FormatMidjourney {
			rendered = append(rendered, fmt.Sprintf("(%s::%.1f)", f.Text, f.Weight))
		} else {
			rendered = append(rendered, fmt.Sprintf("(%s:%.1f)", f.Text, f.Weight))
		}
	}
	return strings.Join(rendered, ", ")
}

func paramsToMidjourney(params []Parameter) string {
	if len(params) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(params))
	for _, p := range params {
		rendered = append(rendered, p.Key+" "+p.Value)
	}
	return strings.Join(rendered, " ")
}

// paramsToStableDiffusion renders the generation-settings line in the form
// used by SD image metadata: "Steps: 20, Sampler: DPM++ 2M".
func paramsToStableDiffusion(params []Parameter) string {
	if len(params) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(params))
	for _, p := range params {
		rendered = append(rendered, p.Label+": "+p.Value)
	}
	return strings.Join(rendered, ", ")
}
