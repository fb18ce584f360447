package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// TargetType is what the workflow shows on completion.
type TargetType string

const (
	TargetRedirect TargetType = "redirect"
	TargetModal    TargetType = "modal"
	TargetDownload TargetType = "download"
)

// Targets lists the target types in selector order.
var Targets = []TargetType{TargetRedirect, TargetModal, TargetDownload}

var ErrUnknownTarget = errors.New("unknown confirmation target")

// maxSuggestDistance is the largest edit distance still offered as a
// "did you mean" hint.
const maxSuggestDistance = 3

func ParseTargetType(s string) (TargetType, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	for _, t := range Targets {
		if string(t) == in {
			return t, nil
		}
	}
	if hint, ok := suggestTarget(in); ok {
		return "", fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownTarget, s, hint)
	}
	return "", fmt.Errorf("%w %q", ErrUnknownTarget, s)
}

func suggestTarget(in string) (TargetType, bool) {
	if in == "" {
		return "", false
	}
	var best TargetType
	bestDist := maxSuggestDistance + 1
	for _, t := range Targets {
		if d := levenshtein.ComputeDistance(in, string(t)); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best, bestDist <= maxSuggestDistance
}

func (t TargetType) Valid() bool {
	switch t {
	case TargetRedirect, TargetModal, TargetDownload:
		return true
	}
	return false
}

// Next cycles through Targets.
func (t TargetType) Next() TargetType {
	for i, c := range Targets {
		if c == t {
			return Targets[(i+1)%len(Targets)]
		}
	}
	return TargetRedirect
}

type InputKind string

const (
	InputText InputKind = "text"
	InputFile InputKind = "file"
)

// Presentation describes how the default and alternate inputs render for a
// target type. It has no effect on validation.
type Presentation struct {
	InputKind      InputKind
	Accept         string
	Placeholder    string
	DefaultLabel   string
	AlternateLabel string
}

var presentations = map[TargetType]Presentation{
	TargetRedirect: {
		InputKind:      InputText,
		Placeholder:    "https://",
		DefaultLabel:   "Choose default confirmation page *",
		AlternateLabel: "Alternate confirmation URL *",
	},
	TargetModal: {
		InputKind:      InputFile,
		Accept:         ".html",
		Placeholder:    "Select .html file...",
		DefaultLabel:   "Choose default modal content *",
		AlternateLabel: "Alternate modal content *",
	},
	TargetDownload: {
		InputKind:      InputFile,
		Accept:         ".zip",
		Placeholder:    "Select .zip file...",
		DefaultLabel:   "Choose default download file *",
		AlternateLabel: "Alternate download file *",
	},
}

func (t TargetType) Presentation() Presentation {
	if p, ok := presentations[t]; ok {
		return p
	}
	return presentations[TargetRedirect]
}
