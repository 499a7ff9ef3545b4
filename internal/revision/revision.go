// Package revision parses revision specifier strings into structured
// references.
package revision

import (
	"strconv"
	"strings"
	"time"

	"github.com/wcs-project/wcs/pkg/errclass"
)

// Kind classifies a revision reference.
type Kind int

const (
	// Unspecified means no revision was named; operations treat it as the
	// working revision.
	Unspecified Kind = iota
	Number
	Date
	Head
	Base
	Committed
	Previous
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Date:
		return "date"
	case Head:
		return "head"
	case Base:
		return "base"
	case Committed:
		return "committed"
	case Previous:
		return "previous"
	default:
		return "unspecified"
	}
}

// Ref is a parsed revision reference.
type Ref struct {
	Kind   Kind
	Number int64     // valid when Kind == Number
	Date   time.Time // valid when Kind == Date
	Raw    string    // the original specifier text
}

// IsWorking reports whether the reference names the working revision
// (nothing was specified).
func (r Ref) IsWorking() bool {
	return r.Kind == Unspecified
}

// Date specifiers are enclosed in braces: {2024-01-31} or {RFC3339}.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse parses a revision specifier. The empty string is the valid
// "unspecified" sentinel and never an error. Recognized forms: "HEAD",
// "BASE", "COMMITTED", "PREV" (case-insensitive), a non-negative decimal
// number, and a brace-enclosed date. Anything else fails with
// errclass.ErrInvalidRevision.
func Parse(spec string) (Ref, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return Ref{Kind: Unspecified, Raw: spec}, nil
	}

	switch strings.ToUpper(s) {
	case "HEAD":
		return Ref{Kind: Head, Raw: s}, nil
	case "BASE":
		return Ref{Kind: Base, Raw: s}, nil
	case "COMMITTED":
		return Ref{Kind: Committed, Raw: s}, nil
	case "PREV":
		return Ref{Kind: Previous, Raw: s}, nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return Ref{}, errclass.ErrInvalidRevision.WithMessagef("negative revision number: %s", s)
		}
		return Ref{Kind: Number, Number: n, Raw: s}, nil
	}

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		body := s[1 : len(s)-1]
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, body); err == nil {
				return Ref{Kind: Date, Date: ts, Raw: s}, nil
			}
		}
		return Ref{}, errclass.ErrInvalidRevision.WithMessagef("cannot parse revision date %q", body)
	}

	return Ref{}, errclass.ErrInvalidRevision.WithMessagef("cannot parse revision %q", spec)
}
