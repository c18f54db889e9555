package template

import (
	"strings"

	"github.com/pkg/errors"
)

// FileLevel is the publishing level of a provisioned file. The zero value is
// Published, which is the level used whenever a caller does not specify one.
type FileLevel int

const (
	Published FileLevel = iota
	Draft
	Checkout
)

// String returns the manifest token for the level.
func (l FileLevel) String() string {
	switch l {
	case Draft:
		return "Draft"
	case Checkout:
		return "Checkout"
	default:
		return "Published"
	}
}

// ParseFileLevel parses a level token case-insensitively. An empty string
// yields Published.
func ParseFileLevel(s string) (FileLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "published":
		return Published, nil
	case "draft":
		return Draft, nil
	case "checkout":
		return Checkout, nil
	default:
		return Published, errors.Errorf("unknown file level: %s", s)
	}
}
