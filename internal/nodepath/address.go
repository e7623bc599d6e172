package nodepath

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 && segment.Name != "" {
			sb.WriteRune('.')
		}
		sb.WriteString(quoteName(segment.Name))
		if segment.HasIndex() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return reflect.DeepEqual(a.Path, other.Path)
}

// Child returns a new address with seg appended.
func (a *Address) Child(seg PathSegment) *Address {
	path := make([]PathSegment, 0, len(a.Path)+1)
	path = append(path, a.Path...)
	return &Address{Path: append(path, seg)}
}

func quoteName(name string) string {
	if name == "" || !needsQuotes(name) {
		return name
	}
	return strconv.Quote(name)
}

func needsQuotes(name string) bool {
	if strings.TrimSpace(name) != name || strings.ContainsAny(name, `"[]\`) {
		return true
	}
	angles := 0
	for _, c := range name {
		switch {
		case c == '<':
			angles++
		case c == '>' && angles > 0:
			angles--
		case c == '.' && angles == 0:
			return true
		}
	}
	return angles != 0
}
