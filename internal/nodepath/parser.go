package nodepath

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads the text form of a path.
func Parse(raw string) (*Address, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	addr := &Address{}
	i := 0
	for {
		name, next, err := readName(raw, i)
		if err != nil {
			return nil, err
		}
		i = next
		if name == "" {
			return nil, fmt.Errorf("path %q contains an empty segment at offset %d", raw, i)
		}

		seg := NewPathSegment(name)
		first := true
		for i < len(raw) && raw[i] == '[' {
			index, next, err := readIndex(raw, i)
			if err != nil {
				return nil, err
			}
			i = next
			if first {
				seg.Index = index
				addr.Path = append(addr.Path, seg)
				first = false
				continue
			}
			addr.Path = append(addr.Path, NewPathSegmentWithIndex("", index))
		}
		if first {
			addr.Path = append(addr.Path, seg)
		}

		if i == len(raw) {
			return addr, nil
		}
		if raw[i] != '.' {
			return nil, fmt.Errorf("path %q: unexpected %q at offset %d", raw, raw[i], i)
		}
		i++
	}
}

// readName reads a quoted or bare segment name starting at i.
func readName(raw string, i int) (string, int, error) {
	if i < len(raw) && raw[i] == '"' {
		var sb strings.Builder
		for j := i + 1; j < len(raw); j++ {
			switch raw[j] {
			case '\\':
				if j+1 < len(raw) {
					j++
					sb.WriteByte(raw[j])
				}
			case '"':
				return sb.String(), j + 1, nil
			default:
				sb.WriteByte(raw[j])
			}
		}
		return "", 0, fmt.Errorf("path %q: unterminated quoted segment", raw)
	}

	angles := 0
	j := i
	for ; j < len(raw); j++ {
		c := raw[j]
		switch {
		case c == '<':
			angles++
		case c == '>' && angles > 0:
			angles--
		case angles == 0 && (c == '.' || c == '['):
			return strings.TrimSpace(raw[i:j]), j, nil
		case c == ']' || c == '"':
			return "", 0, fmt.Errorf("path %q: unexpected %q at offset %d", raw, c, j)
		}
	}
	return strings.TrimSpace(raw[i:j]), j, nil
}

func readIndex(raw string, i int) (int, int, error) {
	end := strings.IndexByte(raw[i:], ']')
	if end < 0 {
		return 0, 0, fmt.Errorf("path %q: unclosed index at offset %d", raw, i)
	}
	digits := raw[i+1 : i+end]
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 {
		return 0, 0, fmt.Errorf("path %q: invalid index %q", raw, digits)
	}
	return index, i + end + 1, nil
}
