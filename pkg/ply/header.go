package ply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// readHeader parses the header up to and including the end_header line.
// The reader is left positioned on the first byte of the body.
func readHeader(r *bufio.Reader) (*Header, error) {
	magic, err := readHeaderLine(r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, ErrInvalidHeader) {
			return nil, ErrNotPLY
		}
		return nil, err
	}
	if magic != "ply" {
		return nil, ErrNotPLY
	}

	h := &Header{}
	formatSeen := false

	for lineNo := 2; ; lineNo++ {
		line, err := readHeaderLine(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: missing end_header", ErrInvalidHeader)
			}
			return nil, err
		}

		keyword, rest, _ := strings.Cut(line, " ")
		switch keyword {
		case "":
			continue
		case "format":
			fields := strings.Fields(rest)
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: line %d: malformed format line", ErrInvalidHeader, lineNo)
			}
			format, err := ParseFormat(fields[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if fields[1] != Version {
				return nil, fmt.Errorf("%w: line %d: unsupported version %s", ErrInvalidHeader, lineNo, fields[1])
			}
			h.Format = format
			h.Version = fields[1]
			formatSeen = true
		case "comment":
			h.Comments = append(h.Comments, rest)
		case "obj_info":
			h.ObjInfo = append(h.ObjInfo, rest)
		case "element":
			fields := strings.Fields(rest)
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: line %d: malformed element line", ErrInvalidHeader, lineNo)
			}
			count, err := strconv.Atoi(fields[1])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: line %d: invalid element count %q", ErrInvalidHeader, lineNo, fields[1])
			}
			h.Elements = append(h.Elements, Element{Name: fields[0], Count: count})
		case "property":
			if len(h.Elements) == 0 {
				return nil, fmt.Errorf("%w: line %d: property before any element", ErrInvalidHeader, lineNo)
			}
			prop, err := parseProperty(strings.Fields(rest))
			if err != nil {
				if !errors.Is(err, ErrInvalidHeader) {
					err = fmt.Errorf("%w: %w", ErrInvalidHeader, err)
				}
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			el := &h.Elements[len(h.Elements)-1]
			if el.Property(prop.Name) != nil {
				return nil, fmt.Errorf("%w: line %d: duplicate property %q in element %q", ErrInvalidHeader, lineNo, prop.Name, el.Name)
			}
			el.Properties = append(el.Properties, prop)
		case "end_header":
			if !formatSeen {
				return nil, fmt.Errorf("%w: missing format line", ErrInvalidHeader)
			}
			return h, nil
		default:
			return nil, fmt.Errorf("%w: line %d: unknown keyword %q", ErrInvalidHeader, lineNo, keyword)
		}
	}
}

// readHeaderLine reads one header line, tolerating CRLF line endings.
func readHeaderLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return "", fmt.Errorf("%w: unterminated header line", ErrInvalidHeader)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func parseProperty(fields []string) (Property, error) {
	if len(fields) == 0 {
		return Property{}, fmt.Errorf("%w: empty property line", ErrInvalidHeader)
	}

	if fields[0] == "list" {
		if len(fields) != 4 {
			return Property{}, fmt.Errorf("%w: malformed list property", ErrInvalidHeader)
		}
		lengthType, err := ParseType(fields[1])
		if err != nil {
			return Property{}, err
		}
		if lengthType.IsFloat() {
			return Property{}, fmt.Errorf("%w: list length type %s", ErrUnsupportedType, lengthType)
		}
		valueType, err := ParseType(fields[2])
		if err != nil {
			return Property{}, err
		}
		return Property{Name: fields[3], IsList: true, LengthType: lengthType, ValueType: valueType}, nil
	}

	if len(fields) != 2 {
		return Property{}, fmt.Errorf("%w: malformed property", ErrInvalidHeader)
	}
	t, err := ParseType(fields[0])
	if err != nil {
		return Property{}, err
	}
	return Property{Name: fields[1], Type: t}, nil
}

// writeHeader renders the header text, ending with the end_header line.
func writeHeader(w io.Writer, h *Header) error {
	var b strings.Builder
	b.WriteString("ply\n")
	fmt.Fprintf(&b, "format %s %s\n", h.Format, Version)
	for _, c := range h.Comments {
		fmt.Fprintf(&b, "comment %s\n", c)
	}
	for _, info := range h.ObjInfo {
		fmt.Fprintf(&b, "obj_info %s\n", info)
	}
	for _, el := range h.Elements {
		fmt.Fprintf(&b, "element %s %d\n", el.Name, el.Count)
		for _, p := range el.Properties {
			b.WriteString(p.String())
			b.WriteByte('\n')
		}
	}
	b.WriteString("end_header\n")

	_, err := io.WriteString(w, b.String())
	return err
}
