// Package ply implements a streaming reader and writer for PLY (Polygon File
// Format) files.
//
// Reading is callback driven: after the header is parsed, callers register a
// callback per (element, property) pair and Read delivers every value in file
// order. Writing mirrors this: elements and properties are declared, the
// header is written, and values are then written one at a time in the same
// order the header describes.
package ply

import (
	"errors"
	"fmt"
)

// PLY errors.
var (
	ErrInvalidHeader   = errors.New("invalid PLY header")
	ErrNotPLY          = fmt.Errorf("%w: missing 'ply' magic", ErrInvalidHeader)
	ErrUnsupportedType = errors.New("unsupported PLY property type")
	ErrTruncatedData   = errors.New("truncated PLY data")
	ErrInvalidValue    = errors.New("invalid PLY value")
	ErrValueRange      = errors.New("value out of range for PLY type")
	ErrHeaderNotRead   = errors.New("PLY header not read")
	ErrHeaderWritten   = errors.New("PLY header already written")
	ErrNoHeader        = errors.New("PLY header not written")
	ErrTooManyValues   = errors.New("more values than declared by PLY header")
	ErrIncomplete      = errors.New("fewer values than declared by PLY header")
)

// Version is the only PLY version in use.
const Version = "1.0"

// Format is the storage format of the PLY body.
type Format int

// Storage formats.
const (
	FormatASCII Format = iota
	FormatBinaryLittleEndian
	FormatBinaryBigEndian
)

// String returns the name used on the header's format line.
func (f Format) String() string {
	switch f {
	case FormatASCII:
		return "ascii"
	case FormatBinaryLittleEndian:
		return "binary_little_endian"
	case FormatBinaryBigEndian:
		return "binary_big_endian"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// ParseFormat parses a header format name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "ascii":
		return FormatASCII, nil
	case "binary_little_endian":
		return FormatBinaryLittleEndian, nil
	case "binary_big_endian":
		return FormatBinaryBigEndian, nil
	default:
		return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidHeader, s)
	}
}

// Type is a scalar PLY data type.
type Type int

// Scalar types.
const (
	TypeInvalid Type = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

// Size returns the encoded size in bytes.
func (t Type) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// String returns the classic PLY name of the type, as written in headers.
func (t Type) String() string {
	switch t {
	case Int8:
		return "char"
	case Uint8:
		return "uchar"
	case Int16:
		return "short"
	case Uint16:
		return "ushort"
	case Int32:
		return "int"
	case Uint32:
		return "uint"
	case Float32:
		return "float"
	case Float64:
		return "double"
	default:
		return fmt.Sprintf("invalid(%d)", int(t))
	}
}

// IsFloat reports whether the type is a floating-point type.
func (t Type) IsFloat() bool {
	return t == Float32 || t == Float64
}

// ParseType parses both the classic and the sized type names.
func ParseType(s string) (Type, error) {
	switch s {
	case "char", "int8":
		return Int8, nil
	case "uchar", "uint8":
		return Uint8, nil
	case "short", "int16":
		return Int16, nil
	case "ushort", "uint16":
		return Uint16, nil
	case "int", "int32":
		return Int32, nil
	case "uint", "uint32":
		return Uint32, nil
	case "float", "float32":
		return Float32, nil
	case "double", "float64":
		return Float64, nil
	default:
		return TypeInvalid, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
	}
}

// checkRange verifies that v can be stored in t without loss of its integer part.
func (t Type) checkRange(v float64) error {
	var lo, hi float64
	switch t {
	case Int8:
		lo, hi = -1<<7, 1<<7-1
	case Uint8:
		lo, hi = 0, 1<<8-1
	case Int16:
		lo, hi = -1<<15, 1<<15-1
	case Uint16:
		lo, hi = 0, 1<<16-1
	case Int32:
		lo, hi = -1<<31, 1<<31-1
	case Uint32:
		lo, hi = 0, 1<<32-1
	case Float32, Float64:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	if v < lo || v > hi {
		return fmt.Errorf("%w: %v does not fit %s", ErrValueRange, v, t)
	}
	return nil
}

// Property describes one property of an element.
type Property struct {
	Name string
	// Type is the scalar type. Unused for lists.
	Type Type

	IsList     bool
	LengthType Type
	ValueType  Type
}

// String returns the property as a header line without the trailing newline.
func (p Property) String() string {
	if p.IsList {
		return fmt.Sprintf("property list %s %s %s", p.LengthType, p.ValueType, p.Name)
	}
	return fmt.Sprintf("property %s %s", p.Type, p.Name)
}

// Element describes a record type and how many instances the body holds.
type Element struct {
	Name       string
	Count      int
	Properties []Property
}

// Property returns the named property, or nil.
func (e *Element) Property(name string) *Property {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return &e.Properties[i]
		}
	}
	return nil
}

// Header is a parsed or declared PLY header.
type Header struct {
	Format   Format
	Version  string
	Elements []Element
	Comments []string
	ObjInfo  []string
}

// Element returns the named element, or nil.
func (h *Header) Element(name string) *Element {
	for i := range h.Elements {
		if h.Elements[i].Name == name {
			return &h.Elements[i]
		}
	}
	return nil
}
