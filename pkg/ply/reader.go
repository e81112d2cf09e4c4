package ply

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// ReadCallback receives one value read from the body. Returning an error
// aborts Read.
type ReadCallback func(arg *Argument) error

// ElementEndCallback is called after every property of an element instance
// has been read.
type ElementEndCallback func(element string, instance int) error

// Argument describes the value being delivered to a ReadCallback.
type Argument struct {
	element  *Element
	instance int
	property *Property
	length   int
	index    int
	value    float64
	userData any
	tag      int
}

// Value returns the value as read from the file.
func (a *Argument) Value() float64 {
	return a.value
}

// Element returns the element name and the instance index within it.
func (a *Argument) Element() (name string, instance int) {
	return a.element.Name, a.instance
}

// Property returns the property name, the number of values it holds in the
// current instance, and the index of the current value.
//
// For lists the length itself is delivered first with index -1, followed by
// the items with index 0 to length-1. Scalars have length 1 and index 0.
func (a *Argument) Property() (name string, length, index int) {
	return a.property.Name, a.length, a.index
}

// UserData returns the data and tag given to SetReadCallback.
func (a *Argument) UserData() (any, int) {
	return a.userData, a.tag
}

type propertyKey struct {
	element  string
	property string
}

type readCallback struct {
	fn       ReadCallback
	userData any
	tag      int
}

// Reader streams the body of a PLY file to registered callbacks.
type Reader struct {
	r      *bufio.Reader
	closer io.Closer
	header *Header
	order  binary.ByteOrder
	buf    [8]byte

	callbacks  map[propertyKey]readCallback
	elementEnd map[string]ElementEndCallback
}

// Open opens a PLY file for reading. The header is not read yet.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	r := NewReader(file)
	r.closer = file
	return r, nil
}

// NewReader returns a Reader consuming r. Close does not close r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:          bufio.NewReader(r),
		callbacks:  make(map[propertyKey]readCallback),
		elementEnd: make(map[string]ElementEndCallback),
	}
}

// ReadHeader parses the header.
func (r *Reader) ReadHeader() error {
	h, err := readHeader(r.r)
	if err != nil {
		return err
	}
	r.header = h

	switch h.Format {
	case FormatBinaryBigEndian:
		r.order = binary.BigEndian
	case FormatBinaryLittleEndian:
		r.order = binary.LittleEndian
	}
	return nil
}

// Header returns the parsed header, or nil before ReadHeader succeeded.
func (r *Reader) Header() *Header {
	return r.header
}

// SetReadCallback registers fn for every value of the given property.
// userData and tag are handed back through Argument.UserData.
// It returns the number of element instances in the file, or 0 when the
// element or property does not exist, in which case nothing is registered.
func (r *Reader) SetReadCallback(element, property string, fn ReadCallback, userData any, tag int) int {
	if r.header == nil {
		return 0
	}
	el := r.header.Element(element)
	if el == nil || el.Property(property) == nil {
		return 0
	}
	r.callbacks[propertyKey{element, property}] = readCallback{fn: fn, userData: userData, tag: tag}
	return el.Count
}

// SetElementEndCallback registers fn to run after each instance of element.
// It returns the number of instances, or 0 when the element does not exist.
func (r *Reader) SetElementEndCallback(element string, fn ElementEndCallback) int {
	if r.header == nil {
		return 0
	}
	el := r.header.Element(element)
	if el == nil {
		return 0
	}
	r.elementEnd[element] = fn
	return el.Count
}

// Read reads the whole body, invoking callbacks in file order.
func (r *Reader) Read() error {
	if r.header == nil {
		return ErrHeaderNotRead
	}

	for ei := range r.header.Elements {
		el := &r.header.Elements[ei]
		end := r.elementEnd[el.Name]

		for i := 0; i < el.Count; i++ {
			for pi := range el.Properties {
				p := &el.Properties[pi]
				arg := Argument{element: el, instance: i, property: p}
				cb := r.callbacks[propertyKey{el.Name, p.Name}]
				arg.userData, arg.tag = cb.userData, cb.tag

				if err := r.readProperty(&arg, cb.fn); err != nil {
					return fmt.Errorf("element %s[%d] property %s: %w", el.Name, i, p.Name, err)
				}
			}
			if end != nil {
				if err := end(el.Name, i); err != nil {
					return fmt.Errorf("element %s[%d]: %w", el.Name, i, err)
				}
			}
		}
	}
	return nil
}

// Close releases the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

func (r *Reader) readProperty(arg *Argument, fn ReadCallback) error {
	p := arg.property
	if !p.IsList {
		v, err := r.readValue(p.Type)
		if err != nil {
			return err
		}
		arg.length, arg.index, arg.value = 1, 0, v
		return call(fn, arg)
	}

	n, err := r.readValue(p.LengthType)
	if err != nil {
		return err
	}
	if err := p.LengthType.checkRange(n); err != nil {
		return fmt.Errorf("%w: list length: %w", ErrInvalidValue, err)
	}
	length := int(n)
	if n < 0 || float64(length) != n {
		return fmt.Errorf("%w: list length %v", ErrInvalidValue, n)
	}
	arg.length, arg.index, arg.value = length, -1, n
	if err := call(fn, arg); err != nil {
		return err
	}

	for j := 0; j < length; j++ {
		v, err := r.readValue(p.ValueType)
		if err != nil {
			return err
		}
		arg.index, arg.value = j, v
		if err := call(fn, arg); err != nil {
			return err
		}
	}
	return nil
}

func call(fn ReadCallback, arg *Argument) error {
	if fn == nil {
		return nil
	}
	return fn(arg)
}

func (r *Reader) readValue(t Type) (float64, error) {
	if r.header.Format == FormatASCII {
		return r.readASCIIValue(t)
	}

	b := r.buf[:t.Size()]
	if _, err := io.ReadFull(r.r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, ErrTruncatedData
		}
		return 0, err
	}

	switch t {
	case Int8:
		return float64(int8(b[0])), nil
	case Uint8:
		return float64(b[0]), nil
	case Int16:
		return float64(int16(r.order.Uint16(b))), nil
	case Uint16:
		return float64(r.order.Uint16(b)), nil
	case Int32:
		return float64(int32(r.order.Uint32(b))), nil
	case Uint32:
		return float64(r.order.Uint32(b)), nil
	case Float32:
		return float64(math.Float32frombits(r.order.Uint32(b))), nil
	case Float64:
		return math.Float64frombits(r.order.Uint64(b)), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// readASCIIValue reads the next whitespace separated token and checks it
// against t. strconv is locale independent, so '.' is always the decimal
// separator.
func (r *Reader) readASCIIValue(t Type) (float64, error) {
	var token []byte
	for {
		c, err := r.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(token) == 0 {
					return 0, ErrTruncatedData
				}
				break
			}
			return 0, err
		}
		if isSpace(c) {
			if len(token) == 0 {
				continue
			}
			break
		}
		token = append(token, c)
	}

	v, err := strconv.ParseFloat(string(token), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValue, token)
	}
	if !t.IsFloat() && v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, token)
	}
	if err := t.checkRange(v); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return v, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
