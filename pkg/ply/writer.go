package ply

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"go.uber.org/multierr"
)

// Writer writes a PLY file value by value, following the declared schema.
type Writer struct {
	w       *bufio.Writer
	closer  io.Closer
	header  Header
	order   binary.ByteOrder
	started bool
	buf     [8]byte

	// Position of the next value within the schema.
	element   int
	instance  int
	property  int
	listLeft  int // -1 while the list length is expected
	lineStart bool
}

// Create creates or truncates the file at path and returns a Writer for it.
func Create(path string, format Format) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	w := NewWriter(file, format)
	w.closer = file
	return w, nil
}

// NewWriter returns a Writer producing a file of the given format on w.
// Close flushes but does not close w.
func NewWriter(w io.Writer, format Format) *Writer {
	pw := &Writer{
		w:         bufio.NewWriter(w),
		header:    Header{Format: format, Version: Version},
		listLeft:  -1,
		lineStart: true,
	}
	switch format {
	case FormatBinaryBigEndian:
		pw.order = binary.BigEndian
	case FormatBinaryLittleEndian:
		pw.order = binary.LittleEndian
	}
	return pw
}

// AddElement declares a new element. Properties added afterwards belong to it.
func (w *Writer) AddElement(name string, count int) error {
	if w.started {
		return ErrHeaderWritten
	}
	if name == "" || count < 0 {
		return fmt.Errorf("%w: element %q count %d", ErrInvalidHeader, name, count)
	}
	w.header.Elements = append(w.header.Elements, Element{Name: name, Count: count})
	return nil
}

// AddScalarProperty declares a scalar property on the last added element.
func (w *Writer) AddScalarProperty(name string, t Type) error {
	if t.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return w.addProperty(Property{Name: name, Type: t})
}

// AddListProperty declares a list property on the last added element.
func (w *Writer) AddListProperty(name string, lengthType, valueType Type) error {
	if lengthType.Size() == 0 || lengthType.IsFloat() || valueType.Size() == 0 {
		return fmt.Errorf("%w: list %s %s", ErrUnsupportedType, lengthType, valueType)
	}
	return w.addProperty(Property{Name: name, IsList: true, LengthType: lengthType, ValueType: valueType})
}

func (w *Writer) addProperty(p Property) error {
	if w.started {
		return ErrHeaderWritten
	}
	if len(w.header.Elements) == 0 {
		return fmt.Errorf("%w: property %q before any element", ErrInvalidHeader, p.Name)
	}
	el := &w.header.Elements[len(w.header.Elements)-1]
	if el.Property(p.Name) != nil {
		return fmt.Errorf("%w: duplicate property %q in element %q", ErrInvalidHeader, p.Name, el.Name)
	}
	el.Properties = append(el.Properties, p)
	return nil
}

// AddComment adds a comment line to the header.
func (w *Writer) AddComment(comment string) error {
	if w.started {
		return ErrHeaderWritten
	}
	w.header.Comments = append(w.header.Comments, comment)
	return nil
}

// AddObjInfo adds an obj_info line to the header.
func (w *Writer) AddObjInfo(info string) error {
	if w.started {
		return ErrHeaderWritten
	}
	w.header.ObjInfo = append(w.header.ObjInfo, info)
	return nil
}

// Header returns the declared header.
func (w *Writer) Header() *Header {
	return &w.header
}

// WriteHeader writes the header. No declarations are accepted afterwards.
func (w *Writer) WriteHeader() error {
	if w.started {
		return ErrHeaderWritten
	}
	if err := writeHeader(w.w, &w.header); err != nil {
		return err
	}
	w.started = true
	w.skipEmpty()
	return nil
}

// Write writes the next value of the body. List properties take their
// length first, then that many items.
func (w *Writer) Write(v float64) error {
	if !w.started {
		return ErrNoHeader
	}
	if w.element >= len(w.header.Elements) {
		return ErrTooManyValues
	}

	p := &w.header.Elements[w.element].Properties[w.property]
	t := p.Type
	if p.IsList {
		t = p.ValueType
		if w.listLeft < 0 {
			t = p.LengthType
			if v < 0 || v != math.Trunc(v) {
				return fmt.Errorf("%w: list length %v for property %s", ErrInvalidValue, v, p.Name)
			}
		}
	}

	if err := w.writeValue(t, v); err != nil {
		el := &w.header.Elements[w.element]
		return fmt.Errorf("element %s[%d] property %s: %w", el.Name, w.instance, p.Name, err)
	}

	switch {
	case !p.IsList:
		w.nextProperty()
	case w.listLeft < 0:
		w.listLeft = int(v)
		if w.listLeft == 0 {
			w.nextProperty()
		}
	default:
		w.listLeft--
		if w.listLeft == 0 {
			w.nextProperty()
		}
	}
	return nil
}

// Close flushes buffered data and closes the file opened by Create. It
// reports ErrIncomplete when the header was written but the body is short.
func (w *Writer) Close() error {
	var err error
	if w.started && w.element < len(w.header.Elements) {
		err = multierr.Append(err, fmt.Errorf("%w: stopped at element %s[%d]",
			ErrIncomplete, w.header.Elements[w.element].Name, w.instance))
	}
	err = multierr.Append(err, w.w.Flush())
	if w.closer != nil {
		err = multierr.Append(err, w.closer.Close())
		w.closer = nil
	}
	return err
}

func (w *Writer) nextProperty() {
	w.listLeft = -1
	w.property++
	if w.property < len(w.header.Elements[w.element].Properties) {
		return
	}

	if w.header.Format == FormatASCII {
		w.w.WriteByte('\n')
		w.lineStart = true
	}
	w.property = 0
	w.instance++
	if w.instance == w.header.Elements[w.element].Count {
		w.instance = 0
		w.element++
		w.skipEmpty()
	}
}

// skipEmpty moves past elements that have no values to write.
func (w *Writer) skipEmpty() {
	for w.element < len(w.header.Elements) {
		el := &w.header.Elements[w.element]
		if el.Count > 0 && len(el.Properties) > 0 {
			return
		}
		w.element++
	}
}

func (w *Writer) writeValue(t Type, v float64) error {
	if err := t.checkRange(v); err != nil {
		return err
	}

	if w.header.Format == FormatASCII {
		if !w.lineStart {
			w.w.WriteByte(' ')
		}
		w.lineStart = false
		_, err := w.w.WriteString(formatASCII(t, v))
		return err
	}

	b := w.buf[:t.Size()]
	switch t {
	case Int8:
		b[0] = byte(int8(v))
	case Uint8:
		b[0] = uint8(v)
	case Int16:
		w.order.PutUint16(b, uint16(int16(v)))
	case Uint16:
		w.order.PutUint16(b, uint16(v))
	case Int32:
		w.order.PutUint32(b, uint32(int32(v)))
	case Uint32:
		w.order.PutUint32(b, uint32(v))
	case Float32:
		w.order.PutUint32(b, math.Float32bits(float32(v)))
	case Float64:
		w.order.PutUint64(b, math.Float64bits(v))
	}
	_, err := w.w.Write(b)
	return err
}

// formatASCII renders v with '.' as decimal separator regardless of locale.
func formatASCII(t Type, v float64) string {
	switch t {
	case Float32:
		return strconv.FormatFloat(v, 'g', -1, 32)
	case Float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case Uint32:
		return strconv.FormatUint(uint64(v), 10)
	default:
		return strconv.FormatInt(int64(v), 10)
	}
}
