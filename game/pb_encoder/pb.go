// Package pb encodes solve results in protobuf wire format.
//
// The layout matches this schema, hand encoded with protowire so no
// generated code is needed:
//
//	message Cell   { int32 row = 1; int32 col = 2; }
//	message Result { uint32 algorithm = 1; repeated Cell trace = 2; repeated Cell path = 3; }
package pb

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/maze-solver/game"
	"github.com/beka-birhanu/maze-solver/maze"
	"github.com/beka-birhanu/maze-solver/solver"
	"google.golang.org/protobuf/encoding/protowire"
)

// ContentType is the media type served for protobuf payloads.
const ContentType = "application/x-protobuf"

const (
	resultAlgorithmField protowire.Number = 1
	resultTraceField     protowire.Number = 2
	resultPathField      protowire.Number = 3

	cellRowField protowire.Number = 1
	cellColField protowire.Number = 2
)

var ErrMalformed = errors.New("malformed protobuf payload")

var _ game.Encoder = &Protobuf{}

type Protobuf struct{}

// ContentType implements game.Encoder.
func (p *Protobuf) ContentType() string {
	return ContentType
}

// MarshalResult implements game.Encoder.
func (p *Protobuf) MarshalResult(r *solver.Result) ([]byte, error) {
	if r == nil {
		return nil, errors.New("nil result")
	}

	b := protowire.AppendTag(nil, resultAlgorithmField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Algorithm))
	b = appendCells(b, resultTraceField, r.Trace)
	b = appendCells(b, resultPathField, r.Path)
	return b, nil
}

// UnmarshalResult implements game.Encoder.
func (p *Protobuf) UnmarshalResult(b []byte) (*solver.Result, error) {
	r := &solver.Result{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == resultAlgorithmField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			r.Algorithm = solver.Algorithm(v)
			b = b[n:]
		case (num == resultTraceField || num == resultPathField) && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			cell, err := consumeCell(raw)
			if err != nil {
				return nil, err
			}
			if num == resultTraceField {
				r.Trace = append(r.Trace, cell)
			} else {
				r.Path = append(r.Path, cell)
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return r, nil
}

// appendCells writes each cell as an embedded Cell message under field num.
func appendCells(b []byte, num protowire.Number, cells []maze.CellPosition) []byte {
	for _, c := range cells {
		var cell []byte
		cell = protowire.AppendTag(cell, cellRowField, protowire.VarintType)
		cell = protowire.AppendVarint(cell, uint64(c.Row))
		cell = protowire.AppendTag(cell, cellColField, protowire.VarintType)
		cell = protowire.AppendVarint(cell, uint64(c.Col))

		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, cell)
	}
	return b
}

func consumeCell(b []byte) (maze.CellPosition, error) {
	var c maze.CellPosition
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return c, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return c, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return c, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		switch num {
		case cellRowField:
			c.Row = int(v)
		case cellColField:
			c.Col = int(v)
		}
		b = b[n:]
	}
	return c, nil
}
