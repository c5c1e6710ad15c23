package wasmbe

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrMalformed is returned when reading bytes that are not a module.
var ErrMalformed = errors.New("malformed module")

// Section is one raw section of an encoded module.
type Section struct {
	ID       byte
	Contents []byte
}

// ReadSections splits an encoded module into its sections, checking the
// preamble and that every section length fits the input.
func ReadSections(wasm []byte) ([]Section, error) {
	if len(wasm) < 8 || !bytes.Equal(wasm[:4], wasmMagic) || !bytes.Equal(wasm[4:8], wasmVersion) {
		return nil, fmt.Errorf("%w: bad preamble", ErrMalformed)
	}

	var sections []Section
	rest := wasm[8:]
	for len(rest) > 0 {
		id := rest[0]
		size, n, err := DecodeUnsigned(rest[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: section %d length: %w", ErrMalformed, id, err)
		}
		start := 1 + n
		if uint64(len(rest)-start) < size {
			return nil, fmt.Errorf("%w: section %d overruns input", ErrMalformed, id)
		}
		end := start + int(size)
		sections = append(sections, Section{ID: id, Contents: rest[start:end]})
		rest = rest[end:]
	}
	return sections, nil
}
