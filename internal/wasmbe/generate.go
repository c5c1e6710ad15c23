package wasmbe

import (
	"fmt"

	"github.com/lhaig/wabbit/internal/ir"
)

// Generate produces a WASM binary module from a lowered IR module. Imports
// are registered first, then globals, then functions in module order;
// functions marked Export are exported under their own name.
func Generate(mod *ir.Module, cfg Config) ([]byte, error) {
	enc := NewEncoder(cfg)

	for _, imp := range mod.Imports {
		if _, err := enc.AddImport(imp.Module, imp.Name, imp.Params, imp.Results); err != nil {
			return nil, err
		}
	}
	for _, g := range mod.Globals {
		if _, err := enc.AddGlobal(g.Name, g.Type); err != nil {
			return nil, err
		}
	}
	for _, fn := range mod.Functions {
		if _, err := enc.AddFunction(fn.Name, fn.Params, fn.Results, fn.Body); err != nil {
			return nil, err
		}
	}
	for _, fn := range mod.Functions {
		if !fn.Export {
			continue
		}
		if err := enc.Export(fn.Name, fn.Name); err != nil {
			return nil, err
		}
	}

	wasm, err := enc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode module: %w", err)
	}
	return wasm, nil
}
