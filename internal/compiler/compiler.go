// Package compiler drives a checked program through lowering and encoding.
package compiler

import (
	"fmt"
	"log/slog"

	"github.com/lhaig/wabbit/internal/ast"
	"github.com/lhaig/wabbit/internal/checker"
	"github.com/lhaig/wabbit/internal/config"
	"github.com/lhaig/wabbit/internal/diagnostic"
	"github.com/lhaig/wabbit/internal/ir"
	"github.com/lhaig/wabbit/internal/types"
	"github.com/lhaig/wabbit/internal/wasmbe"
)

// Options controls a compilation.
type Options struct {
	Lower       ir.Options
	MemoryPages uint32
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// NewOptions maps loaded configuration onto compiler options.
func NewOptions(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		Lower: ir.Options{
			EntryName:    cfg.EntryName,
			ImportModule: cfg.ImportModule,
			ExportAll:    cfg.ExportAll,
		},
		MemoryPages: cfg.MemoryPages,
		Logger:      logger,
	}
}

// Result holds the output of a compilation. Module and Wasm are nil when
// checking found errors.
type Result struct {
	Diagnostics *diagnostic.Diagnostics
	Module      *ir.Module
	Wasm        []byte
}

// Compile runs the full pipeline: check -> lower -> encode. Semantic errors
// are reported in the result's diagnostics, not as an error; the returned
// error means lowering or encoding failed on a program that checked cleanly.
func Compile(reg *types.Registry, prog *ast.Block, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx := checker.CheckProgram(reg, prog)
	res := &Result{Diagnostics: ctx.Diagnostics}
	logger.Debug("checked program",
		"statements", len(prog.Statements),
		"diagnostics", ctx.Diagnostics.Count(),
		"errors", ctx.Diagnostics.ErrorCount())
	if ctx.HasErrors() {
		return res, nil
	}

	mod, err := ir.Lower(ctx, prog, opts.Lower)
	if err != nil {
		return res, fmt.Errorf("lower: %w", err)
	}
	res.Module = mod
	logger.Debug("lowered program",
		"imports", len(mod.Imports),
		"functions", len(mod.Functions),
		"globals", len(mod.Globals))

	wasm, err := wasmbe.Generate(mod, wasmbe.Config{
		MemoryPages: opts.MemoryPages,
		Logger:      logger,
	})
	if err != nil {
		return res, fmt.Errorf("generate: %w", err)
	}
	res.Wasm = wasm
	logger.Debug("encoded module", "bytes", len(wasm))
	return res, nil
}

// Check runs the checker only.
func Check(reg *types.Registry, prog *ast.Block) *diagnostic.Diagnostics {
	return checker.CheckProgram(reg, prog).Diagnostics
}
