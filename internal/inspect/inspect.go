// Package inspect derives function declarations from Go source instead
// of runtime values. Loading packages through go/packages gives access
// to real parameter names, which reflection cannot provide, so the
// resulting declarations build signatures whose errors name the actual
// argument.
package inspect

import (
	"fmt"
	"go/types"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/funvibe/funjit/internal/native"
	"github.com/funvibe/funjit/internal/signature"
)

// Option configures Inspect.
type Option func(*options)

type options struct {
	dir     string
	env     []string
	verbose bool
}

// WithDir sets the working directory for package loading. Defaults to
// the current directory.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithEnv appends environment variables for the go toolchain invoked
// by the package loader.
func WithEnv(env ...string) Option {
	return func(o *options) { o.env = append(o.env, env...) }
}

// WithVerbose makes Inspect log progress to stderr.
func WithVerbose(v bool) Option {
	return func(o *options) { o.verbose = v }
}

// Function is one exported package-level function with its derived
// declaration.
type Function struct {
	// Package is the import path of the defining package.
	Package string

	// Name is the function name.
	Name string

	// Decl carries the parameter names and annotations derived from
	// the go/types signature.
	Decl *signature.Decl
}

// Skip is a function that could not be translated, with the reason.
type Skip struct {
	Package string
	Name    string
	Reason  string
}

// Report holds everything Inspect found, in deterministic order.
type Report struct {
	Functions []Function
	Skipped   []Skip
}

// Resolved pairs an inspected function with its built signature, or
// with the error the builder produced for it.
type Resolved struct {
	Function
	Sig native.Signature
	Err error
}

// Inspect loads the packages matched by the patterns and derives a
// declaration for every exported package-level function. Functions
// whose types have no annotation equivalent are reported as skipped,
// not dropped.
func Inspect(patterns []string, opts ...Option) (*Report, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedImports |
			packages.NeedDeps,
		Dir: o.dir,
		Env: append(append(os.Environ(), "GOWORK=off"), o.env...),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}

	report := &Report{}
	for _, pkg := range pkgs {
		if o.verbose {
			fmt.Fprintf(os.Stderr, "[inspect] package %s\n", pkg.PkgPath)
		}
		scanPackage(pkg, report, o.verbose)
	}
	return report, nil
}

// scanPackage walks a package scope and appends every exported
// function to the report.
func scanPackage(pkg *packages.Package, report *Report, verbose bool) {
	scope := pkg.Types.Scope()
	names := scope.Names()
	sort.Strings(names)

	for _, name := range names {
		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}
		fn, ok := obj.(*types.Func)
		if !ok {
			continue
		}
		sig, ok := fn.Type().(*types.Signature)
		if !ok || sig.Recv() != nil {
			continue
		}

		decl, err := declFromFunc(name, sig)
		if err != nil {
			report.Skipped = append(report.Skipped, Skip{
				Package: pkg.PkgPath,
				Name:    name,
				Reason:  err.Error(),
			})
			if verbose {
				fmt.Fprintf(os.Stderr, "[inspect] skip %s.%s: %v\n", pkg.PkgPath, name, err)
			}
			continue
		}
		report.Functions = append(report.Functions, Function{
			Package: pkg.PkgPath,
			Name:    name,
			Decl:    decl,
		})
		if verbose {
			fmt.Fprintf(os.Stderr, "[inspect] found %s.%s\n", pkg.PkgPath, name)
		}
	}
}

// declFromFunc translates a go/types signature into a declaration: a
// leading context.Context parameter is dropped, a trailing error result
// is stripped, several results form a tuple.
func declFromFunc(name string, sig *types.Signature) (*signature.Decl, error) {
	if sig.TypeParams().Len() > 0 {
		return nil, fmt.Errorf("generic function")
	}
	if sig.Variadic() {
		return nil, fmt.Errorf("variadic function")
	}

	params := sig.Params()
	start := 0
	if params.Len() > 0 && isContextType(params.At(0).Type()) {
		start = 1
	}

	ps := make([]signature.Param, 0, params.Len()-start)
	for i := start; i < params.Len(); i++ {
		p := params.At(i)
		pname := p.Name()
		if pname == "" || pname == "_" {
			pname = "arg" + strconv.Itoa(i-start)
		}
		annot, annotated, err := annotationFor(p.Type())
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pname, err)
		}
		if annotated {
			ps = append(ps, signature.NewParam(pname, annot))
		} else {
			ps = append(ps, signature.NewParamMissing(pname))
		}
	}

	results := sig.Results()
	n := results.Len()
	if n > 0 && isErrorType(results.At(n-1).Type()) {
		n--
	}
	switch n {
	case 0:
		return signature.NewDecl(name, ps, nil), nil
	case 1:
		annot, annotated, err := annotationFor(results.At(0).Type())
		if err != nil {
			return nil, fmt.Errorf("result: %w", err)
		}
		if !annotated {
			return signature.NewDeclNoReturn(name, ps), nil
		}
		return signature.NewDecl(name, ps, annot), nil
	default:
		tup := make(signature.Tuple, 0, n)
		for i := 0; i < n; i++ {
			annot, annotated, err := annotationFor(results.At(i).Type())
			if err != nil {
				return nil, fmt.Errorf("result %d: %w", i, err)
			}
			if !annotated {
				return signature.NewDeclNoReturn(name, ps), nil
			}
			tup = append(tup, annot)
		}
		return signature.NewDecl(name, ps, tup), nil
	}
}

// Build resolves every inspected declaration through the builder,
// collecting the per-function outcome instead of stopping at the first
// failure.
func (r *Report) Build(b *signature.Builder) []Resolved {
	out := make([]Resolved, 0, len(r.Functions))
	for _, f := range r.Functions {
		sig, err := b.Build(f.Decl)
		out = append(out, Resolved{Function: f, Sig: sig, Err: err})
	}
	return out
}
