// Package protosig derives native signatures from protobuf service
// definitions. Request message fields become parameter types and the
// response message becomes the return type, so a proto file can seed a
// manager registry without any hand-written declarations.
package protosig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/funvibe/funjit/internal/jit"
	"github.com/funvibe/funjit/internal/native"
)

// Option configures TranslateFile.
type Option func(*options)

type options struct {
	importPaths []string
	verbose     bool
}

// WithImportPaths sets the proto import search paths. Defaults to the
// directory of the translated file.
func WithImportPaths(paths ...string) Option {
	return func(o *options) { o.importPaths = append(o.importPaths, paths...) }
}

// WithVerbose makes the translator log progress to stderr.
func WithVerbose(v bool) Option {
	return func(o *options) { o.verbose = v }
}

// MethodSignature is one service method translated to a native
// signature.
type MethodSignature struct {
	// Service is the fully qualified service name (e.g. "calc.Calculator").
	Service string

	// Method is the bare method name.
	Method string

	// FullName is "package.Service/Method", the registry key used by
	// RegisterAll.
	FullName string

	Sig native.Signature
}

// Skip is a method that could not be translated, with the reason.
type Skip struct {
	Service string
	Method  string
	Reason  string
}

// FileSignatures holds the translated methods of one proto file.
type FileSignatures struct {
	File    string
	Methods []MethodSignature
	Skipped []Skip
}

// scalarTypes maps proto field types to native types. Enums travel as
// int32 on the wire and translate accordingly.
var scalarTypes = map[descriptorpb.FieldDescriptorProto_Type]native.Type{
	descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:   native.Float64,
	descriptorpb.FieldDescriptorProto_TYPE_FLOAT:    native.Float32,
	descriptorpb.FieldDescriptorProto_TYPE_INT64:    native.Int64,
	descriptorpb.FieldDescriptorProto_TYPE_SINT64:   native.Int64,
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED64: native.Int64,
	descriptorpb.FieldDescriptorProto_TYPE_INT32:    native.Int32,
	descriptorpb.FieldDescriptorProto_TYPE_SINT32:   native.Int32,
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED32: native.Int32,
	descriptorpb.FieldDescriptorProto_TYPE_UINT64:   native.Uint64,
	descriptorpb.FieldDescriptorProto_TYPE_FIXED64:  native.Uint64,
	descriptorpb.FieldDescriptorProto_TYPE_UINT32:   native.Uint32,
	descriptorpb.FieldDescriptorProto_TYPE_FIXED32:  native.Uint32,
	descriptorpb.FieldDescriptorProto_TYPE_BOOL:     native.Boolean,
	descriptorpb.FieldDescriptorProto_TYPE_STRING:   native.String,
	descriptorpb.FieldDescriptorProto_TYPE_BYTES:    native.ArrayOf(native.Uint8),
	descriptorpb.FieldDescriptorProto_TYPE_ENUM:     native.Int32,
}

// TranslateFile parses a proto file and translates every unary service
// method. Methods that cannot be translated are reported as skipped,
// not dropped.
func TranslateFile(path string, opts ...Option) (*FileSignatures, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	importPaths := o.importPaths
	if len(importPaths) == 0 {
		importPaths = []string{filepath.Dir(path)}
	}

	resolved, err := protoparse.ResolveFilenames(importPaths, path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	parser := protoparse.Parser{ImportPaths: importPaths}
	fds, err := parser.ParseFiles(resolved...)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	fs := &FileSignatures{File: path}
	for _, fd := range fds {
		for _, sd := range fd.GetServices() {
			translateService(sd, fs, o.verbose)
		}
	}
	return fs, nil
}

func translateService(sd *desc.ServiceDescriptor, fs *FileSignatures, verbose bool) {
	service := sd.GetFullyQualifiedName()
	for _, md := range sd.GetMethods() {
		full := service + "/" + md.GetName()

		if md.IsClientStreaming() || md.IsServerStreaming() {
			fs.Skipped = append(fs.Skipped, Skip{
				Service: service,
				Method:  md.GetName(),
				Reason:  "streaming method",
			})
			if verbose {
				fmt.Fprintf(os.Stderr, "[protosig] skip %s: streaming method\n", full)
			}
			continue
		}

		sig, err := methodSignature(md)
		if err != nil {
			fs.Skipped = append(fs.Skipped, Skip{
				Service: service,
				Method:  md.GetName(),
				Reason:  err.Error(),
			})
			if verbose {
				fmt.Fprintf(os.Stderr, "[protosig] skip %s: %v\n", full, err)
			}
			continue
		}

		fs.Methods = append(fs.Methods, MethodSignature{
			Service:  service,
			Method:   md.GetName(),
			FullName: full,
			Sig:      sig,
		})
		if verbose {
			fmt.Fprintf(os.Stderr, "[protosig] %s: %s\n", full, sig)
		}
	}
}

// methodSignature translates one unary method: request fields in
// declaration order become parameters, the response message becomes the
// return type (no fields is void, one field is that field's type,
// several form a tuple).
func methodSignature(md *desc.MethodDescriptor) (native.Signature, error) {
	in := md.GetInputType()
	infields := in.GetFields()
	params := make([]native.Type, 0, len(infields))
	for _, fd := range infields {
		t, err := fieldType(fd, 0)
		if err != nil {
			return native.Signature{}, fmt.Errorf("request %s: %w", in.GetName(), err)
		}
		params = append(params, t)
	}

	out := md.GetOutputType()
	ofields := out.GetFields()
	var ret native.Type
	switch len(ofields) {
	case 0:
		ret = native.Void
	case 1:
		t, err := fieldType(ofields[0], 0)
		if err != nil {
			return native.Signature{}, fmt.Errorf("response %s: %w", out.GetName(), err)
		}
		ret = t
	default:
		elems := make([]native.Type, 0, len(ofields))
		for _, fd := range ofields {
			t, err := fieldType(fd, 0)
			if err != nil {
				return native.Signature{}, fmt.Errorf("response %s: %w", out.GetName(), err)
			}
			elems = append(elems, t)
		}
		ret = native.TupleOf(elems...)
	}

	return native.NewSignature(ret, params...), nil
}

// fieldType translates one field. Message fields become tuples of their
// own fields, one level deep only.
func fieldType(fd *desc.FieldDescriptor, depth int) (native.Type, error) {
	if fd.IsMap() {
		return nil, fmt.Errorf("field %s: map fields are not translatable", fd.GetName())
	}

	var base native.Type
	if fd.GetType() == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE {
		if depth > 0 {
			return nil, fmt.Errorf("field %s: message nesting deeper than one level", fd.GetName())
		}
		tup, err := messageTuple(fd.GetMessageType(), depth+1)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.GetName(), err)
		}
		base = tup
	} else {
		t, ok := scalarTypes[fd.GetType()]
		if !ok {
			return nil, fmt.Errorf("field %s: unsupported field type %s", fd.GetName(), fd.GetType())
		}
		base = t
	}

	if fd.IsRepeated() {
		return native.ArrayOf(base), nil
	}
	return base, nil
}

func messageTuple(md *desc.MessageDescriptor, depth int) (native.Type, error) {
	fields := md.GetFields()
	elems := make([]native.Type, 0, len(fields))
	for _, fd := range fields {
		t, err := fieldType(fd, depth)
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
	}
	return native.TupleOf(elems...), nil
}

// RegisterAll stores every translated method signature in the manager
// registry under its full method name.
func RegisterAll(m *jit.Manager, fs *FileSignatures, opts ...jit.RegisterOption) error {
	for _, ms := range fs.Methods {
		if err := m.RegisterSignature(ms.FullName, ms.Sig, opts...); err != nil {
			return fmt.Errorf("registering %s: %w", ms.FullName, err)
		}
	}
	return nil
}
