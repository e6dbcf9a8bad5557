package meta

import (
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/scenewire/scenewire/internal/wire"
)

// Registry derives and caches per-class field descriptor tables from
// registered Go component structs. Descriptors come from the struct shape;
// the optional `scene` tag overrides the exposed name and adds category,
// read-only and enum metadata:
//
//	Intensity float64    `scene:"category=Light"`
//	Bounds    float64    `scene:"readonly"`
//	Mobility  string     `scene:"enum=Static|Stationary|Movable"`
//	internal  float64    // unexported fields are never exposed
//	Skipped   float64    `scene:"-"`
//
// Registration is expected at startup; lookups after that are read-only and
// safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*classInfo
	byType map[reflect.Type]*classInfo
}

type classInfo struct {
	name   string
	typ    reflect.Type // struct type, not pointer
	fields []fieldInfo  // declaration order, embedded classes flattened in place
	lookup map[string]*fieldInfo
}

type fieldInfo struct {
	desc      FieldDescriptor
	goName    string
	inherited bool
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*classInfo),
		byType: make(map[reflect.Type]*classInfo),
	}
}

// Register derives the descriptor table for prototype's struct type and
// stores it under the given class name.
func (r *Registry) Register(name string, prototype any) error {
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return errors.Errorf("class %s: prototype must be a struct, got %T", name, prototype)
	}
	fields, err := deriveFields(t, false)
	if err != nil {
		return errors.Wrapf(err, "class %s", name)
	}
	info := &classInfo{name: name, typ: t, fields: fields, lookup: make(map[string]*fieldInfo, len(fields))}
	for i := range fields {
		info.lookup[strings.ToLower(fields[i].desc.Name)] = &info.fields[i]
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = info
	r.byType[t] = info
	return nil
}

// New instantiates a registered class, returning a pointer to a zero struct.
func (r *Registry) New(class string) (any, bool) {
	r.mu.RLock()
	info, ok := r.byName[class]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return reflect.New(info.typ).Interface(), true
}

func (r *Registry) ClassName(obj any) string {
	if info := r.classOf(obj); info != nil {
		return info.name
	}
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

func (r *Registry) ListFields(obj any, includeInherited bool) []FieldDescriptor {
	info := r.classOf(obj)
	if info == nil {
		return nil
	}
	out := make([]FieldDescriptor, 0, len(info.fields))
	for _, f := range info.fields {
		if f.inherited && !includeInherited {
			continue
		}
		out = append(out, f.desc)
	}
	return out
}

func (r *Registry) Field(obj any, name string) (FieldDescriptor, bool) {
	if f := r.fieldOf(obj, name); f != nil {
		return f.desc, true
	}
	return FieldDescriptor{}, false
}

// Get reads the native value of a field. Numeric storage is normalized to
// float64 so reads round-trip through the marshaller.
func (r *Registry) Get(obj any, name string) (any, error) {
	fv, f, err := r.fieldValue(obj, name)
	if err != nil {
		return nil, err
	}
	if f.desc.Type.Tag == wire.TagNumber {
		return fv.Convert(reflect.TypeOf(float64(0))).Interface(), nil
	}
	return fv.Interface(), nil
}

// Set writes the native value of a field, converting compatible numeric
// kinds. A []any value on a slice field replaces the whole slice.
func (r *Registry) Set(obj any, name string, value any) error {
	fv, _, err := r.fieldValue(obj, name)
	if err != nil {
		return err
	}
	return assign(fv, value)
}

// SliceLen reports the current length of an array field.
func (r *Registry) SliceLen(obj any, name string) (int, error) {
	fv, _, err := r.fieldValue(obj, name)
	if err != nil {
		return 0, err
	}
	if fv.Kind() != reflect.Slice {
		return 0, errors.Errorf("field %s is not an array", name)
	}
	return fv.Len(), nil
}

// GetIndex reads one element of an array field.
func (r *Registry) GetIndex(obj any, name string, index int) (any, error) {
	fv, _, err := r.fieldValue(obj, name)
	if err != nil {
		return nil, err
	}
	if fv.Kind() != reflect.Slice {
		return nil, errors.Errorf("field %s is not an array", name)
	}
	if index < 0 || index >= fv.Len() {
		return nil, errors.Errorf("index %d out of range for %s (len %d)", index, name, fv.Len())
	}
	elem := fv.Index(index)
	if isNumeric(elem.Kind()) {
		return elem.Convert(reflect.TypeOf(float64(0))).Interface(), nil
	}
	return elem.Interface(), nil
}

// SetIndex writes one element of an array field, growing the slice with zero
// values up to index+1 first. Slices are never shrunk.
func (r *Registry) SetIndex(obj any, name string, index int, value any) error {
	fv, _, err := r.fieldValue(obj, name)
	if err != nil {
		return err
	}
	if fv.Kind() != reflect.Slice {
		return errors.Errorf("field %s is not an array", name)
	}
	if index < 0 {
		return errors.Errorf("negative index %d for %s", index, name)
	}
	for fv.Len() <= index {
		fv.Set(reflect.Append(fv, reflect.Zero(fv.Type().Elem())))
	}
	return assign(fv.Index(index), value)
}

func (r *Registry) classOf(obj any) *classInfo {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[t]
}

func (r *Registry) fieldOf(obj any, name string) *fieldInfo {
	info := r.classOf(obj)
	if info == nil {
		return nil
	}
	return info.lookup[strings.ToLower(name)]
}

func (r *Registry) fieldValue(obj any, name string) (reflect.Value, *fieldInfo, error) {
	f := r.fieldOf(obj, name)
	if f == nil {
		return reflect.Value{}, nil, errors.Errorf("no field %s on %s", name, r.ClassName(obj))
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, nil, errors.Errorf("object of class %s is not addressable", r.ClassName(obj))
	}
	fv := rv.Elem().FieldByName(f.goName)
	if !fv.IsValid() {
		return reflect.Value{}, nil, errors.Errorf("field %s missing on %s", name, r.ClassName(obj))
	}
	return fv, f, nil
}

func assign(fv reflect.Value, value any) error {
	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(fv.Type()) {
		fv.Set(rv)
		return nil
	}
	if isNumeric(rv.Kind()) && isNumeric(fv.Kind()) {
		fv.Set(rv.Convert(fv.Type()))
		return nil
	}
	if fv.Kind() == reflect.Slice {
		if elems, ok := value.([]any); ok {
			out := reflect.MakeSlice(fv.Type(), len(elems), len(elems))
			for i, elem := range elems {
				if err := assign(out.Index(i), elem); err != nil {
					return err
				}
			}
			fv.Set(out)
			return nil
		}
	}
	return errors.Errorf("cannot assign %T to %s", value, fv.Type())
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func deriveFields(t reflect.Type, inherited bool) ([]fieldInfo, error) {
	var out []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("scene")
		if tag == "-" {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && !isWireStruct(sf.Type) {
			nested, err := deriveFields(sf.Type, true)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
			continue
		}
		wt, err := wireTypeFor(sf.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", sf.Name)
		}
		info := fieldInfo{
			goName:    sf.Name,
			inherited: inherited,
			desc:      FieldDescriptor{Name: sf.Name, Type: wt},
		}
		if err := applyTagOptions(&info, sf, tag); err != nil {
			return nil, errors.Wrapf(err, "field %s", sf.Name)
		}
		out = append(out, info)
	}
	return out, nil
}

func applyTagOptions(info *fieldInfo, sf reflect.StructField, tag string) error {
	if tag == "" {
		return nil
	}
	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "":
		case opt == "readonly":
			info.desc.ReadOnly = true
		case strings.HasPrefix(opt, "name="):
			info.desc.Name = strings.TrimPrefix(opt, "name=")
		case strings.HasPrefix(opt, "category="):
			info.desc.Category = strings.TrimPrefix(opt, "category=")
		case strings.HasPrefix(opt, "enum="):
			if sf.Type.Kind() != reflect.String {
				return errors.New("enum option requires a string field")
			}
			info.desc.Type = wire.Type{Tag: wire.TagEnum, Enum: strings.Split(strings.TrimPrefix(opt, "enum="), "|")}
		default:
			return errors.Errorf("unknown scene tag option %q", opt)
		}
	}
	return nil
}

var (
	vector3Type   = reflect.TypeOf(wire.Vector3{})
	rotatorType   = reflect.TypeOf(wire.Rotator{})
	colorType     = reflect.TypeOf(wire.Color{})
	objectRefType = reflect.TypeOf(wire.ObjectRef{})
)

func isWireStruct(t reflect.Type) bool {
	return t == vector3Type || t == rotatorType || t == colorType || t == objectRefType
}

func wireTypeFor(t reflect.Type) (wire.Type, error) {
	switch t {
	case vector3Type:
		return wire.Type{Tag: wire.TagVector3}, nil
	case rotatorType:
		return wire.Type{Tag: wire.TagRotator}, nil
	case colorType:
		return wire.Type{Tag: wire.TagColor}, nil
	case objectRefType:
		return wire.Type{Tag: wire.TagObjectRef}, nil
	}
	switch t.Kind() {
	case reflect.String:
		return wire.Type{Tag: wire.TagString}, nil
	case reflect.Bool:
		return wire.Type{Tag: wire.TagBool}, nil
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
		return wire.Type{Tag: wire.TagNumber}, nil
	case reflect.Slice:
		elem, err := wireTypeFor(t.Elem())
		if err != nil {
			return wire.Type{}, err
		}
		if elem.Tag == wire.TagArray {
			return wire.Type{}, errors.New("nested arrays are not supported")
		}
		return wire.Type{Tag: wire.TagArray, Elem: &elem}, nil
	}
	return wire.Type{}, errors.Errorf("unsupported field type %s", t)
}
