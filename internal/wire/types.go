package wire

import (
	"strconv"
	"strings"
)

// Tag is the closed set of marshalling categories a reflected field can
// carry. Dispatch in the marshaller is by tag, not by per-type methods.
type Tag string

const (
	TagString    Tag = "string"
	TagNumber    Tag = "number"
	TagBool      Tag = "bool"
	TagVector3   Tag = "vector3"
	TagRotator   Tag = "rotator"
	TagColor     Tag = "color"
	TagEnum      Tag = "enum"
	TagObjectRef Tag = "objectref"
	TagArray     Tag = "array"
)

// Type is the marshalling-relevant slice of a field descriptor: the tag,
// the element type for arrays, and the allowed names for enums.
type Type struct {
	Tag  Tag
	Elem *Type    // element type when Tag == TagArray
	Enum []string // allowed names when Tag == TagEnum; empty means unchecked
}

func (t Type) String() string {
	if t.Tag == TagArray && t.Elem != nil {
		return string(TagArray) + "<" + t.Elem.String() + ">"
	}
	return string(t.Tag)
}

// Shape returns the wire-shape hint embedded in marshalling failures so the
// client can retry with a corrected value.
func (t Type) Shape() string {
	switch t.Tag {
	case TagVector3:
		return "[x,y,z] or {x,y,z}"
	case TagRotator:
		return "[pitch,yaw,roll] or {pitch,yaw,roll}"
	case TagColor:
		return "{r,g,b,a} (missing channels default to r=0, g=0, b=0, a=255)"
	case TagObjectRef:
		return `object path string ("" or "None" clears the reference)`
	case TagEnum:
		if len(t.Enum) > 0 {
			return "one of: " + strings.Join(t.Enum, ", ")
		}
		return "enum name string"
	case TagNumber:
		return "number"
	case TagBool:
		return "true or false"
	case TagArray:
		if t.Elem != nil {
			return "array of " + t.Elem.Shape()
		}
		return "array"
	default:
		return "string"
	}
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Vector3 is the native encoding of a vector3 field. Its text form is the
// tuple representation the host graph stores and automation reads back.
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) String() string {
	return "(X=" + ftoa(v.X) + ",Y=" + ftoa(v.Y) + ",Z=" + ftoa(v.Z) + ")"
}

// Rotator is the native encoding of a rotator field, in degrees.
type Rotator struct {
	Pitch, Yaw, Roll float64
}

func (r Rotator) String() string {
	return "(Pitch=" + ftoa(r.Pitch) + ",Yaw=" + ftoa(r.Yaw) + ",Roll=" + ftoa(r.Roll) + ")"
}

// Color is the native encoding of a color field, 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func (c Color) String() string {
	return "(R=" + strconv.Itoa(int(c.R)) + ",G=" + strconv.Itoa(int(c.G)) +
		",B=" + strconv.Itoa(int(c.B)) + ",A=" + strconv.Itoa(int(c.A)) + ")"
}

// ObjectRef is a resolved reference to another object, addressed by its
// persistent path. The zero value is the cleared ("None") reference.
type ObjectRef struct {
	Path   string
	Object any
}

func (r ObjectRef) IsNone() bool { return r.Path == "" }

func (r ObjectRef) String() string {
	if r.Path == "" {
		return "None"
	}
	return r.Path
}

// Loader resolves object-reference paths against the host's asset space.
// A nil result means the path does not name a loadable object.
type Loader interface {
	LoadObject(path string) any
}
