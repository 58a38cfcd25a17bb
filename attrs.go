package playback

import (
	"encoding/json"
	"sync/atomic"

	"github.com/google/uuid"
)

// AttrFlag is a bitmask of schema behaviors for one attribute key.
type AttrFlag uint8

const (
	// FlagDAG marks the attribute as render-invalidating: setting it marks
	// the owning Attrs dirty.
	FlagDAG AttrFlag = 1 << iota
	// FlagDisplay marks the attribute as UI-editable in a generic inspector.
	FlagDisplay
	// FlagKeyable marks the attribute as eligible for keyframe animation.
	FlagKeyable
	// FlagReadonly marks the attribute as not settable by the UI.
	FlagReadonly
	// FlagInternal marks the attribute as implementation detail, hidden
	// from any generic attribute editor.
	FlagInternal
)

// AttrType identifies the dynamic type carried by an AttrValue.
type AttrType uint8

const (
	AttrBool AttrType = iota
	AttrI32
	AttrU32
	AttrF32
	AttrString
	AttrVec3
	AttrVec4
	AttrUUID
	AttrJSON // opaque, forward-compatible payload
)

// AttrValue is a tagged union over the value types spec.md §3 enumerates
// for Attrs. Only the field matching Type is meaningful.
type AttrValue struct {
	Type AttrType
	B    bool
	I32  int32
	U32  uint32
	F32  float32
	Str  string
	V3   Vec3
	V4   Vec4
	UUID uuid.UUID
	JSON json.RawMessage
}

func BoolValue(b bool) AttrValue        { return AttrValue{Type: AttrBool, B: b} }
func I32Value(i int32) AttrValue        { return AttrValue{Type: AttrI32, I32: i} }
func U32Value(u uint32) AttrValue       { return AttrValue{Type: AttrU32, U32: u} }
func F32Value(f float32) AttrValue      { return AttrValue{Type: AttrF32, F32: f} }
func StringValue(s string) AttrValue    { return AttrValue{Type: AttrString, Str: s} }
func Vec3Value(v Vec3) AttrValue        { return AttrValue{Type: AttrVec3, V3: v} }
func Vec4Value(v Vec4) AttrValue        { return AttrValue{Type: AttrVec4, V4: v} }
func UUIDValue(u uuid.UUID) AttrValue   { return AttrValue{Type: AttrUUID, UUID: u} }
func JSONValue(b json.RawMessage) AttrValue { return AttrValue{Type: AttrJSON, JSON: b} }

// AsBool, AsI32, etc. are typed boundary helpers (spec.md §9 "Attrs
// storage"): cheap accessors so callers don't have to switch on Type
// themselves. Each returns the type's zero value if the stored type differs.
func (v AttrValue) AsBool() bool     { return v.B }
func (v AttrValue) AsI32() int32     { return v.I32 }
func (v AttrValue) AsU32() uint32    { return v.U32 }
func (v AttrValue) AsF32() float32   { return v.F32 }
func (v AttrValue) AsString() string { return v.Str }
func (v AttrValue) AsVec3() Vec3     { return v.V3 }
func (v AttrValue) AsVec4() Vec4     { return v.V4 }
func (v AttrValue) AsUUID() uuid.UUID { return v.UUID }

// AttrDef describes one schema-known key.
type AttrDef struct {
	Key     string
	Type    AttrType
	Default AttrValue
	Flags   AttrFlag
}

// Schema lists the AttrDefs a node kind understands. A Schema is not
// serialized; it is reattached by the owning node after deserialization
// (spec.md §3, §6.1).
type Schema struct {
	Name string
	Defs []AttrDef

	byKey map[string]AttrDef
}

// NewSchema builds a Schema and its key index.
func NewSchema(name string, defs []AttrDef) *Schema {
	s := &Schema{Name: name, Defs: defs, byKey: make(map[string]AttrDef, len(defs))}
	for _, d := range defs {
		s.byKey[d.Key] = d
	}
	return s
}

func (s *Schema) lookup(key string) (AttrDef, bool) {
	if s == nil {
		return AttrDef{}, false
	}
	d, ok := s.byKey[key]
	return d, ok
}

// IsDAG reports whether key is marked FlagDAG in this schema. A schema-less
// attrs bag (schema == nil) treats every key as DAG, per spec.md §3's "marks
// dirty only if no schema is attached or the schema marks k as DAG". A key
// unknown to an attached schema is NOT treated as DAG: it is a forward-
// compatible passthrough value, not something the schema has opted into
// invalidation for.
func (s *Schema) IsDAG(key string) bool {
	if s == nil {
		return true
	}
	d, ok := s.byKey[key]
	if !ok {
		return false
	}
	return d.Flags&FlagDAG != 0
}

// Attrs is an ordered mapping from string key to typed value, with an
// optional Schema and an atomic dirty flag (spec.md §3). Unknown keys are
// preserved for forward compatibility.
type Attrs struct {
	schema *Schema
	order  []string
	values map[string]AttrValue
	dirty  atomic.Bool
}

// NewAttrs creates an empty Attrs, optionally with schema defaults applied.
func NewAttrs(schema *Schema) *Attrs {
	a := &Attrs{schema: schema, values: make(map[string]AttrValue)}
	if schema != nil {
		for _, d := range schema.Defs {
			a.setNoDirtyCheck(d.Key, d.Default)
		}
	}
	return a
}

// AttachSchema reattaches a schema after deserialization, without touching
// existing values (spec.md §3, §6.1). Unknown keys already present are left
// as-is; missing schema defaults are NOT backfilled, since the serialized
// document is assumed complete for known keys.
func (a *Attrs) AttachSchema(schema *Schema) {
	a.schema = schema
}

// Schema returns the attached schema, or nil.
func (a *Attrs) Schema() *Schema { return a.schema }

func (a *Attrs) setNoDirtyCheck(key string, v AttrValue) {
	if _, exists := a.values[key]; !exists {
		a.order = append(a.order, key)
	}
	a.values[key] = v
}

// Set stores v at key, preserving insertion order for new keys. Marks dirty
// only if no schema is attached or the schema marks key as FlagDAG.
func (a *Attrs) Set(key string, v AttrValue) {
	a.setNoDirtyCheck(key, v)
	if a.schema.IsDAG(key) {
		a.dirty.Store(true)
	}
}

// Get returns the value at key and whether it was present.
func (a *Attrs) Get(key string) (AttrValue, bool) {
	v, ok := a.values[key]
	return v, ok
}

// GetBool, GetI32, etc. are typed convenience getters returning the zero
// value (and false) if key is absent or holds a different type.
func (a *Attrs) GetBool(key string) (bool, bool) {
	v, ok := a.values[key]
	return v.B, ok && v.Type == AttrBool
}

func (a *Attrs) GetI32(key string) (int32, bool) {
	v, ok := a.values[key]
	return v.I32, ok && v.Type == AttrI32
}

func (a *Attrs) GetF32(key string) (float32, bool) {
	v, ok := a.values[key]
	return v.F32, ok && v.Type == AttrF32
}

func (a *Attrs) GetString(key string) (string, bool) {
	v, ok := a.values[key]
	return v.Str, ok && v.Type == AttrString
}

func (a *Attrs) GetVec3(key string) (Vec3, bool) {
	v, ok := a.values[key]
	return v.V3, ok && v.Type == AttrVec3
}

func (a *Attrs) GetUUID(key string) (uuid.UUID, bool) {
	v, ok := a.values[key]
	return v.UUID, ok && v.Type == AttrUUID
}

// Keys returns the known keys in insertion order. The returned slice MUST
// NOT be mutated.
func (a *Attrs) Keys() []string { return a.order }

// Dirty reports whether a DAG-marked attribute has changed since the last
// ClearDirty.
func (a *Attrs) Dirty() bool { return a.dirty.Load() }

// ClearDirty resets the dirty flag, normally called by Project.modify_comp
// after emitting AttrsChanged.
func (a *Attrs) ClearDirty() { a.dirty.Store(false) }

// MarkDirty force-marks the attrs dirty, for node-level state (e.g. a
// CompNode's own structural change) that isn't expressed as an attribute set.
func (a *Attrs) MarkDirty() { a.dirty.Store(true) }
