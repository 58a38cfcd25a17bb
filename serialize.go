package playback

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// attrTypeNames maps each AttrType to its serialized tag, and back, so
// persisted documents are self-describing (spec.md §6.1).
var attrTypeNames = map[AttrType]string{
	AttrBool:   "bool",
	AttrI32:    "i32",
	AttrU32:    "u32",
	AttrF32:    "f32",
	AttrString: "string",
	AttrVec3:   "vec3",
	AttrVec4:   "vec4",
	AttrUUID:   "uuid",
	AttrJSON:   "json",
}

var attrTypesByName = func() map[string]AttrType {
	m := make(map[string]AttrType, len(attrTypeNames))
	for t, name := range attrTypeNames {
		m[name] = t
	}
	return m
}()

// serializedAttrValue is the on-disk shape of one AttrValue: a type tag
// plus its raw-encoded payload. Attrs whose schema is unknown at load time
// (forward-compatible extras) round-trip unchanged since the tag alone is
// enough to re-decode them (spec.md §6.1: "unknown keys ... MUST be
// preserved round-trip").
type serializedAttrValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func marshalAttrValue(v AttrValue) (serializedAttrValue, error) {
	name, ok := attrTypeNames[v.Type]
	if !ok {
		return serializedAttrValue{}, fmt.Errorf("playback: unknown attr type %d", v.Type)
	}
	var raw json.RawMessage
	var err error
	switch v.Type {
	case AttrBool:
		raw, err = json.Marshal(v.B)
	case AttrI32:
		raw, err = json.Marshal(v.I32)
	case AttrU32:
		raw, err = json.Marshal(v.U32)
	case AttrF32:
		raw, err = json.Marshal(v.F32)
	case AttrString:
		raw, err = json.Marshal(v.Str)
	case AttrVec3:
		raw, err = json.Marshal(v.V3)
	case AttrVec4:
		raw, err = json.Marshal(v.V4)
	case AttrUUID:
		raw, err = json.Marshal(v.UUID.String())
	case AttrJSON:
		raw = v.JSON
	}
	if err != nil {
		return serializedAttrValue{}, err
	}
	return serializedAttrValue{Type: name, Value: raw}, nil
}

func unmarshalAttrValue(s serializedAttrValue) (AttrValue, error) {
	t, ok := attrTypesByName[s.Type]
	if !ok {
		return AttrValue{}, fmt.Errorf("playback: unknown attr type tag %q", s.Type)
	}
	switch t {
	case AttrBool:
		var b bool
		if err := json.Unmarshal(s.Value, &b); err != nil {
			return AttrValue{}, err
		}
		return BoolValue(b), nil
	case AttrI32:
		var i int32
		if err := json.Unmarshal(s.Value, &i); err != nil {
			return AttrValue{}, err
		}
		return I32Value(i), nil
	case AttrU32:
		var u uint32
		if err := json.Unmarshal(s.Value, &u); err != nil {
			return AttrValue{}, err
		}
		return U32Value(u), nil
	case AttrF32:
		var f float32
		if err := json.Unmarshal(s.Value, &f); err != nil {
			return AttrValue{}, err
		}
		return F32Value(f), nil
	case AttrString:
		var str string
		if err := json.Unmarshal(s.Value, &str); err != nil {
			return AttrValue{}, err
		}
		return StringValue(str), nil
	case AttrVec3:
		var v Vec3
		if err := json.Unmarshal(s.Value, &v); err != nil {
			return AttrValue{}, err
		}
		return Vec3Value(v), nil
	case AttrVec4:
		var v Vec4
		if err := json.Unmarshal(s.Value, &v); err != nil {
			return AttrValue{}, err
		}
		return Vec4Value(v), nil
	case AttrUUID:
		var str string
		if err := json.Unmarshal(s.Value, &str); err != nil {
			return AttrValue{}, err
		}
		u, err := uuid.Parse(str)
		if err != nil {
			return AttrValue{}, err
		}
		return UUIDValue(u), nil
	case AttrJSON:
		return JSONValue(s.Value), nil
	default:
		return AttrValue{}, fmt.Errorf("playback: unhandled attr type %d", t)
	}
}

func marshalAttrs(a *Attrs) (map[string]serializedAttrValue, []string, error) {
	out := make(map[string]serializedAttrValue, len(a.Keys()))
	for _, k := range a.Keys() {
		v, _ := a.Get(k)
		sv, err := marshalAttrValue(v)
		if err != nil {
			return nil, nil, fmt.Errorf("playback: serializing attr %q: %w", k, err)
		}
		out[k] = sv
	}
	return out, append([]string{}, a.Keys()...), nil
}

// unmarshalAttrs builds an Attrs from a serialized map and key order,
// attaching schema afterward (the reattachment pass serialize.go's
// DeserializeProject performs once the whole pool is loaded).
func unmarshalAttrs(values map[string]serializedAttrValue, order []string) (*Attrs, error) {
	a := &Attrs{values: make(map[string]AttrValue, len(values))}
	for _, k := range order {
		sv, ok := values[k]
		if !ok {
			continue
		}
		v, err := unmarshalAttrValue(sv)
		if err != nil {
			return nil, fmt.Errorf("playback: deserializing attr %q: %w", k, err)
		}
		a.setNoDirtyCheck(k, v)
	}
	return a, nil
}

type serializedLayer struct {
	InstanceUUID string                         `json:"instance_uuid"`
	SourceUUID   string                         `json:"source_uuid"`
	Attrs        map[string]serializedAttrValue `json:"attrs"`
	AttrOrder    []string                       `json:"attr_order"`
}

type serializedNode struct {
	UUID      string                         `json:"uuid"`
	Kind      string                         `json:"kind"`
	Attrs     map[string]serializedAttrValue `json:"attrs"`
	AttrOrder []string                       `json:"attr_order"`
	Layers    []serializedLayer              `json:"layers,omitempty"`
}

type serializedProject struct {
	Order     []string         `json:"order"`
	Selection []string         `json:"selection"`
	Active    string           `json:"active,omitempty"`
	Nodes     []serializedNode `json:"nodes"`
}

func nodeKindName(k NodeKind) string { return k.String() }

func nodeKindFromName(s string) (NodeKind, error) {
	switch s {
	case "file":
		return NodeFile, nil
	case "comp":
		return NodeComp, nil
	case "camera":
		return NodeCamera, nil
	case "text":
		return NodeText, nil
	default:
		return 0, fmt.Errorf("playback: unknown node kind %q", s)
	}
}

// Serialize encodes the project to JSON. Cache, workers, event emitter, and
// the thread-local compose stack are never serialized (spec.md §6.1).
func (p *Project) Serialize() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	doc := serializedProject{
		Order:     uuidsToStrings(p.order),
		Selection: uuidsToStrings(p.selection),
	}
	if p.active != uuid.Nil {
		doc.Active = p.active.String()
	}
	for id, node := range p.pool {
		values, order, err := marshalAttrs(node.Attrs())
		if err != nil {
			return nil, err
		}
		sn := serializedNode{
			UUID:      id.String(),
			Kind:      nodeKindName(node.Kind),
			Attrs:     values,
			AttrOrder: order,
		}
		for _, l := range node.Layers() {
			lvalues, lorder, err := marshalAttrs(l.Attrs())
			if err != nil {
				return nil, err
			}
			sn.Layers = append(sn.Layers, serializedLayer{
				InstanceUUID: l.InstanceUUID.String(),
				SourceUUID:   l.SourceUUID().String(),
				Attrs:        lvalues,
				AttrOrder:    lorder,
			})
		}
		doc.Nodes = append(doc.Nodes, sn)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DeserializeProject decodes data into a fresh Project wired against the
// given cache/cache-manager/event-bus, and reattaches schemas in a single
// pass over the loaded media pool afterward (spec.md §6.1); the event bus is
// wired into the Project at construction, not per node. The Composer must be attached separately via
// Project.SetComposer once the project and its resolver-dependent composer
// have been constructed (they are mutually referential).
func DeserializeProject(data []byte, cache *FrameCache, cm *CacheManager, bus *EventBus) (*Project, error) {
	var doc serializedProject
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("playback: decoding project: %w", err)
	}

	p := &Project{
		pool:    make(map[uuid.UUID]*Node),
		cache:   cache,
		cm:      cm,
		bus:     bus,
		History: newHistory(),
	}
	for _, s := range doc.Order {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		p.order = append(p.order, u)
	}
	for _, s := range doc.Selection {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		p.selection = append(p.selection, u)
	}
	if doc.Active != "" {
		u, err := uuid.Parse(doc.Active)
		if err != nil {
			return nil, err
		}
		p.active = u
	}

	for _, sn := range doc.Nodes {
		id, err := uuid.Parse(sn.UUID)
		if err != nil {
			return nil, err
		}
		kind, err := nodeKindFromName(sn.Kind)
		if err != nil {
			return nil, err
		}
		attrs, err := unmarshalAttrs(sn.Attrs, sn.AttrOrder)
		if err != nil {
			return nil, err
		}
		node := &Node{id: id, Kind: kind, attrs: attrs}
		for _, sl := range sn.Layers {
			instanceID, err := uuid.Parse(sl.InstanceUUID)
			if err != nil {
				return nil, err
			}
			lattrs, err := unmarshalAttrs(sl.Attrs, sl.AttrOrder)
			if err != nil {
				return nil, err
			}
			node.layers = append(node.layers, &Layer{InstanceUUID: instanceID, attrs: lattrs})
		}
		p.pool[id] = node
	}

	reattachSchemas(p)
	return p, nil
}

// reattachSchemas runs the single dependency-free pass spec.md §6.1
// requires: every node's Attrs gets its kind's schema, and every layer's
// Attrs gets the layer schema.
func reattachSchemas(p *Project) {
	for _, node := range p.pool {
		switch node.Kind {
		case NodeFile:
			node.attrs.AttachSchema(fileNodeSchema)
		case NodeComp:
			node.attrs.AttachSchema(compNodeSchema)
		case NodeCamera:
			node.attrs.AttachSchema(cameraNodeSchema)
		case NodeText:
			node.attrs.AttachSchema(textNodeSchema)
		}
		for _, l := range node.layers {
			l.attrs.AttachSchema(layerSchema)
		}
	}
}

// SetComposer attaches the Composer after construction, since Project and
// Composer are mutually referential (Composer needs Project as its
// NodeResolver).
func (p *Project) SetComposer(c *Composer) { p.composer = c }

func uuidsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
