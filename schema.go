package playback

// Schemas for each node kind and for Layer and Project, per spec.md §4.10.
// Flags follow the table there: DAG unless noted otherwise.

var fileNodeSchema = NewSchema("FileNode", []AttrDef{
	{Key: "name", Type: AttrString, Default: StringValue(""), Flags: FlagDisplay},
	{Key: "file_mask", Type: AttrString, Default: StringValue(""), Flags: FlagDAG | FlagDisplay},
	{Key: "file_dir", Type: AttrString, Default: StringValue(""), Flags: FlagDAG | FlagDisplay},
	{Key: "file_start", Type: AttrI32, Default: I32Value(1), Flags: FlagDAG | FlagDisplay},
	{Key: "file_end", Type: AttrI32, Default: I32Value(1), Flags: FlagDAG | FlagDisplay},
	{Key: "padding", Type: AttrI32, Default: I32Value(4), Flags: FlagDAG | FlagDisplay},
	{Key: "fps", Type: AttrF32, Default: F32Value(24), Flags: FlagDAG | FlagDisplay},
	{Key: "width", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG},
	{Key: "height", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG},
	{Key: "in", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
	{Key: "out", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
	{Key: "trim_in", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
	{Key: "trim_out", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
})

var compNodeSchema = NewSchema("CompNode", []AttrDef{
	{Key: "name", Type: AttrString, Default: StringValue(""), Flags: FlagDisplay},
	{Key: "fps", Type: AttrF32, Default: F32Value(24), Flags: FlagDAG | FlagDisplay},
	{Key: "width", Type: AttrI32, Default: I32Value(1920), Flags: FlagDAG | FlagDisplay},
	{Key: "height", Type: AttrI32, Default: I32Value(1080), Flags: FlagDAG | FlagDisplay},
	{Key: "in", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
	{Key: "out", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
	{Key: "trim_in", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
	{Key: "trim_out", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
	// frame (the playhead) is explicitly NOT DAG: moving it must not
	// invalidate the cache (spec.md §4.10).
	{Key: "frame", Type: AttrI32, Default: I32Value(0), Flags: FlagDisplay},
})

var cameraNodeSchema = NewSchema("CameraNode", []AttrDef{
	{Key: "name", Type: AttrString, Default: StringValue(""), Flags: FlagDisplay},
	{Key: "fov", Type: AttrF32, Default: F32Value(50), Flags: FlagDAG | FlagDisplay},
	{Key: "near", Type: AttrF32, Default: F32Value(0.1), Flags: FlagDAG | FlagDisplay},
	{Key: "far", Type: AttrF32, Default: F32Value(10000), Flags: FlagDAG | FlagDisplay},
})

var textNodeSchema = NewSchema("TextNode", []AttrDef{
	{Key: "name", Type: AttrString, Default: StringValue(""), Flags: FlagDisplay},
	{Key: "text", Type: AttrString, Default: StringValue(""), Flags: FlagDAG | FlagDisplay | FlagKeyable},
	{Key: "font_size", Type: AttrF32, Default: F32Value(48), Flags: FlagDAG | FlagDisplay},
	{Key: "width", Type: AttrI32, Default: I32Value(512), Flags: FlagDAG},
	{Key: "height", Type: AttrI32, Default: I32Value(128), Flags: FlagDAG},
	{Key: "in", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
	{Key: "out", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
})

var layerSchema = NewSchema("Layer", []AttrDef{
	{Key: "name", Type: AttrString, Default: StringValue(""), Flags: FlagDisplay},
	{Key: "source_uuid", Type: AttrUUID, Flags: FlagDAG | FlagInternal},
	{Key: "in", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay | FlagKeyable},
	{Key: "src_len", Type: AttrI32, Default: I32Value(1), Flags: FlagDAG},
	{Key: "trim_in", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
	{Key: "trim_out", Type: AttrI32, Default: I32Value(0), Flags: FlagDAG | FlagDisplay},
	{Key: "speed", Type: AttrF32, Default: F32Value(1), Flags: FlagDAG | FlagDisplay | FlagKeyable},
	{Key: "opacity", Type: AttrF32, Default: F32Value(1), Flags: FlagDAG | FlagDisplay | FlagKeyable},
	{Key: "blend_mode", Type: AttrString, Default: StringValue("normal"), Flags: FlagDAG | FlagDisplay},
	{Key: "visible", Type: AttrBool, Default: BoolValue(true), Flags: FlagDAG | FlagDisplay},
	{Key: "solo", Type: AttrBool, Default: BoolValue(false), Flags: FlagDAG | FlagDisplay},
	{Key: "mute", Type: AttrBool, Default: BoolValue(false), Flags: FlagDAG | FlagDisplay},
	{Key: "position", Type: AttrVec3, Flags: FlagDAG | FlagDisplay | FlagKeyable},
	{Key: "rotation", Type: AttrVec3, Flags: FlagDAG | FlagDisplay | FlagKeyable},
	{Key: "scale", Type: AttrVec3, Default: Vec3Value(Vec3{X: 1, Y: 1, Z: 1}), Flags: FlagDAG | FlagDisplay | FlagKeyable},
	{Key: "pivot", Type: AttrVec3, Flags: FlagDAG | FlagDisplay | FlagKeyable},
})

var projectSchema = NewSchema("Project", []AttrDef{
	{Key: "order", Type: AttrJSON, Flags: FlagInternal},
	{Key: "selection", Type: AttrJSON, Flags: FlagInternal},
	{Key: "active", Type: AttrUUID, Flags: FlagInternal},
	{Key: "previous_comp_history", Type: AttrJSON, Flags: FlagInternal},
})
