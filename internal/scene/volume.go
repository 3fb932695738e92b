package scene

import (
	"github.com/lumen3d/lumen/internal/assets"
	"github.com/lumen3d/lumen/internal/vecmath"
)

// Volume references a NanoVDB grid used for volumetric rendering. The grid
// handle is shared: other subsystems holding it keep the voxel data alive
// even after the component is removed.
type Volume struct {
	Meta

	grid   *assets.Grid
	scale  float32 // density multiplier applied by the renderer
	source string  // originating file path
}

// VolumeStruct is the flat projection of a Volume.
type VolumeStruct struct {
	GridType   int32
	NodeCounts [4]uint32
	Scale      float32
	BBoxMinX   float32
	BBoxMinY   float32
	BBoxMinZ   float32
	BBoxMaxX   float32
	BBoxMaxY   float32
	BBoxMaxZ   float32
}

func projectVolume(v *Volume, s *VolumeStruct) {
	*s = VolumeStruct{Scale: v.scale}
	if v.grid == nil {
		return
	}
	s.GridType = int32(v.grid.Meta.Type)
	s.NodeCounts = v.grid.Meta.NodeCounts
	min, max := v.grid.Meta.WorldBBoxMin, v.grid.Meta.WorldBBoxMax
	s.BBoxMinX, s.BBoxMinY, s.BBoxMinZ = float32(min[0]), float32(min[1]), float32(min[2])
	s.BBoxMaxX, s.BBoxMaxY, s.BBoxMaxZ = float32(max[0]), float32(max[1]), float32(max[2])
}

func newVolumeRegistry(capacity int) *Registry[Volume, *Volume, VolumeStruct] {
	return NewRegistry[Volume, *Volume, VolumeStruct]("Volume", capacity, projectVolume)
}

// Source returns the file the grid was loaded from.
func (v *Volume) Source() string { return v.source }

// Grid returns the shared grid handle, or nil for an empty volume.
func (v *Volume) Grid() *assets.Grid { return v.grid }

// GridType names the voxel value type of the attached grid ("float",
// "vec3f", …), or "unknown" when no grid is attached.
func (v *Volume) GridType() string {
	if v.grid == nil {
		return assets.GridTypeUnknown.String()
	}
	return v.grid.Meta.Type.String()
}

// NodeCount returns the grid's tree node count at the given level (0 = leaf),
// or 0 when no grid is attached or the level is out of range.
func (v *Volume) NodeCount(level int) uint32 {
	if v.grid == nil || level < 0 || level >= len(v.grid.Meta.NodeCounts) {
		return 0
	}
	return v.grid.Meta.NodeCounts[level]
}

// WorldAabb returns the grid's world-space bounding box corners.
func (v *Volume) WorldAabb() (min, max vecmath.Vec3) {
	if v.grid == nil {
		return
	}
	lo, hi := v.grid.Meta.WorldBBoxMin, v.grid.Meta.WorldBBoxMax
	min = vecmath.V3(float32(lo[0]), float32(lo[1]), float32(lo[2]))
	max = vecmath.V3(float32(hi[0]), float32(hi[1]), float32(hi[2]))
	return
}

// SetScale sets the density multiplier applied by the renderer.
func (v *Volume) SetScale(s float32) error {
	return v.edit(func() { v.scale = s })
}

func (v *Volume) Scale() float32 { return v.scale }

func (v *Volume) String() string {
	grid := ""
	if v.grid != nil {
		grid = v.grid.Meta.Name
	}
	return jsonString(struct {
		Type     string  `json:"type"`
		Name     string  `json:"name"`
		Grid     string  `json:"grid"`
		GridType string  `json:"gridType"`
		Scale    float32 `json:"scale"`
	}{"Volume", v.Name(), grid, v.GridType(), v.scale})
}
