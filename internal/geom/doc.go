// Package geom provides the rigid-transform and collision-shape primitives
// shared by the tracking, physics and interaction layers.
//
//   - [Pose]: position + orientation, composed with [Pose.Mul]
//   - [Ray]: pointing ray cast from a controller
//   - [Shape]: collision shape in its local frame ([Cuboid], [Cylinder], [Compound], [Plane])
//
// All math is float64 and built on mgl64. Poses compose right to left:
// world_from_object = world_from_controller.Mul(controller_from_object).
package geom
