// Package geom owns the bounding-box side of the tracking data model.
//
// Responsibilities: the external geometry types (BoundingBox, Detection,
// Tracking) and the pure conversions between a box and the 7-dimensional
// constant-velocity filter state [cx, cy, area, ratio, vcx, vcy, varea].
// Key functions: MeasurementFromBox, BoxFromState.
//
// Dependency rule: geom depends on nothing else in this module. It holds no
// state and performs no logging.
package geom
