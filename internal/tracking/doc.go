// Package tracking owns the per-track state estimator of the box tracker.
//
// Responsibilities: one Estimator per tracked object wrapping a
// constant-velocity Kalman filter over [cx, cy, area, ratio, vcx, vcy,
// varea], per-class identity assignment (IDRegistry), and the lifecycle
// counters (time since update, hit streak) that association and track
// management consume.
//
// Dependency rule: tracking never decides when a track is confirmed or
// deleted and never matches detections to tracks; callers own that policy.
package tracking
