// Package geom owns the world and local coordinate frames of the coverage
// planner.
//
// Responsibilities: boundary polygon representation, sweep vector selection
// (longest boundary edge) and the rigid transforms between the world frame
// and the sweep-aligned local frame.
//
// Dependency rule: geom depends on nothing else in this module.
package geom
