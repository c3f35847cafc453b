// Package l5roles owns Layer 5 (Roles) of the court analysis data model.
//
// Responsibilities: assigning semantic roles to tracker identities once per
// video from start-of-video geometry, and filtering the per-frame detection
// stream down to the role-bearing participants.
//
// Dependency rule: L5 may depend on L1-L4.
package l5roles
