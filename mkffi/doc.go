// Package mkffi is the handle-based boundary for hosts that cannot hold Go values.
//
// Results of [*Registry.ComputeRoot] and [*Registry.ComputeProof]
// stay owned by the [Registry] until released with the matching
// [*Registry.FreeRoot] or [*Registry.FreeProof] call.
// The host only ever holds an opaque [Handle].
//
// Unlike a raw pointer boundary, misuse is reported rather than undefined:
// releasing a handle twice returns [ErrAlreadyReleased],
// and releasing a root handle as a proof returns [ErrWrongHandleKind].
package mkffi
