// Package hbao implements horizon-based screen-space ambient occlusion as a
// post-process stage.
//
// A Stage owns the render targets of the effect and drives four fixed
// programs through a Backend, once per frame:
//
//	depth ──► Generate ──► ao ──► BlurX ──► scratch ──► BlurY ──► ao
//	color ─────────────────────────────────────────────────┐      │
//	                                                        ▼      ▼
//	                                                  Composite ──► output
//
// The per-pixel math of every program lives in this package as plain Go
// functions (ViewPosition, EstimateNormal, HorizonOcclusion, BlurPixel,
// Composite) so that CPU executors and tests evaluate exactly what the GPU
// programs evaluate.
//
// Tunables are read through Params, which hands out an immutable Settings
// snapshot at dispatch time.
package hbao
