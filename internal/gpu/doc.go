//go:build !nogpu

// Package gpu is the WebGPU HAL renderer for the compositor.
//
// It runs on gogpu/wgpu, a Pure Go WebGPU implementation with no CGO.
// Devices are opened on the Vulkan HAL or adopted from a host application.
//
// # Resources
//
// Each texture unit owns a slot: a sampled texture, its view and a sampler
// whose filter is fixed per unit. Slots start as 1x1 zero textures and are
// reallocated only when an upload changes their size.
//
// A pass builds the vertex buffer, the params uniform and three bind
// groups (uniforms, textures, samplers), renders into an RGBA8 target,
// copies the target into a staging buffer with 256-byte row pitch and
// waits on a fence before reading it back.
package gpu
