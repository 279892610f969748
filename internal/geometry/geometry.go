// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package geometry builds the quadrant vertex table drawn by the compositor.
//
// Each quadrant is two triangles in normalized device coordinates. Quadrants
// are emitted in a fixed order (upper-left, upper-right, lower-left,
// lower-right in attribute space) and every quadrant shares the same
// texture-coordinate pattern, so each source covers its quarter fully.
package geometry

import (
	"encoding/binary"
	"fmt"
	"math"
)

// VerticesPerQuadrant is the vertex count of one quadrant (two triangles).
const VerticesPerQuadrant = 6

// MaxQuadrants is the largest supported quadrant count.
const MaxQuadrants = 4

// Stride is the byte size of one interleaved vertex.
const Stride = 16

// bounds is the attribute-space rectangle of each quadrant: x0, x1, y0, y1
// with y0 the lower edge.
var bounds = [MaxQuadrants][4]float32{
	{-1, 0, 0, 1},
	{0, 1, 0, 1},
	{-1, 0, -1, 0},
	{0, 1, -1, 0},
}

// texPattern is the texcoord of each of the six vertices of a quadrant.
var texPattern = [VerticesPerQuadrant][2]float32{
	{0, 1}, {1, 1}, {0, 0},
	{0, 0}, {1, 1}, {1, 0},
}

// Geometry holds parallel position and texcoord arrays, two floats per
// vertex each. It is read-only after construction.
type Geometry struct {
	Positions []float32
	TexCoords []float32
}

// Quadrants builds the table for n quadrants, 1 <= n <= 4.
func Quadrants(n int) (*Geometry, error) {
	if n < 1 || n > MaxQuadrants {
		return nil, fmt.Errorf("geometry: quadrant count %d out of range [1, %d]", n, MaxQuadrants)
	}
	g := &Geometry{
		Positions: make([]float32, 0, n*VerticesPerQuadrant*2),
		TexCoords: make([]float32, 0, n*VerticesPerQuadrant*2),
	}
	for q := 0; q < n; q++ {
		x0, x1, y0, y1 := bounds[q][0], bounds[q][1], bounds[q][2], bounds[q][3]
		g.Positions = append(g.Positions,
			x0, y0,
			x1, y0,
			x0, y1,

			x0, y1,
			x1, y0,
			x1, y1,
		)
		for _, tc := range texPattern {
			g.TexCoords = append(g.TexCoords, tc[0], tc[1])
		}
	}
	return g, nil
}

// VertexCount returns the number of vertices in the table.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 2
}

// Vertex returns the position and texcoord of vertex i.
func (g *Geometry) Vertex(i int) (pos, tc [2]float32) {
	pos = [2]float32{g.Positions[2*i], g.Positions[2*i+1]}
	tc = [2]float32{g.TexCoords[2*i], g.TexCoords[2*i+1]}
	return pos, tc
}

// Interleaved packs the table as little-endian float32 vertices of
// position.xy followed by texcoord.xy.
func (g *Geometry) Interleaved() []byte {
	n := g.VertexCount()
	buf := make([]byte, n*Stride)
	for i := 0; i < n; i++ {
		off := i * Stride
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(g.Positions[2*i]))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(g.Positions[2*i+1]))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(g.TexCoords[2*i]))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(g.TexCoords[2*i+1]))
	}
	return buf
}
