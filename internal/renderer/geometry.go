package renderer

import (
	"fmt"
	"math"

	"Sunlight/internal/gfx"
)

const (
	positionComponents = 3
	texCoordComponents = 2
	vertexComponents   = positionComponents + texCoordComponents
	vertexStride       = vertexComponents * 4
)

// VertexBuffer is an immutable interleaved position+texcoord stream. The GPU
// copy is uploaded on first Bind and dropped by GeometryFactory.UnloadAll.
type VertexBuffer struct {
	device gfx.Device
	name   string
	data   []float32
	count  int
	handle uint32
}

// Name identifies the geometry kind ("sphere", "quad").
func (vb *VertexBuffer) Name() string { return vb.name }

// VertexCount returns the number of vertices in the stream.
func (vb *VertexBuffer) VertexCount() int { return vb.count }

// Data returns a copy of the interleaved vertex stream.
func (vb *VertexBuffer) Data() []float32 {
	out := make([]float32, len(vb.data))
	copy(out, vb.data)
	return out
}

// Position returns the xyz of vertex i.
func (vb *VertexBuffer) Position(i int) [3]float32 {
	o := i * vertexComponents
	return [3]float32{vb.data[o], vb.data[o+1], vb.data[o+2]}
}

// TexCoord returns the uv of vertex i.
func (vb *VertexBuffer) TexCoord(i int) [2]float32 {
	o := i*vertexComponents + positionComponents
	return [2]float32{vb.data[o], vb.data[o+1]}
}

// Bind uploads the buffer if needed and wires it to the named attributes of
// program. It returns false when the program has no position attribute.
func (vb *VertexBuffer) Bind(program *Program, positionAttr, texCoordAttr string) bool {
	position := program.AttribLocation(positionAttr)
	if position < 0 {
		return false
	}
	if vb.handle == 0 {
		vb.handle = vb.device.GenBuffer()
		vb.device.BindBuffer(gfx.ARRAY_BUFFER, vb.handle)
		vb.device.BufferData(gfx.ARRAY_BUFFER, vb.data, gfx.STATIC_DRAW)
	} else {
		vb.device.BindBuffer(gfx.ARRAY_BUFFER, vb.handle)
	}

	vb.device.VertexAttribPointer(uint32(position), positionComponents, gfx.FLOAT, false, vertexStride, 0)
	vb.device.EnableVertexAttribArray(uint32(position))

	if texCoord := program.AttribLocation(texCoordAttr); texCoord >= 0 {
		vb.device.VertexAttribPointer(uint32(texCoord), texCoordComponents, gfx.FLOAT, false, vertexStride, positionComponents*4)
		vb.device.EnableVertexAttribArray(uint32(texCoord))
	}
	return true
}

// Draw issues one draw call over the whole stream.
func (vb *VertexBuffer) Draw(mode gfx.Enum) {
	vb.device.DrawArrays(mode, 0, int32(vb.count))
}

// Unbind disables the attribute arrays enabled by Bind.
func (vb *VertexBuffer) Unbind(program *Program, positionAttr, texCoordAttr string) {
	if loc := program.AttribLocation(positionAttr); loc >= 0 {
		vb.device.DisableVertexAttribArray(uint32(loc))
	}
	if loc := program.AttribLocation(texCoordAttr); loc >= 0 {
		vb.device.DisableVertexAttribArray(uint32(loc))
	}
	vb.device.BindBuffer(gfx.ARRAY_BUFFER, 0)
}

func (vb *VertexBuffer) unload() {
	if vb.handle == 0 {
		return
	}
	vb.device.DeleteBuffer(vb.handle)
	vb.handle = 0
}

// GeometryFactory builds the static meshes of the scene and owns their buffers.
type GeometryFactory struct {
	device  gfx.Device
	buffers []*VertexBuffer
}

// NewGeometryFactory creates a factory that uploads through device.
func NewGeometryFactory(device gfx.Device) *GeometryFactory {
	return &GeometryFactory{device: device}
}

// CreateSphere builds a unit UV sphere with its pole on +Z as a single triangle
// strip. Latitude bands are emitted top to bottom, each walking longitude
// 0..hSegments, and joined by two degenerate vertices so the strip keeps a
// consistent counter-clockwise outward winding.
func (gf *GeometryFactory) CreateSphere(hSegments, vSegments int) (*VertexBuffer, error) {
	if hSegments < 2 || vSegments < 2 {
		return nil, fmt.Errorf("sphere needs at least 2x2 segments, got %dx%d", hSegments, vSegments)
	}

	count := vSegments*2*(hSegments+1) + 2*(vSegments-1)
	data := make([]float32, 0, count*vertexComponents)

	vertex := func(ring, segment int) {
		theta := math.Pi * float64(ring) / float64(vSegments)
		phi := 2 * math.Pi * float64(segment) / float64(hSegments)
		sinTheta, cosTheta := math.Sincos(theta)
		sinPhi, cosPhi := math.Sincos(phi)
		data = append(data,
			float32(sinTheta*cosPhi),
			float32(sinTheta*sinPhi),
			float32(cosTheta),
			float32(segment)/float32(hSegments),
			float32(ring)/float32(vSegments),
		)
	}

	for ring := 0; ring < vSegments; ring++ {
		if ring > 0 {
			// Repeat the first vertex of the new band.
			vertex(ring, 0)
		}
		for segment := 0; segment <= hSegments; segment++ {
			vertex(ring, segment)
			vertex(ring+1, segment)
		}
		if ring < vSegments-1 {
			// Repeat the last vertex of the finished band.
			vertex(ring+1, hSegments)
		}
	}

	return gf.track("sphere", data), nil
}

// CreateScreenQuad builds the unit square in strip order. The pipeline draws it
// through Ortho(0,1,0,1,-1,1), which maps it onto the whole target.
func (gf *GeometryFactory) CreateScreenQuad() *VertexBuffer {
	data := []float32{
		0, 0, 0, 0, 0,
		1, 0, 0, 1, 0,
		0, 1, 0, 0, 1,
		1, 1, 0, 1, 1,
	}
	return gf.track("quad", data)
}

// UnloadAll deletes the GPU copies of every buffer built by this factory.
func (gf *GeometryFactory) UnloadAll() {
	for _, vb := range gf.buffers {
		vb.unload()
	}
}

func (gf *GeometryFactory) track(name string, data []float32) *VertexBuffer {
	vb := &VertexBuffer{
		device: gf.device,
		name:   name,
		data:   data,
		count:  len(data) / vertexComponents,
	}
	gf.buffers = append(gf.buffers, vb)
	return vb
}
