// Package light provides directional and ambient light components and the
// packed uniform the render system binds at environment binding 2.
package light

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Binding is the environment bind group slot of the packed light uniform.
const Binding = 2

// Data is the state shared by every light kind.
type Data struct {
	Color     mgl32.Vec3
	Intensity float32
	Enabled   bool
	BindIndex uint32
}

// Directional is a light at infinity shining along Direction.
type Directional struct {
	Data
	// Direction is kept normalized by NewDirectional and SetDirection.
	Direction   mgl32.Vec3
	CastShadows bool
}

// NewDirectional returns an enabled directional light.
func NewDirectional(direction, color mgl32.Vec3, intensity float32) Directional {
	d := Directional{
		Data: Data{
			Color:     color,
			Intensity: intensity,
			Enabled:   true,
			BindIndex: Binding,
		},
		CastShadows: true,
	}
	d.SetDirection(direction)
	return d
}

// SetDirection normalizes and stores dir. A zero vector points down.
func (d *Directional) SetDirection(dir mgl32.Vec3) {
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, -1, 0}
	}
	d.Direction = dir.Normalize()
}

// Ambient lights every surface evenly.
type Ambient struct {
	Data
}

// NewAmbient returns the default ambient light: (0.1, 0.1, 0.15) at 0.4.
func NewAmbient() Ambient {
	return Ambient{Data: Data{
		Color:     mgl32.Vec3{0.1, 0.1, 0.15},
		Intensity: 0.4,
		Enabled:   true,
		BindIndex: Binding,
	}}
}

// Byte sizes of the packed records.
const (
	headerSize      = 16
	directionalSize = 48
	ambientSize     = 32
)

// DirectionalUniform is the GPU record of one directional light.
type DirectionalUniform struct {
	Direction      [4]float32
	ColorIntensity [4]float32
	// Flags[0] is enabled, Flags[1] is cast shadows.
	Flags [4]uint32
}

// AmbientUniform is the GPU record of one ambient light.
type AmbientUniform struct {
	ColorIntensity [4]float32
	Flags          [4]uint32
}

// Caps bounds how many lights of each kind reach the shader.
type Caps struct {
	Directional int
	Ambient     int
}

// DefaultCaps allows four directional lights and one ambient light.
var DefaultCaps = Caps{Directional: 4, Ambient: 1}

// UniformSize returns the packed uniform size for c.
func (c Caps) UniformSize() int {
	return headerSize + max(c.Directional, 1)*directionalSize + max(c.Ambient, 1)*ambientSize
}

// Overflow counts enabled lights that did not fit under the caps.
type Overflow struct {
	Directional int
	Ambient     int
}

// Total returns the number of dropped lights.
func (o Overflow) Total() int { return o.Directional + o.Ambient }

// Packed is the light uniform for one frame.
type Packed struct {
	Caps        Caps
	Directional []DirectionalUniform
	Ambient     []AmbientUniform
}

// Pack collects enabled lights in the given order up to caps. Lights past
// a cap are dropped and counted in the returned Overflow, so the first
// registered lights win.
func Pack(dirs []Directional, ambients []Ambient, caps Caps) (Packed, Overflow) {
	p := Packed{Caps: caps}
	var over Overflow
	for i := range dirs {
		d := &dirs[i]
		if !d.Enabled {
			continue
		}
		if len(p.Directional) >= caps.Directional {
			over.Directional++
			continue
		}
		p.Directional = append(p.Directional, DirectionalUniform{
			Direction:      [4]float32{d.Direction.X(), d.Direction.Y(), d.Direction.Z(), 0},
			ColorIntensity: [4]float32{d.Color.X(), d.Color.Y(), d.Color.Z(), d.Intensity},
			Flags:          [4]uint32{1, boolFlag(d.CastShadows), 0, 0},
		})
	}
	for i := range ambients {
		a := &ambients[i]
		if !a.Enabled {
			continue
		}
		if len(p.Ambient) >= caps.Ambient {
			over.Ambient++
			continue
		}
		p.Ambient = append(p.Ambient, AmbientUniform{
			ColorIntensity: [4]float32{a.Color.X(), a.Color.Y(), a.Color.Z(), a.Intensity},
			Flags:          [4]uint32{1, 0, 0, 0},
		})
	}
	return p, over
}

// Bytes encodes p as a counts header followed by fixed-size arrays sized
// by p.Caps. Unused slots are zero.
func (p *Packed) Bytes() []byte {
	buf := make([]byte, p.Caps.UniformSize())
	le := binary.LittleEndian
	//nolint:gosec // G115: counts are bounded by caps
	le.PutUint32(buf[0:], uint32(len(p.Directional)))
	//nolint:gosec // G115: see above
	le.PutUint32(buf[4:], uint32(len(p.Ambient)))

	off := headerSize
	for i := range p.Directional {
		d := &p.Directional[i]
		putFloats(buf[off:], d.Direction[:])
		putFloats(buf[off+16:], d.ColorIntensity[:])
		putUints(buf[off+32:], d.Flags[:])
		off += directionalSize
	}

	off = headerSize + max(p.Caps.Directional, 1)*directionalSize
	for i := range p.Ambient {
		a := &p.Ambient[i]
		putFloats(buf[off:], a.ColorIntensity[:])
		putUints(buf[off+16:], a.Flags[:])
		off += ambientSize
	}
	return buf
}

func boolFlag(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func putFloats(dst []byte, vals []float32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

func putUints(dst []byte, vals []uint32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(dst[i*4:], v)
	}
}
