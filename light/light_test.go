package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDirectionalNormalized(t *testing.T) {
	d := NewDirectional(mgl32.Vec3{0, -10, 0}, mgl32.Vec3{1, 1, 1}, 1)
	if math.Abs(float64(d.Direction.Len())-1) > 1e-6 {
		t.Errorf("direction length = %v", d.Direction.Len())
	}
	d.SetDirection(mgl32.Vec3{})
	if d.Direction != (mgl32.Vec3{0, -1, 0}) {
		t.Errorf("zero direction = %v, want down", d.Direction)
	}
}

func TestAmbientDefault(t *testing.T) {
	a := NewAmbient()
	if a.Color != (mgl32.Vec3{0.1, 0.1, 0.15}) || a.Intensity != 0.4 || !a.Enabled {
		t.Errorf("NewAmbient() = %+v", a)
	}
}

func TestPackCapsFirstRegisteredWins(t *testing.T) {
	dirs := make([]Directional, 6)
	for i := range dirs {
		dirs[i] = NewDirectional(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 1, 1}, float32(i))
	}
	dirs[1].Enabled = false
	ambients := []Ambient{NewAmbient(), NewAmbient()}

	p, over := Pack(dirs, ambients, Caps{Directional: 4, Ambient: 1})
	if len(p.Directional) != 4 || len(p.Ambient) != 1 {
		t.Fatalf("packed %d/%d, want 4/1", len(p.Directional), len(p.Ambient))
	}
	// disabled light 1 is skipped, so 0,2,3,4 are kept and 5 overflows
	wantIntensity := []float32{0, 2, 3, 4}
	for i, w := range wantIntensity {
		if got := p.Directional[i].ColorIntensity[3]; got != w {
			t.Errorf("slot %d intensity = %v, want %v", i, got, w)
		}
	}
	if over.Directional != 1 || over.Ambient != 1 || over.Total() != 2 {
		t.Errorf("overflow = %+v", over)
	}
}

func TestPackedBytes(t *testing.T) {
	caps := Caps{Directional: 2, Ambient: 1}
	p, _ := Pack(
		[]Directional{NewDirectional(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 0, 0}, 2)},
		[]Ambient{NewAmbient()},
		caps,
	)
	b := p.Bytes()
	if len(b) != caps.UniformSize() || len(b) != 16+2*48+32 {
		t.Fatalf("len = %d, want %d", len(b), caps.UniformSize())
	}
	if n := binary.LittleEndian.Uint32(b[0:]); n != 1 {
		t.Errorf("directional count = %d", n)
	}
	if n := binary.LittleEndian.Uint32(b[4:]); n != 1 {
		t.Errorf("ambient count = %d", n)
	}
	ambientIntensity := math.Float32frombits(binary.LittleEndian.Uint32(b[16+2*48+12:]))
	if ambientIntensity != 0.4 {
		t.Errorf("ambient intensity = %v, want 0.4", ambientIntensity)
	}
}
