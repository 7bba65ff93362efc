package math

import (
	"math"
	"testing"
)

func approx(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	if got, want := v1.Add(v2), NewVec3(5, 7, 9); got != want {
		t.Errorf("Add: expected %v, got %v", want, got)
	}
	if got, want := v2.Sub(v1), NewVec3(3, 3, 3); got != want {
		t.Errorf("Sub: expected %v, got %v", want, got)
	}
	if got, want := v1.Dot(v2), float32(32); got != want {
		t.Errorf("Dot: expected %v, got %v", want, got)
	}

	// Right x Up = Front in a right-handed system
	if cross := NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)); cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize(zero): expected zero vector, got %v", got)
	}
	n := NewVec3(0, 3, 4).Normalize()
	if !approx(n.Length(), 1, 1e-6) {
		t.Errorf("Normalize: expected length 1, got %v", n.Length())
	}
}

func TestVec2Rotate(t *testing.T) {
	r := NewVec2(1, 0).Rotate(float32(math.Pi / 2))
	if !approx(r.X, 0, 1e-6) || !approx(r.Y, 1, 1e-6) {
		t.Errorf("Rotate 90deg: expected (0,1), got %v", r)
	}
}

func TestVec2InUnitSquare(t *testing.T) {
	tests := []struct {
		v    Vec2
		want bool
	}{
		{NewVec2(0, 0), true},
		{NewVec2(1, 1), true},
		{NewVec2(0.5, 0.25), true},
		{NewVec2(-0.001, 0.5), false},
		{NewVec2(0.5, 1.001), false},
	}
	for _, tt := range tests {
		if got := tt.v.InUnitSquare(); got != tt.want {
			t.Errorf("InUnitSquare(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestVec4DivW(t *testing.T) {
	v := NewVec4(2, 4, 6, 2).DivW()
	if v != NewVec4(1, 2, 3, 1) {
		t.Errorf("DivW: expected (1,2,3,1), got %v", v)
	}
	z := NewVec4(2, 4, 6, 0)
	if z.DivW() != z {
		t.Errorf("DivW with w=0 should be a no-op, got %v", z.DivW())
	}
}

// mul is the row-vector matrix product a * b.
func mul(a, b Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				r[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return r
}

func TestMat4InverseScale(t *testing.T) {
	m := Mat4Identity()
	m[0][0], m[1][1], m[2][2] = 2, 4, 8
	inv := m.Inverse()
	want := Mat4Identity()
	want[0][0], want[1][1], want[2][2] = 0.5, 0.25, 0.125
	if inv != want {
		t.Errorf("Inverse: expected %v, got %v", want, inv)
	}
}

func TestMat4InversePerspective(t *testing.T) {
	proj := Mat4Perspective(float32(math.Pi/3), 16.0/9.0, 0.1, 100)
	id := mul(proj, proj.Inverse())

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if !approx(id[i][j], want, 1e-4) {
				t.Errorf("P*P^-1 [%d][%d]: expected %v, got %v", i, j, want, id[i][j])
			}
		}
	}
}

func TestMat4PerspectiveRoundTrip(t *testing.T) {
	proj := Mat4Perspective(float32(math.Pi/4), 1, 0.5, 50)
	inv := proj.Inverse()

	p := NewVec4(0.3, -0.2, -4, 1)
	clip := p.MulMat(proj).DivW()
	back := clip.MulMat(inv).DivW()

	if !approx(back.X, p.X, 1e-4) || !approx(back.Y, p.Y, 1e-4) || !approx(back.Z, p.Z, 1e-3) {
		t.Errorf("round trip: expected %v, got %v", p, back)
	}
}

func TestMat4SingularInverse(t *testing.T) {
	var zero Mat4
	if got := zero.Inverse(); got != Mat4Identity() {
		t.Errorf("Inverse of singular matrix: expected identity, got %v", got)
	}
}

func TestScalarHelpers(t *testing.T) {
	if Saturate(-1) != 0 || Saturate(2) != 1 || Saturate(0.25) != 0.25 {
		t.Error("Saturate did not clamp to [0,1]")
	}
	if Pow(0, 0) != 1 {
		t.Errorf("Pow(0,0): expected 1, got %v", Pow(0, 0))
	}
	if Max(1, 2) != 2 {
		t.Error("Max(1,2) != 2")
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Mat4Perspective(1, 1.5, 0.1, 100)
	for i := 0; i < b.N; i++ {
		_ = m.Inverse()
	}
}
