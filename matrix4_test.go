package videofx

import (
	"testing"

	"github.com/chewxy/math32"
)

const matrixEps = 1e-5

func matricesClose(a, b Matrix4) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > matrixEps {
			return false
		}
	}
	return true
}

func TestIdentity4Apply(t *testing.T) {
	x, y, z, w := Identity4().Apply(1, 2, 3, 1)
	if x != 1 || y != 2 || z != 3 || w != 1 {
		t.Errorf("Identity4().Apply(1,2,3,1) = (%v,%v,%v,%v)", x, y, z, w)
	}
}

func TestTranslate4(t *testing.T) {
	x, y, _, _ := Translate4(5, -3, 0).Apply(1, 1, 0, 1)
	if x != 6 || y != -2 {
		t.Errorf("translated point = (%v, %v), want (6, -2)", x, y)
	}
	// Direction vectors (w=0) are unaffected by translation.
	x, y, _, w := Translate4(5, -3, 0).Apply(1, 1, 0, 0)
	if x != 1 || y != 1 || w != 0 {
		t.Errorf("translated direction = (%v, %v, w=%v), want (1, 1, w=0)", x, y, w)
	}
}

func TestScale4(t *testing.T) {
	x, y, _, _ := Scale4(2, 0.5, 1).Apply(3, 4, 0, 1)
	if x != 6 || y != 2 {
		t.Errorf("scaled point = (%v, %v), want (6, 2)", x, y)
	}
}

func TestRotateZ4(t *testing.T) {
	// 90 degrees counter-clockwise maps +x onto +y.
	x, y, _, _ := RotateZ4(90).Apply(1, 0, 0, 1)
	if math32.Abs(x) > matrixEps || math32.Abs(y-1) > matrixEps {
		t.Errorf("RotateZ4(90).Apply(1,0) = (%v, %v), want (0, 1)", x, y)
	}
	// Opposite rotations cancel.
	if got := RotateZ4(37).Mul(RotateZ4(-37)); !matricesClose(got, Identity4()) {
		t.Errorf("RotateZ4(37)*RotateZ4(-37) = %v, want identity", got)
	}
}

func TestMatrix4MulOrder(t *testing.T) {
	// m.Mul(n) applies n first: translate then scale doubles the offset.
	m := Scale4(2, 2, 1).Mul(Translate4(1, 0, 0))
	x, _, _, _ := m.Apply(0, 0, 0, 1)
	if x != 2 {
		t.Errorf("scale-after-translate origin x = %v, want 2", x)
	}
	// The other order leaves the offset unscaled.
	m = Translate4(1, 0, 0).Mul(Scale4(2, 2, 1))
	x, _, _, _ = m.Apply(0, 0, 0, 1)
	if x != 1 {
		t.Errorf("translate-after-scale origin x = %v, want 1", x)
	}
}
