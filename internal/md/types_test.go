package md

import (
	"errors"
	"math"
	"testing"
)

func TestCoords_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		coords Coords
		valid  bool
	}{
		{"empty", Coords{}, true},
		{"normal", Coords{{1, 2, 3}, {4, 5, 6}}, true},
		{"zeros", Zeros(3), true},
		{"with NaN", Coords{{1, math.NaN(), 0}}, false},
		{"with +Inf", Coords{{1, 0, math.Inf(1)}}, false},
		{"with -Inf", Coords{{math.Inf(-1), 0, 0}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coords.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestVec3_Norm(t *testing.T) {
	tests := []struct {
		v        Vec3
		expected float64
	}{
		{Vec3{3, 4, 0}, 5.0},
		{Vec3{1, 0, 0}, 1.0},
		{Vec3{0, 0, 0}, 0.0},
		{Vec3{2, 3, 6}, 7.0},
	}

	for _, tt := range tests {
		if got := tt.v.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.v, got, tt.expected)
		}
	}
}

func TestVec3_Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if sum := a.Add(b); sum != (Vec3{5, 7, 9}) {
		t.Errorf("Add failed: got %v", sum)
	}
	if diff := b.Sub(a); diff != (Vec3{3, 3, 3}) {
		t.Errorf("Sub failed: got %v", diff)
	}
	if scaled := a.Scale(2); scaled != (Vec3{2, 4, 6}) {
		t.Errorf("Scale failed: got %v", scaled)
	}
	if dot := a.Dot(b); dot != 32 {
		t.Errorf("Dot failed: got %v", dot)
	}
}

func TestCoords_Clone(t *testing.T) {
	c := Coords{{1, 2, 3}}
	clone := c.Clone()
	clone[0][0] = 99

	if c[0][0] != 1 {
		t.Error("Clone shares storage with the original")
	}
	if Coords(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestCoords_SumAndMaxAbsDiff(t *testing.T) {
	a := Coords{{1, 0, 0}, {-1, 2, 0}}
	if s := a.Sum(); s != (Vec3{0, 2, 0}) {
		t.Errorf("Sum = %v", s)
	}

	b := Coords{{1, 0, 0.5}, {-1, -1, 0}}
	if d := a.MaxAbsDiff(b); d != 3 {
		t.Errorf("MaxAbsDiff = %v, want 3", d)
	}
}

func TestSimulationError_Unwrap(t *testing.T) {
	err := &SimulationError{Step: 12, Wrapped: ErrUnstable}

	if !errors.Is(err, ErrUnstable) {
		t.Error("expected errors.Is to match ErrUnstable")
	}
	if err.Error() == "" {
		t.Error("expected message")
	}
}

func TestConfigf(t *testing.T) {
	err := Configf("sigma must be positive, got %g", -1.0)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
	if errors.Is(err, ErrShapeMismatch) {
		t.Error("unexpected ErrShapeMismatch match")
	}
}
