package engine

import (
	"testing"
)

func TestFloats(t *testing.T) {
	tests := []struct {
		name  string
		seed  string
		count int
	}{
		{name: "single float", seed: "test_seed", count: 1},
		{name: "multiple floats", seed: "test_seed", count: 8},
		{name: "round boundary", seed: "boundary", count: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			floats := Floats(tt.seed, tt.count)

			if len(floats) != tt.count {
				t.Errorf("Floats() returned %d floats, want %d", len(floats), tt.count)
			}

			for i, f := range floats {
				if f < 0 || f >= 1 {
					t.Errorf("Float %d is out of range [0, 1): %f", i, f)
				}
			}
		})
	}
}

func TestHashSourceDeterminism(t *testing.T) {
	floats1 := Floats("deterministic_test", 16)
	floats2 := Floats("deterministic_test", 16)

	for i := range floats1 {
		if floats1[i] != floats2[i] {
			t.Errorf("Float %d differs: %f != %f", i, floats1[i], floats2[i])
		}
	}
}

func TestHashSourceSeedSensitivity(t *testing.T) {
	floats1 := Floats("seed_a", 8)
	floats2 := Floats("seed_b", 8)

	same := true
	for i := range floats1 {
		if floats1[i] != floats2[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Different seeds produced identical streams")
	}
}

func TestHashSourceDistribution(t *testing.T) {
	const n = 10000
	s := NewHashSource("distribution_test")

	sum := 0.0
	for i := 0; i < n; i++ {
		f := s.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float out of range [0, 1): %f", f)
		}
		sum += f
	}

	mean := sum / n
	if mean < 0.45 || mean > 0.55 {
		t.Errorf("Mean of %d floats is %f, expected near 0.5", n, mean)
	}
}

func TestMulberry32Determinism(t *testing.T) {
	a := NewMulberry32(42)
	b := NewMulberry32(42)

	for i := 0; i < 100; i++ {
		va, vb := a.Next(), b.Next()
		if va != vb {
			t.Fatalf("Value %d differs: %d != %d", i, va, vb)
		}
	}
}

func TestMulberry32Float64Range(t *testing.T) {
	m := NewMulberry32(7)
	for i := 0; i < 1000; i++ {
		f := m.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float out of range [0, 1): %f", f)
		}
	}
}

func TestEntropySourceRange(t *testing.T) {
	var src EntropySource
	for i := 0; i < 1000; i++ {
		f := src.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float out of range [0, 1): %f", f)
		}
	}
}
