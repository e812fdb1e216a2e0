package engine

import (
	"crypto/hmac"
	cryptorand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source yields uniform random floats in [0, 1). A Die consumes one float
// per draw, so any Source implementation can back a simulation.
type Source interface {
	Float64() float64
}

// HashSource generates a deterministic float stream from an HMAC-SHA256
// byte stream keyed by a seed string. The same seed always reproduces the
// same sequence, which makes simulation runs replayable.
type HashSource struct {
	seed   string
	round  uint64
	pos    int
	buffer [32]byte
}

// NewHashSource creates a seeded deterministic source positioned at the
// start of its stream.
func NewHashSource(seed string) *HashSource {
	s := &HashSource{seed: seed}
	s.generateRound()
	return s
}

// next returns the next byte from the stream, advancing to a new HMAC
// round every 32 bytes.
func (s *HashSource) next() byte {
	if s.pos >= len(s.buffer) {
		s.round++
		s.pos = 0
		s.generateRound()
	}
	b := s.buffer[s.pos]
	s.pos++
	return b
}

// Float64 consumes exactly 4 bytes and maps them onto [0, 1).
func (s *HashSource) Float64() float64 {
	result := 0.0
	divider := 256.0
	for i := 0; i < 4; i++ {
		result += float64(s.next()) / divider
		divider *= 256
	}
	return result
}

func (s *HashSource) generateRound() {
	h := hmac.New(sha256.New, []byte(s.seed))
	fmt.Fprintf(h, "round:%d", s.round)
	copy(s.buffer[:], h.Sum(nil))
}

// Floats generates count floats from a fresh HashSource for the given seed.
func Floats(seed string, count int) []float64 {
	s := NewHashSource(seed)
	floats := make([]float64, count)
	for i := range floats {
		floats[i] = s.Float64()
	}
	return floats
}

// Mulberry32 is a small, fast PRNG with a 32-bit state. It is cheap to
// seed per run and trivially portable, which keeps reproducible fixtures
// easy to share.
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 creates a Mulberry32 PRNG with the given seed.
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Next returns the next random uint32.
func (m *Mulberry32) Next() uint32 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return t ^ (t >> 14)
}

// Float64 returns a random float64 in [0, 1).
func (m *Mulberry32) Float64() float64 {
	return float64(m.Next()) / 4294967296.0
}

// EntropySource draws from crypto/rand. It is the default source for dice
// when no seed is supplied.
type EntropySource struct{}

// Float64 reads 8 bytes of entropy and keeps the top 53 bits.
func (EntropySource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		// crypto/rand should never fail; math/rand is the fallback.
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}
