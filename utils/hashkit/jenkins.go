package hashkit

import "hash"

// jenkins one-at-a-time
type sum32 uint32

func (s *sum32) BlockSize() int { return 1 }
func (s *sum32) Reset()         { *s = 0 }
func (s *sum32) Size() int      { return 4 }
func (s *sum32) Sum(in []byte) []byte {
	v := s.Sum32()
	return append(in, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// Sum32 applies the final avalanche to the running state.
func (s *sum32) Sum32() uint32 {
	return finalize(uint32(*s))
}

func (s *sum32) Write(data []byte) (int, error) {
	*s = sum32(mix(uint32(*s), data))
	return len(data), nil
}

func mix(h uint32, data []byte) uint32 {
	for _, b := range data {
		h += uint32(b)
		h += h << 10
		h ^= h >> 6
	}
	return h
}

func finalize(h uint32) uint32 {
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}

func NewJenkins32() hash.Hash32 {
	var s sum32
	return &s
}

func Jenkins(data []byte) uint32 {
	return finalize(mix(0, data))
}

func JenkinsString(data string) uint32 {
	var h uint32
	for i := 0; i < len(data); i++ {
		h += uint32(data[i])
		h += h << 10
		h ^= h >> 6
	}
	return finalize(h)
}
