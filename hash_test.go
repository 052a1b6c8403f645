package shmmap

import "testing"

func TestHashKeyStableAcrossCalls(t *testing.T) {
	a := hashKey("the quick brown fox")
	b := hashKey("the quick brown fox")
	if a != b {
		t.Fatalf("hashKey not stable: %d != %d", a, b)
	}
}

func TestHashKeyDistinguishesKeys(t *testing.T) {
	seen := map[uint32]string{}
	collisions := 0
	for i := 0; i < 1000; i++ {
		k := randomishKey(i)
		h := hashKey(k)
		if prev, ok := seen[h]; ok && prev != k {
			collisions++
		}
		seen[h] = k
	}
	// A well-mixing 32-bit hash over 1000 short distinct strings should
	// collide rarely; this is a sanity check, not a proof of uniformity.
	if collisions > 50 {
		t.Fatalf("hashKey: %d collisions over 1000 keys, suspiciously high", collisions)
	}
}

func randomishKey(i int) string {
	r := []rune{rune(i & 0xff), rune(i >> 8), rune('a' + i%26), rune('A' + (i*7)%26)}
	return string(r)
}

func TestSlotForReducesIntoRange(t *testing.T) {
	for capacity := uint32(1); capacity < 64; capacity++ {
		for i := 0; i < 200; i++ {
			h := hashKey(randomishKey(i))
			s := slotFor(h, capacity)
			if s >= capacity {
				t.Fatalf("slotFor(%d, %d) = %d, out of range", h, capacity, s)
			}
		}
	}
}

func TestHashUnitsEmpty(t *testing.T) {
	// Must not panic or index out of range on the empty sequence.
	_ = hashUnits(nil)
}
