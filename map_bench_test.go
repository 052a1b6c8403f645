package shmmap

import (
	"fmt"
	"testing"
)

func benchData(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("bench-key-%d", i)
	}
	return out
}

func BenchmarkMapGetSmall(b *testing.B) {
	benchmarkMapGet(b, benchData(8), 64)
}

func BenchmarkMapGet(b *testing.B) {
	benchmarkMapGet(b, benchData(128), 1024)
}

func BenchmarkMapGetLarge(b *testing.B) {
	benchmarkMapGet(b, benchData(128<<10), 256<<10)
}

func benchmarkMapGet(b *testing.B, data []string, capacity uint32) {
	b.ReportAllocs()
	m, err := New(capacity, 32, 32)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	defer m.Close()
	for _, k := range data {
		if err := m.Set(k, "v"); err != nil {
			b.Fatalf("Set(%s): %v", k, err)
		}
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = m.Get(data[i])
			i++
			if i >= len(data) {
				i = 0
			}
		}
	})
}

func BenchmarkMapSet(b *testing.B) {
	benchmarkMapSet(b, benchData(128), 1024)
}

func BenchmarkMapSetLarge(b *testing.B) {
	benchmarkMapSet(b, benchData(128<<10), 256<<10)
}

func benchmarkMapSet(b *testing.B, data []string, capacity uint32) {
	b.ReportAllocs()
	m, err := New(capacity, 32, 32)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	defer m.Close()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = m.Set(data[i], "v")
			i++
			if i >= len(data) {
				i = 0
			}
		}
	})
}

func BenchmarkMapKeys(b *testing.B) {
	m, err := New(1024, 32, 32)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	defer m.Close()
	for _, k := range benchData(512) {
		if err := m.Set(k, "v"); err != nil {
			b.Fatalf("Set(%s): %v", k, err)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for range m.Keys() {
		}
	}
}
