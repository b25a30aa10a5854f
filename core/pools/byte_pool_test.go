package pools

import "testing"

func TestBytePoolSizes(t *testing.T) {
	bp := NewBytePool()

	tests := []struct {
		request int
		wantCap int
	}{
		{1, 512},
		{512, 512},
		{513, 2048},
		{8192, 8192},
		{32768, 32768},
	}

	for _, tt := range tests {
		buf := bp.Get(tt.request)
		if len(buf) != tt.request {
			t.Errorf("Get(%d): len = %d", tt.request, len(buf))
		}
		if cap(buf) != tt.wantCap {
			t.Errorf("Get(%d): cap = %d, want %d", tt.request, cap(buf), tt.wantCap)
		}
		bp.Put(buf)
	}
}

func TestBytePoolOversized(t *testing.T) {
	bp := NewBytePool()

	buf := bp.Get(100000)
	if len(buf) != 100000 {
		t.Errorf("len = %d", len(buf))
	}
	// 超出分级的缓冲区交给 GC，Put 不应崩溃
	bp.Put(buf)
}

func TestGlobalPool(t *testing.T) {
	buf := GetBytes(1024)
	if len(buf) != 1024 {
		t.Errorf("len = %d", len(buf))
	}
	PutBytes(buf)
}

func BenchmarkBytePool(b *testing.B) {
	bp := NewBytePool()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := bp.Get(2048)
		bp.Put(buf)
	}
}
