package pix

import (
	"sync"
	"testing"
)

func TestPoolGetCreates(t *testing.T) {
	p := NewPool(4)

	buf := p.Get(17, 3, FormatRGB8)
	if buf == nil {
		t.Fatal("Get returned nil")
	}
	if buf.Width() != 17 || buf.Height() != 3 || buf.Format() != FormatRGB8 {
		t.Errorf("got %dx%d %v, want 17x3 RGB8", buf.Width(), buf.Height(), buf.Format())
	}
}

func TestPoolGetInvalid(t *testing.T) {
	p := NewPool(4)
	if buf := p.Get(0, 3, FormatRGB8); buf != nil {
		t.Error("Get with invalid dimensions should return nil")
	}
}

func TestPoolReuse(t *testing.T) {
	p := NewPool(4)

	buf := p.Get(8, 8, FormatRGB8)
	buf.Data()[0] = 0xFF
	p.Put(buf)

	again := p.Get(8, 8, FormatRGB8)
	if again != buf {
		t.Error("expected the pooled buffer to be reused")
	}
	if again.Data()[0] != 0 {
		t.Error("reused buffer should be cleared")
	}
}

func TestPoolBucketsByShape(t *testing.T) {
	p := NewPool(4)

	a := p.Get(8, 8, FormatRGB8)
	p.Put(a)

	// Different dimensions and format must not reuse a's allocation.
	b := p.Get(8, 9, FormatRGB8)
	if b == a {
		t.Error("different dimensions should not share a bucket")
	}
	c := p.Get(8, 8, FormatRGBA8)
	if c == a {
		t.Error("different formats should not share a bucket")
	}
}

func TestPoolMaxPerBucket(t *testing.T) {
	p := NewPool(1)

	a := p.Get(4, 4, FormatRGB8)
	b := p.Get(4, 4, FormatRGB8)
	p.Put(a)
	p.Put(b) // bucket full, discarded

	first := p.Get(4, 4, FormatRGB8)
	second := p.Get(4, 4, FormatRGB8)
	if first != a {
		t.Error("expected first Get to reuse the retained buffer")
	}
	if second == b {
		t.Error("discarded buffer should not come back from the pool")
	}
}

func TestPoolPutNil(t *testing.T) {
	p := NewPool(4)
	// Must not panic.
	p.Put(nil)
}

func TestPoolConcurrent(t *testing.T) {
	p := NewPool(8)

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				buf := p.Get(16, 16, FormatRGB8)
				if buf == nil {
					t.Error("Get returned nil")
					return
				}
				buf.Data()[0] = 1
				p.Put(buf)
			}
		}()
	}
	wg.Wait()
}

func TestDefaultPool(t *testing.T) {
	buf := GetFromDefault(4, 4, FormatRGB8)
	if buf == nil {
		t.Fatal("GetFromDefault returned nil")
	}
	PutToDefault(buf)
}
