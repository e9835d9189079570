package pool

import "testing"

func TestGetLength(t *testing.T) {
	for _, n := range []int{1, 255, 256, 1000, 70000} {
		b := Get(n)
		if len(b) != n {
			t.Errorf("Get(%d): len = %d", n, len(b))
		}
		Put(b)
	}
}

func TestGetAfterPutReusesCapacity(t *testing.T) {
	b := Get(Size4K)
	c := cap(b)
	Put(b)
	b2 := Get(Size4K)
	if cap(b2) < c {
		t.Errorf("recycled capacity %d below %d", cap(b2), c)
	}
}

func TestBucketIndexOrdering(t *testing.T) {
	prev := -1
	for _, n := range []int{1, Size256, Size256 + 1, Size1K, Size4K, Size16K, Size64K, Size256K + 1} {
		idx := bucketIndex(n)
		if idx < prev {
			t.Errorf("bucketIndex(%d) = %d below previous %d", n, idx, prev)
		}
		prev = idx
	}
}
