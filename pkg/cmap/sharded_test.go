package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	m := New[string, int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if len(m.shards) != DefaultShardCount {
		t.Errorf("shard count = %d, want %d", len(m.shards), DefaultShardCount)
	}
}

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},  // invalid → default
		{-1, DefaultShardCount}, // invalid → default
		{3, DefaultShardCount},  // not power of 2 → default
		{1, 1},                  // power of 2
		{2, 2},                  // power of 2
		{4, 4},                  // power of 2
		{8, 8},                  // power of 2
		{16, 16},                // power of 2
		{32, 32},                // power of 2
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[string, int](tt.input)
			if len(m.shards) != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d",
					tt.input, len(m.shards), tt.expected)
			}
		})
	}
}

func TestSetAndGet(t *testing.T) {
	m := New[string, int]()

	m.Set("key1", 100)
	m.Set("key2", 200)

	val, ok := m.Get("key1")
	if !ok || val != 100 {
		t.Errorf("Get(key1) = (%d, %v), want (100, true)", val, ok)
	}

	val, ok = m.Get("key2")
	if !ok || val != 200 {
		t.Errorf("Get(key2) = (%d, %v), want (200, true)", val, ok)
	}

	val, ok = m.Get("nonexistent")
	if ok {
		t.Errorf("Get(nonexistent) = (%d, %v), want (0, false)", val, ok)
	}
}

func TestCount(t *testing.T) {
	m := New[string, int]()

	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}

	m.Set("key1", 1)
	m.Set("key2", 2)
	m.Set("key3", 3)

	if m.Count() != 3 {
		t.Errorf("Count() = %d, want 3", m.Count())
	}

	m.Set("key2", 20)
	if m.Count() != 3 {
		t.Errorf("Count() after overwrite = %d, want 3", m.Count())
	}
}

func TestOverwrite(t *testing.T) {
	m := New[string, int]()

	m.Set("key1", 100)
	m.Set("key1", 200)

	val, ok := m.Get("key1")
	if !ok || val != 200 {
		t.Errorf("Get(key1) = (%d, %v), want (200, true)", val, ok)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[string, int]()
	var wg sync.WaitGroup
	numGoroutines := 100
	numOps := 1000

	// Concurrent writes
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				m.Set(fmt.Sprintf("k%d", base*numOps+j), j)
			}
		}(i)
	}
	wg.Wait()

	if m.Count() != numGoroutines*numOps {
		t.Errorf("Count() = %d, want %d", m.Count(), numGoroutines*numOps)
	}

	// Concurrent reads
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				m.Get(fmt.Sprintf("k%d", base*numOps+j))
			}
		}(i)
	}
	wg.Wait()

	// Concurrent mixed operations
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				key := fmt.Sprintf("k%d", base*numOps+j)
				m.Set(key, j*2)
				m.Get(key)
				m.Swap(key, j)
			}
		}(i)
	}
	wg.Wait()
}

func TestShardCount(t *testing.T) {
	m := NewWithShards[string, int](8)
	if m.ShardCount() != 8 {
		t.Errorf("ShardCount() = %d, want 8", m.ShardCount())
	}
}

func TestStructValue(t *testing.T) {
	type Person struct {
		Name string
		Age  int
	}

	m := New[string, Person]()

	m.Set("person1", Person{Name: "Alice", Age: 30})
	m.Set("person2", Person{Name: "Bob", Age: 25})

	val, ok := m.Get("person1")
	if !ok || val.Name != "Alice" || val.Age != 30 {
		t.Errorf("Get(person1) = (%+v, %v), want ({Alice 30}, true)", val, ok)
	}
}

func TestSwap(t *testing.T) {
	m := New[string, string]()

	prev, ok := m.Swap("key", "first")
	if ok || prev != "" {
		t.Errorf("Swap(new key) = (%q, %v), want (\"\", false)", prev, ok)
	}

	prev, ok = m.Swap("key", "second")
	if !ok || prev != "first" {
		t.Errorf("Swap(existing key) = (%q, %v), want (\"first\", true)", prev, ok)
	}

	val, _ := m.Get("key")
	if val != "second" {
		t.Errorf("Get(key) = %q, want %q", val, "second")
	}
}

func TestSingleShard(t *testing.T) {
	m := NewWithShards[string, int](1)
	if m.ShardCount() != 1 {
		t.Fatalf("ShardCount() = %d, want 1", m.ShardCount())
	}

	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("key%d", i), i)
	}
	if m.Count() != 100 {
		t.Errorf("Count() = %d, want 100", m.Count())
	}
	if len(m.shards[0].items) != 100 {
		t.Errorf("single shard holds %d items, want 100", len(m.shards[0].items))
	}
}

func TestShardDistribution(t *testing.T) {
	m := NewWithShards[string, int](4)
	for i := 0; i < 1000; i++ {
		m.Set(fmt.Sprintf("key%d", i), i)
	}

	for i, s := range m.shards {
		if len(s.items) == 0 {
			t.Errorf("shard %d is empty after 1000 inserts", i)
		}
	}
}

func TestConcurrentSwap(t *testing.T) {
	m := NewWithShards[string, int](1)
	var wg sync.WaitGroup
	var mu sync.Mutex
	replaced := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			if _, ok := m.Swap("shared", v); ok {
				mu.Lock()
				replaced++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	// Exactly one writer found the key absent.
	if replaced != 49 {
		t.Errorf("replaced = %d, want 49", replaced)
	}
}
