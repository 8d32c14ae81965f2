package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a stored value When read Then it is returned", func(t *testing.T) {
		m := NewMemory()
		if err := m.Set(ctx, "k", "v", time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := m.Get(ctx, "k")
		if err != nil || got != "v" {
			t.Errorf("Get = %q, %v; want v, nil", got, err)
		}
	})

	t.Run("Given an expired entry When read Then it is a miss", func(t *testing.T) {
		m := NewMemory()
		if err := m.Set(ctx, "k", "v", time.Nanosecond); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
		got, err := m.Get(ctx, "k")
		if err != nil || got != "" {
			t.Errorf("Get = %q, %v; want miss", got, err)
		}
	})

	t.Run("Given zero TTL When stored Then the entry never expires", func(t *testing.T) {
		m := NewMemory()
		if err := m.Set(ctx, "k", "v", 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if !m.Has("k") {
			t.Error("entry with zero TTL must persist")
		}
	})
}

func TestMemory_GetJSON(t *testing.T) {
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	t.Run("Given a JSON entry When read Then it is decoded with a hit", func(t *testing.T) {
		m := NewMemory()
		if err := m.SetJSON(ctx, "k", payload{Name: "abc"}, time.Minute); err != nil {
			t.Fatalf("SetJSON failed: %v", err)
		}
		var out payload
		hit, err := m.GetJSON(ctx, "k", &out)
		if err != nil || !hit || out.Name != "abc" {
			t.Errorf("GetJSON = %v, %v, %+v", hit, err, out)
		}
	})

	t.Run("Given a corrupt entry When read Then it is treated as a miss", func(t *testing.T) {
		m := NewMemory()
		if err := m.Set(ctx, "k", "{not json", time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		var out payload
		hit, err := m.GetJSON(ctx, "k", &out)
		if err != nil || hit {
			t.Errorf("corrupt entry must be a miss, got hit=%v err=%v", hit, err)
		}
	})
}

func TestMemory_DeletePattern(t *testing.T) {
	ctx := context.Background()

	t.Run("Given keys under two prefixes When one prefix is purged Then the other survives", func(t *testing.T) {
		m := NewMemory()
		for _, k := range []string{"review:metrics:a", "review:metrics:b", "review:status:c-1"} {
			if err := m.Set(ctx, k, "v", time.Minute); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
		}
		if err := m.DeletePattern(ctx, "review:metrics:*"); err != nil {
			t.Fatalf("DeletePattern failed: %v", err)
		}
		if m.Has("review:metrics:a") || m.Has("review:metrics:b") {
			t.Error("purged prefix keys must be gone")
		}
		if !m.Has("review:status:c-1") {
			t.Error("unrelated key must survive")
		}
	})
}

func TestMemory_Fail(t *testing.T) {
	ctx := context.Background()

	t.Run("Given Fail is set When any operation runs Then ErrUnavailable is returned", func(t *testing.T) {
		m := NewMemory()
		m.Fail = true

		if _, err := m.Get(ctx, "k"); err != ErrUnavailable {
			t.Errorf("Get err = %v", err)
		}
		if err := m.Set(ctx, "k", "v", time.Minute); err != ErrUnavailable {
			t.Errorf("Set err = %v", err)
		}
		if err := m.Delete(ctx, "k"); err != ErrUnavailable {
			t.Errorf("Delete err = %v", err)
		}
		if err := m.DeletePattern(ctx, "k*"); err != ErrUnavailable {
			t.Errorf("DeletePattern err = %v", err)
		}
		if err := m.Ping(ctx); err != ErrUnavailable {
			t.Errorf("Ping err = %v", err)
		}
	})
}
