package autosave

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/taskdesk/internal/store"
)

func newKV(t *testing.T) *store.SQLite {
	t.Helper()
	kv, err := store.New(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKey(t *testing.T) {
	assert.Equal(t, "autosave-task-form-title", Key("task-form", "title"))
}

func TestRestoreFillsOnlyEmptyFields(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, Key("task-form", "title"), "saved title"))
	require.NoError(t, kv.Set(ctx, Key("task-form", "description"), "saved desc"))

	a := New(kv, "task-form", time.Second)
	fields := Fields{"title": "", "description": "typed", "priority": ""}
	restored, err := a.Restore(ctx, fields)
	require.NoError(t, err)

	assert.Equal(t, []string{"title"}, restored)
	assert.Equal(t, Fields{"title": "saved title", "description": "typed", "priority": ""}, fields)
}

func TestChangedIsDebounced(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()

	var saves atomic.Int32
	a := New(kv, "task-form", 40*time.Millisecond)
	a.OnSaved = func(err error) {
		assert.NoError(t, err)
		saves.Add(1)
	}

	a.Changed(Fields{"title": "W"})
	a.Changed(Fields{"title": "Wr"})
	fields := Fields{"title": "Write", "description": ""}
	a.Changed(fields)
	fields["title"] = "mutated after Changed"

	require.Eventually(t, func() bool { return saves.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), saves.Load())

	v, ok, err := kv.Get(ctx, Key("task-form", "title"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Write", v)

	_, ok, _ = kv.Get(ctx, Key("task-form", "description"))
	assert.False(t, ok, "empty fields are not saved")
}

func TestClearRemovesDraftAndCancelsPendingSave(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()
	a := New(kv, "task-form", 30*time.Millisecond)

	require.NoError(t, a.Save(ctx, Fields{"title": "Draft", "description": "Body"}))
	a.Changed(Fields{"title": "Newer"})
	require.NoError(t, a.Clear(ctx, "title", "description"))

	time.Sleep(60 * time.Millisecond)
	keys, err := kv.Keys(ctx, "autosave-task-form-")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFlush(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()
	a := New(kv, "task-form", time.Hour)

	assert.False(t, a.Flush())
	a.Changed(Fields{"title": "Now"})
	assert.True(t, a.Flush())

	v, _, _ := kv.Get(ctx, Key("task-form", "title"))
	assert.Equal(t, "Now", v)
}

func TestNewGeneratesFormID(t *testing.T) {
	a := New(newKV(t), "", 0)
	assert.Regexp(t, `^form-\d+$`, a.FormID())
}

func TestDebouncer(t *testing.T) {
	var mu sync.Mutex
	var got []string
	d := NewDebouncer(30*time.Millisecond, func(v string) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})

	d.Trigger("a")
	d.Trigger("ab")
	assert.True(t, d.Pending())
	require.Eventually(t, func() bool { return !d.Pending() }, time.Second, 5*time.Millisecond)

	d.Trigger("abc")
	assert.True(t, d.Stop())
	assert.False(t, d.Stop())
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ab"}, got)
}
