package theme

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/store"
)

type memKV struct {
	mu     sync.Mutex
	data   map[string]string
	setErr error
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

var _ store.KV = (*memKV)(nil)

type shown struct {
	message  string
	severity notify.Severity
	d        time.Duration
}

type recorder struct{ got []shown }

func (r *recorder) Notify(message string, severity notify.Severity, d time.Duration) (notify.Notification, error) {
	r.got = append(r.got, shown{message, severity, d})
	return notify.Notification{Message: message}, nil
}

func TestController_LoadDefaultsToLight(t *testing.T) {
	c := NewController(&memKV{}, nil, "")
	name, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Light, name)
	assert.False(t, c.Palette().Dark)
}

func TestController_LoadStored(t *testing.T) {
	kv := &memKV{data: map[string]string{StorageKey: "dark"}}
	c := NewController(kv, nil, Light)
	name, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Dark, name)
	assert.True(t, c.Palette().Dark)
}

func TestController_ToggleAlternatesPersistsAndNotifies(t *testing.T) {
	kv := &memKV{}
	rec := &recorder{}
	c := NewController(kv, rec, Light)
	ctx := context.Background()

	var changes []string
	c.OnChange(func(p *Palette) { changes = append(changes, p.Name) })

	name, err := c.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, Dark, name)
	assert.Equal(t, "dark", kv.data[StorageKey])

	name, err = c.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, Light, name)
	assert.Equal(t, "light", kv.data[StorageKey])

	assert.Equal(t, []string{Dark, Light}, changes)
	assert.Equal(t, []shown{
		{"Dark theme enabled", notify.SeverityInfo, 2 * time.Second},
		{"Light theme enabled", notify.SeverityInfo, 2 * time.Second},
	}, rec.got)
}

func TestController_TogglePersistFailureStillApplies(t *testing.T) {
	kv := &memKV{setErr: errors.New("disk full")}
	c := NewController(kv, nil, Light)

	name, err := c.Toggle(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Dark, name)
	assert.Equal(t, Dark, c.Current())
}

func TestController_WithSQLiteStore(t *testing.T) {
	kv, err := store.New(store.MemoryPath)
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()
	ctx := context.Background()

	_, err = NewController(kv, nil, Light).Toggle(ctx)
	require.NoError(t, err)

	reloaded := NewController(kv, nil, Light)
	name, err := reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Dark, name)
}
