package qute

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModTimes struct {
	mu    sync.Mutex
	times map[string]time.Time
}

func (f *fakeModTimes) set(id string, t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.IsZero() {
		delete(f.times, id)
		return
	}
	f.times[id] = t
}

func (f *fakeModTimes) ModTime(_ context.Context, id string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.times[id]
	if !ok {
		return time.Time{}, NewTemplateNotFoundError(id)
	}
	return t, nil
}

func chtimes(s *FilesystemStorage, name string, t time.Time) error {
	return os.Chtimes(filepath.Join(s.Root(), name), t, t)
}

func TestReloader_Check(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeModTimes{times: map[string]time.Time{"a": start, "b": start}}

	e := MustNew()
	for _, id := range []string{"a", "b", "direct"} {
		_, err := e.PutTemplate(id, id)
		require.NoError(t, err)
	}
	r := NewReloader(e, src, time.Hour, nil)

	assert.Empty(t, r.Check(ctx), "first check only records")
	assert.Empty(t, r.Check(ctx))

	src.set("a", start.Add(time.Minute))
	assert.Equal(t, []string{"a"}, r.Check(ctx))
	assert.False(t, e.HasTemplate("a"))
	assert.True(t, e.HasTemplate("b"))
	assert.True(t, e.HasTemplate("direct"), "templates without stored source are kept")

	src.set("b", time.Time{})
	assert.Equal(t, []string{"b"}, r.Check(ctx))
	assert.False(t, e.HasTemplate("b"))
}

func TestReloader_FilesystemRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, storage.Save(ctx, &StoredTemplate{ID: "page", Source: "v1"}))

	e := MustNew(WithLocator(NewStorageLocator(storage)))
	r := NewReloader(e, storage, time.Hour, nil)

	out, err := e.Render(ctx, "page", nil)
	require.NoError(t, err)
	assert.Equal(t, "v1", out)
	r.Check(ctx)

	require.NoError(t, storage.Save(ctx, &StoredTemplate{ID: "page", Source: "v2"}))
	later := time.Now().Add(time.Minute)
	require.NoError(t, chtimes(storage, "page.html", later))

	assert.Equal(t, []string{"page"}, r.Check(ctx))
	out, err = e.Render(ctx, "page", nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", out)
}

func TestReloader_StartStop(t *testing.T) {
	start := time.Now()
	src := &fakeModTimes{times: map[string]time.Time{"a": start}}
	e := MustNew()
	_, err := e.PutTemplate("a", "a")
	require.NoError(t, err)

	r := NewReloader(e, src, 5*time.Millisecond, nil)
	r.Start(context.Background())
	r.Start(context.Background())

	// let the loop record the baseline
	time.Sleep(30 * time.Millisecond)
	src.set("a", start.Add(time.Second))

	assert.Eventually(t, func() bool { return !e.HasTemplate("a") }, time.Second, 5*time.Millisecond)
	r.Stop()
	r.Stop()
}

func TestReloader_DefaultInterval(t *testing.T) {
	r := NewReloader(MustNew(), &fakeModTimes{times: map[string]time.Time{}}, 0, nil)
	assert.Equal(t, DefaultReloadInterval, r.interval)
}
