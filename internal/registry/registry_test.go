package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidepost-io/guidepost/internal/domain/placement"
)

type fakeElement struct {
	rect placement.Rect
}

func (f *fakeElement) Bounds() placement.Rect { return f.rect }

func TestRegistry_RegisterGet(t *testing.T) {
	r := New()
	el := &fakeElement{rect: placement.Rect{Top: 1, Left: 2, Width: 3, Height: 4}}

	r.Register("chat-input", el)

	got := r.Get("chat-input")
	require.NotNil(t, got)
	assert.Equal(t, el.rect, got.Bounds())
	assert.Nil(t, r.Get("missing"))
}

func TestRegistry_LastWriteWins(t *testing.T) {
	r := New()
	first := &fakeElement{rect: placement.Rect{Width: 1, Height: 1}}
	second := &fakeElement{rect: placement.Rect{Width: 9, Height: 9}}

	r.Register("chat-input", first)
	r.Register("chat-input", second)

	assert.Equal(t, second.rect, r.Get("chat-input").Bounds())
}

func TestRegistry_Unregister(t *testing.T) {
	r := New()
	r.Register("chat-input", &fakeElement{})

	r.Unregister("chat-input")

	assert.Nil(t, r.Get("chat-input"))
}

func TestRegistry_OnChange(t *testing.T) {
	r := New()

	var names []string
	unsub := r.OnChange(func(name string) { names = append(names, name) })

	r.Register("chat-input", &fakeElement{})
	r.Unregister("chat-input")
	// Removing an unknown name does not notify.
	r.Unregister("never-registered")

	assert.Equal(t, []string{"chat-input", "chat-input"}, names)

	unsub()
	r.Register("build-panel", &fakeElement{})
	assert.Len(t, names, 2)
}

func TestRegistry_CallbackMayUseRegistry(t *testing.T) {
	// Callbacks run outside the registry lock, so they may call back in
	// without deadlocking.
	r := New()

	var sawBounds placement.Rect
	r.OnChange(func(name string) {
		if el := r.Get(name); el != nil {
			sawBounds = el.Bounds()
		}
	})

	r.Register("chat-input", &fakeElement{rect: placement.Rect{Width: 5, Height: 5}})

	assert.Equal(t, placement.Rect{Width: 5, Height: 5}, sawBounds)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	r.OnChange(func(string) {})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			names := []string{"a", "b", "c"}
			name := names[n%len(names)]
			for range 100 {
				r.Register(name, &fakeElement{})
				r.Get(name)
				r.Unregister(name)
			}
		}(i)
	}
	wg.Wait()
}
