package modload

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestRegistry_CountsOnlyFreshLoads(t *testing.T) {
	r := newRegistry()

	r.recordLoaded("/lib/modules/6.1.0/zram.ko", "zram", true)
	r.recordLoaded("/lib/modules/6.1.0/zram.ko", "zram", false)
	r.recordLoaded("/mnt/other/zram.ko", "zram", false)

	if got := r.loadedCount(); got != 1 {
		t.Errorf("loadedCount() = %d, want 1", got)
	}
	if !r.isLoaded("zram") {
		t.Error("isLoaded(zram) = false, want true")
	}
	if got, want := r.loaded(), []string{"zram"}; !reflect.DeepEqual(got, want) {
		t.Errorf("loaded() = %v, want %v", got, want)
	}
}

func TestRegistry_ForgetLeavesPathsAndCount(t *testing.T) {
	r := newRegistry()
	r.recordLoaded("/lib/modules/6.1.0/zram.ko", "zram", true)

	r.forget("zram")

	if r.isLoaded("zram") {
		t.Error("isLoaded(zram) = true after forget")
	}
	if got := r.loadedCount(); got != 1 {
		t.Errorf("loadedCount() = %d after forget, want 1", got)
	}
	if _, ok := r.paths["/lib/modules/6.1.0/zram.ko"]; !ok {
		t.Error("forget must not drop the path record")
	}
}

func TestRegistry_ConcurrentRecords(t *testing.T) {
	r := newRegistry()

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("mod%02d", i)
			r.recordLoaded("/lib/modules/6.1.0/"+name+".ko", name, true)
		}()
	}
	wg.Wait()

	if got := r.loadedCount(); got != n {
		t.Errorf("loadedCount() = %d, want %d", got, n)
	}
	if got := len(r.loaded()); got != n {
		t.Errorf("len(loaded()) = %d, want %d", got, n)
	}
}
