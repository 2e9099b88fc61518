package lint

import (
	"context"
	"testing"
)

func TestFilterByDelta(t *testing.T) {
	files := []FileInfo{{Path: "a.html"}, {Path: "./src/b.jsx"}, {Path: "c.vue"}}

	if got := FilterByDelta(files, nil); len(got) != 3 {
		t.Errorf("nil set kept %d files, want 3", len(got))
	}

	got := FilterByDelta(files, ChangeSet{"src/b.jsx": true, "gone.html": true})
	if len(got) != 1 || got[0].Path != "./src/b.jsx" {
		t.Errorf("filtered = %+v", got)
	}

	if got := FilterByDelta(files, ChangeSet{}); len(got) != 0 {
		t.Errorf("empty set kept %+v", got)
	}
}

func TestDelta_NotARepository(t *testing.T) {
	d := &Delta{RootDir: t.TempDir()}
	set, err := d.ChangedFiles(context.Background())
	if err != nil || set != nil {
		t.Errorf("ChangedFiles = %v, %v; want nil, nil", set, err)
	}
}
