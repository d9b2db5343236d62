package tui

import (
	"strings"
	"testing"

	"github.com/NewsNowIndy/Dashboard/internal/document"
)

func TestTabBarOpen(t *testing.T) {
	tb := NewTabBar()

	if !tb.Open("minutes", document.Project, 7) {
		t.Fatal("Open() = false, want true")
	}
	if !tb.Open("response", document.Attachment, 7) {
		t.Fatal("Open() = false, want true")
	}
	if tb.Count() != 2 {
		t.Errorf("Count() = %d, want 2 (same id, different sources)", tb.Count())
	}

	tb.Open("minutes", document.Project, 7)
	if tb.Count() != 2 {
		t.Errorf("reopening added a tab: Count() = %d", tb.Count())
	}
	if tab, _ := tb.Active(); tab.Kind != document.Project {
		t.Errorf("Active().Kind = %q, want project", tab.Kind)
	}
}

func TestTabBarLimit(t *testing.T) {
	tb := NewTabBar()
	for i := range defaultMaxTabs {
		if !tb.Open("doc", document.Project, int64(i)) {
			t.Fatalf("Open(%d) = false before the limit", i)
		}
	}
	if tb.Open("one too many", document.Project, 99) {
		t.Error("Open() past the limit = true, want false")
	}
	if !tb.Open("existing", document.Project, 3) {
		t.Error("Open() of an existing tab at the limit = false, want true")
	}
}

func TestTabBarCloseAndNext(t *testing.T) {
	tb := NewTabBar()
	tb.Open("a", document.Project, 1)
	tb.Open("b", document.Project, 2)
	tb.Open("c", document.Project, 3)

	tb.Next()
	if tab, _ := tb.Active(); tab.ID != 1 {
		t.Errorf("Next() from last wrapped to %d, want 1", tab.ID)
	}

	if !tb.Close() {
		t.Fatal("Close() = false with tabs remaining")
	}
	if tab, _ := tb.Active(); tab.ID != 2 {
		t.Errorf("after Close() active = %d, want 2", tab.ID)
	}

	tb.Close()
	if tb.Close() {
		t.Error("Close() of the last tab = true, want false")
	}
	if tb.HasTabs() {
		t.Error("HasTabs() = true after closing everything")
	}
	if tb.Close() {
		t.Error("Close() with no tabs = true")
	}
}

func TestTabBarRender(t *testing.T) {
	tb := NewTabBar()
	if got := tb.Render(); got != "" {
		t.Errorf("Render() with no tabs = %q, want empty", got)
	}

	tb.Open("a very long document title that will not fit", document.Project, 1)
	tb.SetTitle(document.Project, 1, "autopsy report")
	if got := tb.Render(); !strings.Contains(got, "autopsy report") {
		t.Errorf("Render() = %q, want updated title", got)
	}
}
