package viewer

import (
	"strings"
	"testing"

	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/vfs"
)

func TestFor(t *testing.T) {
	loc := vfs.At(registry.Pictures, "Vacation")
	testCases := []struct {
		entry    vfs.FileEntry
		app      registry.AppID
		ok       bool
		fileName string
	}{
		{vfs.FileEntry{Name: "Beach.jpg", Kind: vfs.KindImage}, registry.AppPhotoViewer, true, "Beach.jpg"},
		{vfs.FileEntry{Name: "Report.pdf", Kind: vfs.KindDocument}, registry.AppDocViewer, true, "Report.pdf"},
		{vfs.FileEntry{Name: "Clip.mp4", Kind: vfs.KindVideo}, registry.AppMediaPlayer, true, "Clip.mp4"},
		{vfs.FileEntry{Name: "song.mp3", Kind: vfs.KindAudio}, registry.AppMediaPlayer, true, "song.mp3"},
		{vfs.FileEntry{Name: "Work", Kind: vfs.KindFolder}, "", false, ""},
	}

	for _, tc := range testCases {
		req, ok := For(loc, tc.entry)
		if ok != tc.ok || req.App != tc.app || req.Params.FileName != tc.fileName {
			t.Errorf("For(%q): expected (%s, %v, %q), got (%s, %v, %q)",
				tc.entry.Name, tc.app, tc.ok, tc.fileName, req.App, ok, req.Params.FileName)
		}
	}

	req, _ := For(loc, vfs.FileEntry{Name: "Beach.jpg", Kind: vfs.KindImage})
	if req.Params.Folder != "pictures/Vacation" {
		t.Errorf("photo viewer should receive the folder, got %q", req.Params.Folder)
	}
}

func TestForTextPassesNoteContent(t *testing.T) {
	e := vfs.FileEntry{Name: "Roadmap.md", Kind: vfs.KindText, Content: "# Roadmap 2025\n\n- search"}
	req, ok := For(vfs.Root(registry.Documents), e)
	if !ok || req.App != registry.AppNoteEditor {
		t.Fatalf("expected note editor, got %s (%v)", req.App, ok)
	}
	if req.Params.NoteContent != e.Content {
		t.Errorf("expected note content to be passed, got %q", req.Params.NoteContent)
	}
	if req.Params.Title != "Roadmap 2025" {
		t.Errorf("expected heading title, got %q", req.Params.Title)
	}
}

func TestNoteTitle(t *testing.T) {
	testCases := []struct {
		name, content, expected string
	}{
		{"draft.md", "# Launch *plan*\n\nbody", "Launch plan"},
		{"draft.md", "no heading here", "draft"},
		{"Notes.txt", "# not markdown", "Notes"},
		{"todo.txt", "", "todo"},
	}

	for _, tc := range testCases {
		if got := NoteTitle(tc.name, tc.content); got != tc.expected {
			t.Errorf("NoteTitle(%q): expected %q, got %q", tc.name, tc.expected, got)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("# Title\n\n- [x] done")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, `<h1 id="title">Title</h1>`) {
		t.Errorf("expected heading with id, got %s", html)
	}
	if !strings.Contains(html, `type="checkbox"`) {
		t.Errorf("expected GFM task list, got %s", html)
	}
}
