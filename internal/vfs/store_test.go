package vfs

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/trash"
)

func names(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func TestShortcutResolvesToCategoryRoot(t *testing.T) {
	s := NewStore(Options{})
	home := Root(registry.Home)

	docs, ok := s.Entry(home, "Documents")
	if !ok {
		t.Fatal("home should contain a Documents shortcut")
	}
	if docs.ChildCount != 6 {
		t.Errorf("shortcut child count: expected 6, got %d", docs.ChildCount)
	}

	loc, ok := s.ResolveChildLocation(home, docs)
	if !ok {
		t.Fatal("expected shortcut to resolve")
	}
	if !loc.Equal(Root(registry.Documents)) {
		t.Errorf("expected documents root, got %s", loc)
	}

	listing := s.List(loc, "")
	if len(listing) != 6 {
		t.Fatalf("expected 6 entries in documents, got %d", len(listing))
	}
	if _, ok := s.Entry(loc, "Report_2024.pdf"); !ok {
		t.Error("documents should contain Report_2024.pdf")
	}

	work, _ := s.Entry(loc, "Work")
	if work.ChildCount != 4 {
		t.Errorf("Work child count: expected 4, got %d", work.ChildCount)
	}
	workLoc, ok := s.ResolveChildLocation(loc, work)
	if !ok || workLoc.Key() != "documents/Work" {
		t.Errorf("expected documents/Work, got %s (%v)", workLoc, ok)
	}
	if n := len(s.List(workLoc, "")); n != 4 {
		t.Errorf("expected 4 entries in Work, got %d", n)
	}

	file, _ := s.Entry(loc, "Budget.xlsx")
	if _, ok := s.ResolveChildLocation(loc, file); ok {
		t.Error("files should not resolve to a location")
	}
}

func TestListFilter(t *testing.T) {
	s := NewStore(Options{})
	got := names(s.List(Root(registry.Documents), "RE"))
	expected := []string{"Report_2024.pdf", "Resume.docx"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}

	if got := s.List(At(registry.Documents, "Nope"), ""); len(got) != 0 {
		t.Errorf("unknown location should be empty, got %v", got)
	}
}

func TestMoveManyToTrashAndPurgeAll(t *testing.T) {
	s := NewStore(Options{})
	docs := Root(registry.Documents)

	n, err := s.MoveManyToTrash(docs, []string{"Budget.xlsx", "Report_2024.pdf"})
	if err != nil {
		t.Fatalf("MoveManyToTrash: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 moved, got %d", n)
	}

	expected := []string{"Work", "Personal", "Meeting Notes.txt", "Resume.docx"}
	if got := s.Names(docs); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
	if s.TrashLen() != 2 {
		t.Errorf("expected 2 items in trash, got %d", s.TrashLen())
	}
	trashNames := s.Names(Root(registry.Trash))
	if !reflect.DeepEqual(trashNames, []string{"Report_2024.pdf", "Budget.xlsx"}) {
		t.Errorf("trash keeps bucket order, got %v", trashNames)
	}

	if purged := s.PurgeAll(); purged != 2 {
		t.Errorf("expected 2 purged, got %d", purged)
	}
	if s.TrashLen() != 0 {
		t.Errorf("expected empty trash, got %d", s.TrashLen())
	}
	if n := s.Count(docs); n != 4 {
		t.Errorf("purge should not touch live entries, got %d", n)
	}
}

func TestTrashRestoreRoundTrip(t *testing.T) {
	s := NewStore(Options{})
	docs := Root(registry.Documents)
	before := sorted(s.Names(docs))

	if err := s.MoveToTrash(docs, "Resume.docx"); err != nil {
		t.Fatalf("MoveToTrash: %v", err)
	}
	if _, ok := s.Entry(docs, "Resume.docx"); ok {
		t.Error("trashed entry should leave its location")
	}

	items := s.TrashEntries()
	if len(items) != 1 || !items[0].Origin.Equal(docs) {
		t.Fatalf("expected one item from documents, got %+v", items)
	}

	loc, err := s.Restore("Resume.docx")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !loc.Equal(docs) {
		t.Errorf("expected restore to documents, got %s", loc)
	}
	if got := sorted(s.Names(docs)); !reflect.DeepEqual(got, before) {
		t.Errorf("expected %v after restore, got %v", before, got)
	}
	if s.TrashLen() != 0 {
		t.Errorf("expected empty trash, got %d", s.TrashLen())
	}

	if _, err := s.Restore("Resume.docx"); !errors.Is(err, trash.ErrNotInTrash) {
		t.Errorf("second restore: expected ErrNotInTrash, got %v", err)
	}
}

func TestTrashFolderCarriesSubtree(t *testing.T) {
	s := NewStore(Options{})
	docs := Root(registry.Documents)

	if err := s.MoveToTrash(docs, "Work"); err != nil {
		t.Fatalf("MoveToTrash: %v", err)
	}
	if n := s.Count(At(registry.Documents, "Work")); n != 0 {
		t.Errorf("descendants should leave with the folder, got %d", n)
	}
	trashed, ok := s.Entry(Root(registry.Trash), "Work")
	if !ok || trashed.ChildCount != 4 {
		t.Errorf("trashed folder should report 4 children, got %+v", trashed)
	}

	if _, err := s.Restore("Work"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if n := s.Count(At(registry.Documents, "Work")); n != 4 {
		t.Errorf("descendants should come back, got %d", n)
	}
}

func TestTrashedFoldersWithSameNameCountOwnChildren(t *testing.T) {
	s := NewStore(Options{})
	docs := Root(registry.Documents)

	if err := s.MoveToTrash(docs, "Work"); err != nil {
		t.Fatal(err)
	}
	folder, err := s.CreateFolder(docs)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Rename(docs, folder.Name, "Work"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateFile(At(registry.Documents, "Work")); err != nil {
		t.Fatal(err)
	}
	if err := s.MoveToTrash(docs, "Work"); err != nil {
		t.Fatal(err)
	}

	var counts []int
	for _, e := range s.List(Root(registry.Trash), "") {
		counts = append(counts, e.ChildCount)
	}
	if !reflect.DeepEqual(counts, []int{4, 1}) {
		t.Errorf("List counts: expected [4 1], got %v", counts)
	}

	counts = counts[:0]
	for _, e := range s.TrashEntries() {
		counts = append(counts, e.ChildCount)
	}
	if !reflect.DeepEqual(counts, []int{4, 1}) {
		t.Errorf("TrashEntries counts: expected [4 1], got %v", counts)
	}
}

func TestRestoreTo(t *testing.T) {
	s := NewStore(Options{})
	if err := s.MoveToTrash(Root(registry.Downloads), "song.mp3"); err != nil {
		t.Fatal(err)
	}
	dst := At(registry.Home, "Music")
	loc, err := s.RestoreTo("song.mp3", dst)
	if err != nil {
		t.Fatalf("RestoreTo: %v", err)
	}
	if !loc.Equal(dst) {
		t.Errorf("expected %s, got %s", dst, loc)
	}
	if _, ok := s.Entry(dst, "song.mp3"); !ok {
		t.Error("entry should be restored into home/Music")
	}
	if _, err := s.RestoreTo("song.mp3", Root(registry.Trash)); !errors.Is(err, ErrInTrash) {
		t.Errorf("expected ErrInTrash, got %v", err)
	}
}

func TestRestoreManyAndAll(t *testing.T) {
	s := NewStore(Options{})
	dl := Root(registry.Downloads)
	if _, err := s.MoveManyToTrash(dl, s.Names(dl)); err != nil {
		t.Fatal(err)
	}
	if s.Count(dl) != 0 || s.TrashLen() != 4 {
		t.Fatalf("expected everything in trash, live=%d trash=%d", s.Count(dl), s.TrashLen())
	}

	if n := s.RestoreMany([]string{"song.mp3", "missing.txt"}); n != 1 {
		t.Errorf("expected 1 restored, got %d", n)
	}
	if n := s.RestoreAll(); n != 3 {
		t.Errorf("expected 3 restored, got %d", n)
	}
	if s.Count(dl) != 4 || s.TrashLen() != 0 {
		t.Errorf("expected all restored, live=%d trash=%d", s.Count(dl), s.TrashLen())
	}
}

func TestCreateDuplicatesUnderPermitPolicy(t *testing.T) {
	s := NewStore(Options{})
	desk := Root(registry.Desktop)

	for i := 0; i < 2; i++ {
		e, err := s.CreateFolder(desk)
		if err != nil {
			t.Fatal(err)
		}
		if e.Name != DefaultFolderName || e.ModifiedLabel != JustNow {
			t.Errorf("unexpected entry %+v", e)
		}
	}
	f, err := s.CreateFile(desk)
	if err != nil {
		t.Fatal(err)
	}
	if f.Kind != KindText || f.SizeLabel != "0 B" {
		t.Errorf("unexpected file entry %+v", f)
	}

	got := s.Names(desk)
	expected := []string{"Notes.txt", "Project", "wallpaper.jpg", "New Folder", "New Folder", "Untitled.txt"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestCreateSuffixesUnderUniquePolicy(t *testing.T) {
	s := NewStore(Options{Policy: UniqueNames})
	desk := Root(registry.Desktop)

	var got []string
	for i := 0; i < 3; i++ {
		e, _ := s.CreateFile(desk)
		got = append(got, e.Name)
	}
	expected := []string{"Untitled.txt", "Untitled (2).txt", "Untitled (3).txt"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}

	a, _ := s.CreateFolder(desk)
	b, _ := s.CreateFolder(desk)
	if a.Name != "New Folder" || b.Name != "New Folder (2)" {
		t.Errorf("unexpected folder names %q, %q", a.Name, b.Name)
	}

	if err := s.Rename(desk, "Untitled (2).txt", "Notes.txt"); !errors.Is(err, ErrNameInUse) {
		t.Errorf("expected ErrNameInUse, got %v", err)
	}
}

func TestRename(t *testing.T) {
	s := NewStore(Options{})
	docs := Root(registry.Documents)

	if err := s.Rename(docs, "Budget.xlsx", ""); err != nil {
		t.Errorf("empty rename should be a no-op, got %v", err)
	}
	if err := s.Rename(docs, "Budget.xlsx", "Budget.xlsx"); err != nil {
		t.Errorf("unchanged rename should be a no-op, got %v", err)
	}
	if err := s.Rename(docs, "Budget.xlsx", "Budget 2025.xlsx"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	e, ok := s.Entry(docs, "Budget 2025.xlsx")
	if !ok || e.ModifiedLabel != JustNow {
		t.Errorf("expected renamed entry with bumped label, got %+v", e)
	}

	if err := s.Rename(docs, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Rename(docs, "Resume.docx", "a/b"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
	if err := s.Rename(Root(registry.Trash), "x", "y"); !errors.Is(err, ErrInTrash) {
		t.Errorf("expected ErrInTrash, got %v", err)
	}
}

func TestRenameFolderMovesDescendants(t *testing.T) {
	s := NewStore(Options{})
	docs := Root(registry.Documents)

	if err := s.Rename(docs, "Work", "Office"); err != nil {
		t.Fatal(err)
	}
	if n := s.Count(At(registry.Documents, "Office")); n != 4 {
		t.Errorf("expected 4 entries under Office, got %d", n)
	}
	if n := s.Count(At(registry.Documents, "Work")); n != 0 {
		t.Errorf("old key should be empty, got %d", n)
	}
}

func TestMove(t *testing.T) {
	s := NewStore(Options{})
	docs := Root(registry.Documents)
	work := At(registry.Documents, "Work")

	if err := s.Move(docs, "Personal", work); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if n := s.Count(At(registry.Documents, "Work", "Personal")); n != 2 {
		t.Errorf("expected 2 entries under Work/Personal, got %d", n)
	}

	if err := s.Move(docs, "Work", At(registry.Documents, "Work", "Personal")); !errors.Is(err, ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
	if err := s.Move(docs, "missing", work); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Move(docs, "Budget.xlsx", Root(registry.Trash)); !errors.Is(err, ErrInTrash) {
		t.Errorf("expected ErrInTrash, got %v", err)
	}
}

func TestTrashLocationRejectsMutations(t *testing.T) {
	s := NewStore(Options{})
	tr := Root(registry.Trash)
	if _, err := s.CreateFolder(tr); !errors.Is(err, ErrInTrash) {
		t.Errorf("CreateFolder: expected ErrInTrash, got %v", err)
	}
	if err := s.MoveToTrash(tr, "x"); !errors.Is(err, ErrInTrash) {
		t.Errorf("MoveToTrash: expected ErrInTrash, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	s := NewStore(Options{})
	got := names(s.Search(Root(registry.Documents), "kind:text"))
	if !reflect.DeepEqual(got, []string{"Meeting Notes.txt"}) {
		t.Errorf("kind search: got %v", got)
	}
	got = names(s.Search(Root(registry.Documents), "contents:hiring"))
	if !reflect.DeepEqual(got, []string{"Meeting Notes.txt"}) {
		t.Errorf("contents search: got %v", got)
	}
}

func TestResetDiscardsMutations(t *testing.T) {
	s := NewStore(Options{})
	docs := Root(registry.Documents)
	s.MoveToTrash(docs, "Budget.xlsx")
	s.CreateFolder(docs)

	s.Reset()
	if n := s.Count(docs); n != 6 {
		t.Errorf("expected 6 entries after reset, got %d", n)
	}
	if s.TrashLen() != 0 {
		t.Errorf("expected empty trash after reset, got %d", s.TrashLen())
	}
}

func TestMountReplacesCategory(t *testing.T) {
	s := NewStore(Options{})
	tree := Tree{
		"usb":         {folder("Backups", "today")},
		"usb/Backups": {file("disk.img", 1024, "today", false)},
		"documents":   {file("stray.txt", 1, "today", false)},
	}
	if err := s.Mount(registry.USB, tree); err != nil {
		t.Fatal(err)
	}
	if got := s.Names(Root(registry.USB)); !reflect.DeepEqual(got, []string{"Backups"}) {
		t.Errorf("expected mounted usb root, got %v", got)
	}
	if _, ok := s.Entry(Root(registry.Documents), "stray.txt"); ok {
		t.Error("keys outside the mounted category must be ignored")
	}

	s.MoveToTrash(Root(registry.USB), "Backups")
	s.Reset()
	if got := s.Names(Root(registry.USB)); !reflect.DeepEqual(got, []string{"Backups"}) {
		t.Errorf("reset should restore the mount, got %v", got)
	}

	if err := s.Mount(registry.Trash, tree); !errors.Is(err, ErrInTrash) {
		t.Errorf("expected ErrInTrash, got %v", err)
	}
}

func TestParseNamePolicy(t *testing.T) {
	testCases := []struct {
		input    string
		expected NamePolicy
		ok       bool
	}{
		{"Unique", UniqueNames, true},
		{" permit ", PermitDuplicates, true},
		{"", PermitDuplicates, true},
		{"sometimes", PermitDuplicates, false},
	}

	for _, tc := range testCases {
		got, err := ParseNamePolicy(tc.input)
		if (err == nil) != tc.ok || got != tc.expected {
			t.Errorf("ParseNamePolicy(%q): expected (%v, ok=%v), got (%v, %v)", tc.input, tc.expected, tc.ok, got, err)
		}
	}
}
