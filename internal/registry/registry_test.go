package registry

import "testing"

func TestAppIDValid(t *testing.T) {
	for _, id := range Apps() {
		if !id.Valid() {
			t.Errorf("AppID(%q).Valid(): expected true", id)
		}
	}
	if AppID("solitaire").Valid() {
		t.Error("unregistered app should not be valid")
	}
}

func TestIsLauncher(t *testing.T) {
	testCases := []struct {
		id       AppID
		expected bool
	}{
		{AppLauncher, true},
		{AppGrid, true},
		{AppFiles, false},
		{AppTrash, false},
	}

	for _, tc := range testCases {
		if got := tc.id.IsLauncher(); got != tc.expected {
			t.Errorf("AppID(%q).IsLauncher(): expected %v, got %v", tc.id, tc.expected, got)
		}
	}
}

func TestParseCategory(t *testing.T) {
	testCases := []struct {
		input    string
		expected Category
		ok       bool
	}{
		{"documents", Documents, true},
		{"Pictures", Pictures, true},
		{" usb ", USB, true},
		{"trash", Trash, true},
		{"music", Category("music"), false},
		{"", Category(""), false},
	}

	for _, tc := range testCases {
		c, ok := ParseCategory(tc.input)
		if ok != tc.ok || c != tc.expected {
			t.Errorf("ParseCategory(%q): expected (%q, %v), got (%q, %v)", tc.input, tc.expected, tc.ok, c, ok)
		}
	}
}

func TestCategoryTitle(t *testing.T) {
	if got := Documents.Title(); got != "Documents" {
		t.Errorf("expected Documents, got %q", got)
	}
	if got := USB.Title(); got != "USB Drive" {
		t.Errorf("expected USB Drive, got %q", got)
	}
}
