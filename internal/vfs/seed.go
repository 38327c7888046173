package vfs

import (
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/justyntemme/deskshell/internal/registry"
)

// Tree maps Location keys to their entries.
type Tree map[string][]FileEntry

// Clone deep-copies the tree's slices.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for k, entries := range t {
		out[k] = append([]FileEntry(nil), entries...)
	}
	return out
}

func folder(name, modified string) FileEntry {
	return FileEntry{ID: uuid.NewString(), Name: name, Kind: KindFolder, ModifiedLabel: modified, Synced: true}
}

func shortcut(name string, c registry.Category) FileEntry {
	e := folder(name, "Today")
	e.LinkedCategory = c
	return e
}

func file(name string, size int64, modified string, synced bool) FileEntry {
	return FileEntry{
		ID:            uuid.NewString(),
		Name:          name,
		Kind:          KindForName(name),
		SizeBytes:     size,
		SizeLabel:     humanize.Bytes(uint64(size)),
		ModifiedLabel: modified,
		Synced:        synced,
	}
}

func note(name, content, modified string) FileEntry {
	e := file(name, int64(len(content)), modified, true)
	e.Content = content
	return e
}

// SeedTree returns the initial contents of a fresh login session.
func SeedTree() Tree {
	return Tree{
		"home": {
			shortcut("Desktop", registry.Desktop),
			shortcut("Documents", registry.Documents),
			shortcut("Pictures", registry.Pictures),
			shortcut("Downloads", registry.Downloads),
			folder("Music", "Last week"),
			note("todo.txt", "- call the bank\n- renew passport\n- book dentist", "Yesterday"),
		},
		"home/Music": {
			file("Morning Run.mp3", 4_200_000, "Mar 2", true),
			file("Focus Mix.flac", 31_500_000, "Feb 18", false),
		},
		"desktop": {
			note("Notes.txt", "Remember to back up the Cloud folder.", "Today"),
			folder("Project", "Yesterday"),
			file("wallpaper.jpg", 2_400_000, "Jan 3", true),
		},
		"desktop/Project": {
			note("draft.md", "# Launch plan\n\nShip the beta by Friday.", "Yesterday"),
		},
		"documents": {
			folder("Work", "2 days ago"),
			folder("Personal", "Last week"),
			file("Report_2024.pdf", 2_400_000, "Yesterday", true),
			file("Budget.xlsx", 856_000, "3 days ago", true),
			note("Meeting Notes.txt", "Agenda:\n1. Q3 budget\n2. Hiring\n3. Offsite", "Today"),
			file("Resume.docx", 245_000, "Last month", false),
		},
		"documents/Work": {
			file("Project Plan.docx", 1_100_000, "2 days ago", true),
			file("Q3 Review.pdf", 3_800_000, "Last week", true),
			note("Roadmap.md", "# Roadmap\n\n- Q3: search\n- Q4: sharing", "Last week"),
			file("Team Photo.jpg", 5_600_000, "Last month", true),
		},
		"documents/Personal": {
			note("Recipes.txt", "Pancakes: flour, milk, eggs.", "Last week"),
			file("Travel.pdf", 1_200_000, "Last month", false),
		},
		"pictures": {
			folder("Vacation", "Last month"),
			file("Family.jpg", 3_200_000, "Last week", true),
			file("Sunset.png", 4_800_000, "2 weeks ago", true),
			file("Screenshot 2024-01-15.png", 980_000, "Jan 15", false),
		},
		"pictures/Vacation": {
			file("Beach.jpg", 3_100_000, "Last month", true),
			file("Mountains.jpg", 2_900_000, "Last month", true),
			file("Clip.mp4", 48_000_000, "Last month", false),
		},
		"downloads": {
			file("setup.zip", 15_300_000, "Today", false),
			file("song.mp3", 5_100_000, "Yesterday", false),
			file("movie.mp4", 734_000_000, "Last week", false),
			file("ebook.pdf", 6_700_000, "Last month", false),
		},
		"cloud": {
			folder("Shared", "Yesterday"),
			file("Backup.zip", 120_000_000, "Last week", true),
		},
		"cloud/Shared": {
			file("Team Budget.xlsx", 640_000, "Yesterday", true),
		},
		"usb": {
			folder("Photos", "Jan 10"),
			file("Firmware.bin", 8_400_000, "Dec 12", false),
		},
		"usb/Photos": {
			file("IMG_001.jpg", 2_700_000, "Jan 10", false),
		},
	}
}
