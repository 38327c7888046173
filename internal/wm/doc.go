/*
Package wm tracks which applications are open on the desktop, which one is
maximized, whether the launcher overlay is showing, and the stacking order the
frontend renders windows in.

The open sequence is the only ordering state: the last app in the sequence
renders on top and its z-index is derived from its position.

	m := wm.NewManager(wm.Config{BaseZ: 10})
	m.Open(registry.AppFiles, &wm.Params{Category: registry.Documents})
	m.Open(registry.AppNotes, nil)
	m.ToggleMaximize(registry.AppFiles)
	for _, e := range m.StackOrder() {
		// e.AppID, e.Z
	}
*/
package wm
