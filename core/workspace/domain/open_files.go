// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package domain

import (
	"slices"
)

func (w *Workspace) tabIndex(p Path) int {
	s := p.String()
	return slices.IndexFunc(w.OpenFiles, func(t Tab) bool { return t.Path == s })
}

// OpenFile makes p the current tab, appending a tab for it when none exists.
func (w *Workspace) OpenFile(p Path, newID IDGenerator) (Tab, error) {
	_, n, err := w.lookup(p)
	if err != nil {
		return Tab{}, err
	}
	if n.Type != NodeFile {
		return Tab{}, ErrNotAFile
	}

	if i := w.tabIndex(p); i >= 0 {
		w.CurrentFile = w.OpenFiles[i].Path
		return w.OpenFiles[i], nil
	}

	id, err := newID()
	if err != nil {
		return Tab{}, err
	}
	tab := Tab{ID: id, Path: p.String(), Name: p.Name()}
	w.OpenFiles = append(w.OpenFiles, tab)
	w.CurrentFile = tab.Path
	return tab, nil
}

// CloseFile removes the tab for p. When it was current, the neighbour that
// slides into its slot (or the new last tab) becomes current.
func (w *Workspace) CloseFile(p Path) error {
	i := w.tabIndex(p)
	if i < 0 {
		return ErrNotOpen
	}
	wasCurrent := w.CurrentFile == w.OpenFiles[i].Path
	w.OpenFiles = slices.Delete(w.OpenFiles, i, i+1)

	if !wasCurrent {
		return nil
	}
	if len(w.OpenFiles) == 0 {
		w.CurrentFile = ""
		return nil
	}
	w.CurrentFile = w.OpenFiles[min(i, len(w.OpenFiles)-1)].Path
	return nil
}

func (w *Workspace) SetCurrentFile(p Path) error {
	i := w.tabIndex(p)
	if i < 0 {
		return ErrNotOpen
	}
	w.CurrentFile = w.OpenFiles[i].Path
	return nil
}

func (w *Workspace) ClearCurrentFile() {
	w.CurrentFile = ""
}

// CurrentTab returns the current tab, if any.
func (w *Workspace) CurrentTab() (Tab, bool) {
	if w.CurrentFile == "" {
		return Tab{}, false
	}
	i := slices.IndexFunc(w.OpenFiles, func(t Tab) bool { return t.Path == w.CurrentFile })
	if i < 0 {
		return Tab{}, false
	}
	return w.OpenFiles[i], true
}

// closeTabsWithin drops every tab at or beneath p. A dropped current file is
// replaced by the first remaining tab.
func (w *Workspace) closeTabsWithin(p Path) {
	currentClosed := false
	w.OpenFiles = slices.DeleteFunc(w.OpenFiles, func(t Tab) bool {
		tp, err := ParsePath(t.Path)
		if err != nil || !tp.Within(p) {
			return false
		}
		if t.Path == w.CurrentFile {
			currentClosed = true
		}
		return true
	})
	if !currentClosed {
		return
	}
	if len(w.OpenFiles) == 0 {
		w.CurrentFile = ""
		return
	}
	w.CurrentFile = w.OpenFiles[0].Path
}

// retargetTabs rewrites tab paths under from to live under to.
func (w *Workspace) retargetTabs(from, to Path) {
	for i, t := range w.OpenFiles {
		tp, err := ParsePath(t.Path)
		if err != nil || !tp.Within(from) {
			continue
		}
		moved := tp.Rebase(from, to)
		if w.CurrentFile == t.Path {
			w.CurrentFile = moved.String()
		}
		w.OpenFiles[i].Path = moved.String()
		w.OpenFiles[i].Name = moved.Name()
	}
}
