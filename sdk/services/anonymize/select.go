// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Select replaces the selected file set with files. Nothing is merged with an
// earlier selection. When an accept filter is configured and a file does not
// match it, the previous selection is left untouched.
func (s *AnonymizeService) Select(files ...File) error {
	for _, f := range files {
		if f.Name == "" {
			return fmt.Errorf("%w: file without name", ErrUnsupportedFile)
		}
		if !accepted(f.Name, s.upload.AcceptExtensions) {
			return fmt.Errorf("%w: %s", ErrUnsupportedFile, f.Name)
		}
	}
	sel := append([]File(nil), files...)

	s.mu.Lock()
	s.selection = sel
	s.mu.Unlock()
	return nil
}

// SelectPaths selects local files by path.
func (s *AnonymizeService) SelectPaths(paths ...string) error {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("cannot access input: %w", err)
		}
		if st.IsDir() {
			return fmt.Errorf("%s is a directory", p)
		}
		files = append(files, File{Name: st.Name(), Path: p, Size: st.Size()})
	}
	return s.Select(files...)
}

// Selection returns a copy of the current selected file set.
func (s *AnonymizeService) Selection() []File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]File(nil), s.selection...)
}

func accepted(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	filtered := false
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		filtered = true
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if e == ext {
			return true
		}
	}
	return !filtered
}
