/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package manifest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/names"
)

// DirLoader is an apis.Autoloader that maps a qualified type name to a
// manifest file below Root: `App\Model\User` -> `<Root>/App/Model/User.json`.
// The file is applied to Target, so references to other types autoload in
// turn. The name is used as spelled, so on case-sensitive file systems only
// the spelling matching the file autoloads.
type DirLoader struct {
	Root   string
	Target Target
	Logger *slog.Logger
}

// NewDirLoader returns a DirLoader for root applying into target.
func NewDirLoader(root string, target Target, logger *slog.Logger) *DirLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirLoader{Root: root, Target: target, Logger: logger}
}

// Ensure DirLoader implements apis.Autoloader.
var _ apis.Autoloader = (*DirLoader)(nil)

// Path returns the manifest path for name, or "" when name cannot map to a
// file below Root.
func (l *DirLoader) Path(name string) string {
	canonical := names.Canonical(name)
	if canonical == "" {
		return ""
	}
	parts := strings.Split(canonical, names.Separator)
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/:`) {
			return ""
		}
	}
	return filepath.Join(l.Root, filepath.Join(parts...)+".json")
}

// TryAutoload applies the manifest for name if one exists. Failures are
// logged and reported as a declined load. References the manifest makes to
// other types are autoloaded on ctx.
func (l *DirLoader) TryAutoload(ctx context.Context, name string) bool {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path := l.Path(name)
	if path == "" {
		logger.Debug("autoload: name does not map to a manifest path", slog.String("name", name))
		return false
	}
	m, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("autoload: cannot read manifest",
				slog.String("name", name),
				slog.String("path", path),
				slog.Any("error", err),
			)
		}
		return false
	}
	if err := m.Apply(ctx, l.Target); err != nil {
		logger.Warn("autoload: cannot apply manifest",
			slog.String("name", name),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return false
	}
	logger.Debug("autoload: applied manifest", slog.String("name", name), slog.String("path", path))
	return true
}
