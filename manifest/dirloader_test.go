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

package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/rtx"
	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/diag"
	"dirpx.dev/rtx/manifest"
)

func writeManifest(t *testing.T, root, rel, doc string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
}

func newAutoloadContext(t *testing.T, root string) *rtx.Context {
	t.Helper()
	ctx, err := rtx.New(rtx.WithLogger(quiet), rtx.WithReporter(diag.Discard))
	require.NoError(t, err)
	require.NoError(t, ctx.SetAutoloader(manifest.NewDirLoader(root, ctx, quiet)))
	return ctx
}

func TestDirLoader_Path(t *testing.T) {
	l := manifest.NewDirLoader("/types", nil, nil)
	assert.Equal(t, filepath.Join("/types", "App", "Model", "User.json"), l.Path(`\App\Model\User`))
	for _, bad := range []string{"", `\`, `App\..\Secret`, `App\\User`, "a/b", "C:x"} {
		assert.Empty(t, l.Path(bad), "Path(%q)", bad)
	}
}

func TestDirLoader_AutoloadsParentChain(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "App/Animal.json",
		`{"types": [{"name": "App\\Animal", "kind": "class", "implements": ["App\\Pet"], "fields": [{"name": "name"}]}]}`)
	writeManifest(t, root, "App/Pet.json",
		`{"types": [{"name": "App\\Pet", "kind": "interface"}]}`)
	writeManifest(t, root, "App/Dog.json",
		`{"types": [{"name": "App\\Dog", "kind": "class", "extends": "App\\Animal"}], "aliases": {"App\\K9": "App\\Dog"}}`)

	ctx := newAutoloadContext(t, root)

	assert.False(t, ctx.ClassExists(t.Context(), `App\Dog`, false))
	require.True(t, ctx.ClassExists(t.Context(), `App\Dog`, true))
	// Once declared, any spelling resolves.
	assert.True(t, ctx.ClassExists(t.Context(), `app\dog`, false))
	assert.Equal(t, []string{"stdClass", `App\Animal`, `App\Dog`}, ctx.DeclaredClasses())
	assert.Equal(t, []string{`App\Pet`}, ctx.DeclaredInterfaces())

	d, ok := ctx.Resolve(t.Context(), `App\K9`, false)
	require.True(t, ok)
	assert.Equal(t, `App\Dog`, d.Name())
}

func TestDirLoader_MissingAndBroken(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "Broken.json", `{"types": [`)
	writeManifest(t, root, "Wrong.json", `{"types": [{"name": "Other", "kind": "class"}]}`)
	ctx := newAutoloadContext(t, root)

	assert.False(t, ctx.ClassExists(t.Context(), "Missing", true))
	assert.False(t, ctx.ClassExists(t.Context(), "Broken", true))
	// A manifest that declares some other type does not satisfy the lookup.
	assert.False(t, ctx.ClassExists(t.Context(), "Wrong", true))
	assert.True(t, ctx.ClassExists(t.Context(), "Other", false))
}

func TestDirLoader_SelfReferenceIsNotFound(t *testing.T) {
	root := t.TempDir()
	// Loop extends a type only resolvable by loading Loop itself again.
	writeManifest(t, root, "Loop.json", `{"types": [{"name": "Loop", "kind": "class", "extends": "Loop2"}]}`)
	writeManifest(t, root, "Loop2.json", `{"types": [{"name": "Loop2", "kind": "class", "extends": "Loop"}]}`)
	ctx := newAutoloadContext(t, root)

	assert.False(t, ctx.ClassExists(t.Context(), "Loop", true))
	assert.False(t, ctx.ClassExists(t.Context(), "Loop2", false))
}

var _ apis.Autoloader = (*manifest.DirLoader)(nil)
