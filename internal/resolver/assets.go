package resolver

import (
	"embed"
	"io/fs"
	"path"
)

//go:embed assets/index.html assets/control.js assets/style.css
var assetFS embed.FS

// assets maps resource names to embedded file contents, loaded once.
var assets = loadAssets(assetFS)

func loadAssets(fsys fs.FS) map[string][]byte {
	out := map[string][]byte{}
	for _, name := range []string{NameIndex, NameControlJS, NameStyleCSS} {
		b, err := fs.ReadFile(fsys, path.Join("assets", path.Base(name)))
		if err != nil {
			panic("resolver: missing embedded asset " + name + ": " + err.Error())
		}
		out[name] = b
	}
	return out
}
