package resolver

import (
	"encoding/json"

	"zulubridge/pkg/types"
)

// Resource names. Every name resolved by Resolve can be passed to Open.
const (
	NameVersion   = "/version.json"
	NameStatus    = "/status.json"
	NameFilenames = "/filenames.json"
	NameImages    = "/images.json"
	NameNextImage = "/nextImage.json"
	NameOK        = "/ok.json"
	NameWait      = "/wait.json"
	NameOverflow  = "/overflow.json"
	NameDone      = "/done.json"
	NameError     = "/error.json"
	NameIndex     = "/index.html"
	NameControlJS = "/control.js"
	NameStyleCSS  = "/style.css"
)

var aliases = map[string][]byte{
	NameOK:       aliasDoc(types.AliasOK),
	NameWait:     aliasDoc(types.AliasWait),
	NameOverflow: aliasDoc(types.AliasOverflow),
	NameDone:     aliasDoc(types.AliasDone),
	NameError:    aliasDoc(types.AliasError),
}

func aliasDoc(status string) []byte {
	b, _ := json.Marshal(types.StatusAlias{Status: status})
	return b
}

// IsAlias reports whether name is one of the fixed status documents.
func IsAlias(name string) bool {
	_, ok := aliases[name]
	return ok
}
