package log

import (
	"github.com/davecgh/go-spew/spew"
	hclog "github.com/hashicorp/go-hclog"
)

func EnableDebug() {
	L.SetLevel(hclog.Trace)
}

// Dump renders v for trace output. The rendering is skipped entirely
// unless l is at trace level.
func Dump(l hclog.Logger, v interface{}) string {
	if !l.IsTrace() {
		return ""
	}

	return spew.Sdump(v)
}
