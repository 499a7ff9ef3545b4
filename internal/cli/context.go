package cli

import (
	"fmt"
	"os"

	"github.com/wcs-project/wcs/pkg/color"
	"github.com/wcs-project/wcs/pkg/wc"
)

// requireWC opens the working copy containing CWD, or exits with an error.
// Callers own the returned handle and must Close it.
func requireWC() *wc.WorkingCopy {
	w, err := wc.Open("", wc.OpenOptions{User: os.Getenv("WCS_USER")})
	if err != nil {
		fmtErr("cannot open working copy: %v", err)
		os.Exit(1)
	}
	return w
}

func fmtErr(format string, args ...any) {
	prefix := "wcs: "
	if color.Enabled() {
		prefix = color.Error("wcs:") + " "
	}
	fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
}
