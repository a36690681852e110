package buildinfo

import (
	"fmt"
	"io"
)

const Graffiti = " _       _ _           _           \n| | ____| (_)_ __   __| | _____  __\n| |/ / _` | | '_ \\ / _` |/ _ \\ \\/ /\n|   < (_| | | | | | (_| |  __/>  < \n|_|\\_\\__,_|_|_| |_|\\__,_|\\___/_/\\_\\\n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "KDINDEX"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

// Banner writes the graffiti and the build line.
func (b buildinfo) Banner(w io.Writer) {
	_, _ = fmt.Fprint(w, Graffiti)
	_, _ = fmt.Fprintf(w, "%s: %s, %s\n", b.Name(), b.Time(), b.Tag())
}

var Info buildinfo
