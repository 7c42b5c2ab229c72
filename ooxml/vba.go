package ooxml

import (
	"bytes"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
)

// sniffVBAProject recognizes an xl/vbaProject.bin part as a well-formed
// OLE2 compound file and, when possible, reads its summary property
// stream. This engine never executes or interprets macros (Non-goal); the
// sole purpose is to confirm the blob is a legitimate compound file
// before round-tripping it byte-for-byte via the part manifest, so a
// corrupt upstream project doesn't silently propagate.
func sniffVBAProject(data []byte) (bool, error) {
	r, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return false, err
	}
	for entry, err := r.Next(); err == nil; entry, err = r.Next() {
		if entry.Name == "\x05SummaryInformation" {
			// Parsing the summary property stream is opportunistic: a
			// project missing or with a malformed SummaryInformation
			// stream is still a perfectly valid VBA project to pass
			// through untouched.
			_ = msoleps.New().Reset(r)
		}
	}
	return true, nil
}
