package ooxml

import (
	"archive/zip"
	"bytes"
	"io"

	"github.com/richardlehane/mscfb"
)

// openZip opens ra as a ZIP archive, the container format every OOXML
// package uses. A password-protected workbook is not a ZIP at all: Excel
// wraps it in an OLE2/CFB container (MS-OFFCRYPTO) holding
// "EncryptionInfo" and "EncryptedPackage" streams instead of the
// package's actual parts. Recognizing that shape on a failed zip open,
// via the same mscfb reader vba.go already uses for compound-file
// validation, turns a confusing "not a valid zip archive" error into an
// actionable one. This engine has no component that models MS-OFFCRYPTO
// key derivation or decryption (encryption is never named in spec.md),
// so recovery stops at diagnosis.
func openZip(ra io.ReaderAt, size int64) (*zip.Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err == nil {
		return zr, nil
	}
	if sniffEncryptedPackage(ra, size) {
		return nil, &ReadError{Reason: "package is password-protected (MS-OFFCRYPTO encrypted); decryption is unsupported"}
	}
	return nil, &ReadError{Reason: "not a valid zip archive", Err: err}
}

func sniffEncryptedPackage(ra io.ReaderAt, size int64) bool {
	buf := make([]byte, size)
	if _, err := ra.ReadAt(buf, 0); err != nil && err != io.EOF {
		return false
	}
	r, err := mscfb.New(bytes.NewReader(buf))
	if err != nil {
		return false
	}
	for entry, err := r.Next(); err == nil; entry, err = r.Next() {
		if entry.Name == "EncryptionInfo" || entry.Name == "EncryptedPackage" {
			return true
		}
	}
	return false
}
