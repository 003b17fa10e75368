package exporters

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// WorkbookName is the spreadsheet at the archive root.
	WorkbookName = "Contacts.xlsx"
	// AttachmentsDir is the folder holding per-contact subfolders.
	AttachmentsDir = "Attachments"
)

// ArchiveFileName embeds the export date for uniqueness.
func ArchiveFileName(now time.Time) string {
	return fmt.Sprintf("contacts-export-%s.zip", now.Format("2006-01-02"))
}

// pathReplacer swaps characters that are illegal in filesystem paths.
var pathReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeName makes a contact or file name safe to use as a path segment.
func SanitizeName(name string) string {
	sanitized := pathReplacer.Replace(strings.TrimSpace(name))
	sanitized = strings.Map(func(r rune) rune {
		if r < 0x20 {
			return '_'
		}
		return r
	}, sanitized)
	sanitized = strings.Trim(sanitized, ". ")
	if sanitized == "" {
		return "_"
	}
	return sanitized
}

// Assembler writes the export archive incrementally. archive/zip's deflate
// at its default level keeps compression moderate.
type Assembler struct {
	zw *zip.Writer
}

// NewAssembler starts a zip archive on w.
func NewAssembler(w io.Writer) *Assembler {
	return &Assembler{zw: zip.NewWriter(w)}
}

// AddFile stores one file under the given archive path.
func (a *Assembler) AddFile(path string, r io.Reader) error {
	entry, err := a.zw.Create(path)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, r)
	return err
}

// Close finishes the archive's central directory.
func (a *Assembler) Close() error {
	return a.zw.Close()
}
