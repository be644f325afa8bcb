package mediacrush

import (
	"path/filepath"
	"strings"
)

// MediaKind is the broad family of a FileType.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// FileType enumerates the formats MediaCrush accepts for upload.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypePNG
	FileTypeJPEG
	FileTypeGIF
	FileTypeMP4
	FileTypeOGV
	FileTypeMP3
	FileTypeOGG
)

// FileTypeSpec maps a FileType to its MIME type and accepted extensions.
// The first extension is canonical.
type FileTypeSpec struct {
	Type       FileType
	MIME       string
	Kind       MediaKind
	Extensions []string
}

var fileTypeSpecs = []FileTypeSpec{
	{Type: FileTypePNG, MIME: "image/png", Kind: KindImage, Extensions: []string{"png"}},
	{Type: FileTypeJPEG, MIME: "image/jpeg", Kind: KindImage, Extensions: []string{"jpg", "jpeg"}},
	{Type: FileTypeGIF, MIME: "image/gif", Kind: KindImage, Extensions: []string{"gif"}},
	{Type: FileTypeMP4, MIME: "video/mp4", Kind: KindVideo, Extensions: []string{"mp4"}},
	{Type: FileTypeOGV, MIME: "video/ogg", Kind: KindVideo, Extensions: []string{"ogv"}},
	{Type: FileTypeMP3, MIME: "audio/mpeg", Kind: KindAudio, Extensions: []string{"mp3"}},
	{Type: FileTypeOGG, MIME: "audio/ogg", Kind: KindAudio, Extensions: []string{"ogg"}},
}

// FileTypeSpecs returns a copy of the supported-format table.
func FileTypeSpecs() []FileTypeSpec {
	out := make([]FileTypeSpec, len(fileTypeSpecs))
	for i, s := range fileTypeSpecs {
		s.Extensions = append([]string(nil), s.Extensions...)
		out[i] = s
	}
	return out
}

func (t FileType) spec() (FileTypeSpec, bool) {
	for _, s := range fileTypeSpecs {
		if s.Type == t {
			return s, true
		}
	}
	return FileTypeSpec{}, false
}

// Valid reports whether t is one of the uploadable formats.
func (t FileType) Valid() bool {
	_, ok := t.spec()
	return ok
}

// MIME returns the canonical content type, or "" for FileTypeUnknown.
func (t FileType) MIME() string {
	s, _ := t.spec()
	return s.MIME
}

// Extension returns the canonical extension without a dot.
func (t FileType) Extension() string {
	s, ok := t.spec()
	if !ok {
		return ""
	}
	return s.Extensions[0]
}

// Kind returns whether t is an image, video or audio format.
func (t FileType) Kind() MediaKind {
	s, _ := t.spec()
	return s.Kind
}

func (t FileType) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return t.MIME()
}

// FileTypeFromExtension resolves "png", ".PNG" and the like.
func FileTypeFromExtension(ext string) FileType {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return FileTypeUnknown
	}
	for _, s := range fileTypeSpecs {
		for _, e := range s.Extensions {
			if e == ext {
				return s.Type
			}
		}
	}
	return FileTypeUnknown
}

// FileTypeFromPath resolves the type from a file name's extension.
func FileTypeFromPath(path string) FileType {
	return FileTypeFromExtension(filepath.Ext(path))
}

// FileTypeFromMIME resolves a content type such as "video/mp4". Parameters
// after a semicolon are ignored.
func FileTypeFromMIME(mime string) FileType {
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "image/jpg" {
		return FileTypeJPEG
	}
	for _, s := range fileTypeSpecs {
		if s.MIME == mime {
			return s.Type
		}
	}
	return FileTypeUnknown
}

// FileStatus is the processing state of an uploaded file.
//
// The server moves a file from StatusProcessing to StatusDone or StatusError
// and never back. StatusNotFound is never sent by the server; the client
// assigns it when the existence check fails.
type FileStatus string

const (
	StatusUnknown    FileStatus = ""
	StatusProcessing FileStatus = "processing"
	StatusDone       FileStatus = "done"
	StatusError      FileStatus = "error"
	StatusNotFound   FileStatus = "not_found"
)

// ParseFileStatus maps the server's status strings onto FileStatus.
// Unrecognised values are treated as failures.
func ParseFileStatus(raw string) FileStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "done":
		return StatusDone
	case "processing", "pending", "ready":
		return StatusProcessing
	default:
		return StatusError
	}
}

// Terminal reports whether no further transition is possible.
func (s FileStatus) Terminal() bool {
	return s == StatusDone || s == StatusError || s == StatusNotFound
}

// FileVariant is one stored rendition of an upload.
type FileVariant struct {
	Path string
	URL  string
	MIME string
}

// MediaMetadata holds the per-type details reported from API version 2 on.
// Zero values mean the server did not report the field.
type MediaMetadata struct {
	Width    int
	Height   int
	Duration float64
	HasAudio bool
	HasVideo bool
}

// RemoteFile describes a file hosted on MediaCrush. It is only ever built
// from server responses.
type RemoteFile struct {
	Hash        string
	Type        FileType
	MIME        string
	Status      FileStatus
	Original    string
	Compression float64
	Files       []FileVariant

	// Populated when the client's API version is 2 or later.
	BlobType  string
	Metadata  *MediaMetadata
	Extras    []FileVariant
	Flags     map[string]bool
	Thumbnail string
}

// Ready reports whether conversion completed successfully.
func (f *RemoteFile) Ready() bool {
	return f != nil && f.Status == StatusDone
}

// FileUpload is the payload handed to a Backend for /upload/file.
type FileUpload struct {
	Name string
	Type FileType
	Data []byte
}
