package mediacrush

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileTypeFromExtensionCoversUploadFormats(t *testing.T) {
	for _, ext := range []string{"png", "jpg", "jpeg", "gif", "mp4", "ogv", "mp3", "ogg"} {
		ft := FileTypeFromExtension(ext)
		assert.True(t, ft.Valid(), "extension %s", ext)
		assert.NotEmpty(t, ft.MIME(), "extension %s", ext)
		assert.Equal(t, ft, FileTypeFromExtension("."+ext))
	}
	for _, ext := range []string{"", "txt", "webm", "pngx", "tar.gz"} {
		assert.Equal(t, FileTypeUnknown, FileTypeFromExtension(ext), "extension %s", ext)
	}
}

func TestFileTypeAttributes(t *testing.T) {
	assert.Equal(t, FileTypeJPEG, FileTypeFromPath("/tmp/Holiday.JPEG"))
	assert.Equal(t, "jpg", FileTypeJPEG.Extension())
	assert.Equal(t, KindVideo, FileTypeOGV.Kind())
	assert.Equal(t, KindAudio, FileTypeOGG.Kind())
	assert.Equal(t, "video/ogg", FileTypeOGV.MIME())
	assert.Equal(t, "unknown", FileTypeUnknown.String())
	assert.Equal(t, FileTypeMP4, FileTypeFromMIME("Video/MP4; codecs=avc1"))
	assert.Equal(t, FileTypeJPEG, FileTypeFromMIME("image/jpg"))
	assert.Equal(t, FileTypeUnknown, FileTypeFromMIME("application/pdf"))
}

func TestFileTypeSpecsIsACopy(t *testing.T) {
	specs := FileTypeSpecs()
	specs[0].Extensions[0] = "bmp"
	assert.Equal(t, FileTypePNG, FileTypeFromExtension("png"))
	assert.Len(t, specs, 7)
}

func TestParseFileStatus(t *testing.T) {
	tests := map[string]FileStatus{
		"done":           StatusDone,
		"DONE":           StatusDone,
		"processing":     StatusProcessing,
		"pending":        StatusProcessing,
		"ready":          StatusProcessing,
		"error":          StatusError,
		"timeout":        StatusError,
		"unrecognised":   StatusError,
		"internal_error": StatusError,
		"something-new":  StatusError,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseFileStatus(raw), raw)
	}
	assert.NotEqual(t, StatusNotFound, ParseFileStatus("not_found"))
}

func TestFileStatusTerminal(t *testing.T) {
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusUnknown.Terminal())
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusError.Terminal())
	assert.True(t, StatusNotFound.Terminal())
}
