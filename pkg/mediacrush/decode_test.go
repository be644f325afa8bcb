package mediacrush

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const videoDocument = `{
	"hash": "vid123",
	"type": "video/mp4",
	"original": "/vid123.mp4",
	"compression": 1.5,
	"files": [
		{"file": "/vid123.mp4", "url": "https://mediacru.sh/vid123.mp4", "type": "video/mp4"},
		{"file": "/vid123.ogv", "url": "https://mediacru.sh/vid123.ogv", "type": "video/ogg"}
	],
	"blob_type": "video",
	"metadata": {"dimensions": {"width": 640, "height": 360}, "duration": 12.5, "has_audio": true, "has_video": true},
	"extras": [{"file": "/vid123.jpg", "url": "https://mediacru.sh/vid123.jpg", "type": "image/jpeg"}],
	"flags": {"autoplay": true, "loop": false}
}`

func TestNewRemoteFileVersion2(t *testing.T) {
	doc, err := decodeFileDocument([]byte(videoDocument), "ignored")
	require.NoError(t, err)

	f := newRemoteFile(doc, StatusDone, 2)
	assert.Equal(t, "vid123", f.Hash)
	assert.Equal(t, FileTypeMP4, f.Type)
	assert.Equal(t, StatusDone, f.Status)
	assert.Equal(t, 1.5, f.Compression)
	require.Len(t, f.Files, 2)
	assert.Equal(t, "video/ogg", f.Files[1].MIME)
	assert.Equal(t, "video", f.BlobType)
	require.NotNil(t, f.Metadata)
	assert.Equal(t, 640, f.Metadata.Width)
	assert.Equal(t, 360, f.Metadata.Height)
	assert.Equal(t, 12.5, f.Metadata.Duration)
	assert.Equal(t, "/vid123.jpg", f.Thumbnail)
	assert.True(t, f.Flags["autoplay"])
	assert.True(t, f.Ready())
}

func TestNewRemoteFileVersion1IgnoresNewerFields(t *testing.T) {
	doc, err := decodeFileDocument([]byte(videoDocument), "vid123")
	require.NoError(t, err)

	f := newRemoteFile(doc, StatusProcessing, 1)
	assert.Equal(t, FileTypeMP4, f.Type)
	assert.Len(t, f.Files, 2)
	assert.Empty(t, f.BlobType)
	assert.Nil(t, f.Metadata)
	assert.Nil(t, f.Extras)
	assert.Nil(t, f.Flags)
	assert.Empty(t, f.Thumbnail)
	assert.False(t, f.Ready())
}

func TestDecodeFileDocumentFallsBackToRequestedHash(t *testing.T) {
	doc, err := decodeFileDocument([]byte(`{"type":"image/png"}`), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", doc.Hash)

	_, err = decodeFileDocument([]byte(`"just a string"`), "abc")
	assert.Error(t, err)

	_, err = decodeFileDocument([]byte(`{"files": 3}`), "abc")
	assert.Error(t, err)
}

func TestDecodeStatus(t *testing.T) {
	status, embedded, err := decodeStatus([]byte(`{"status":"done","hash":"abc","abc":{"type":"image/gif"}}`), "abc")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, status)
	assert.JSONEq(t, `{"type":"image/gif"}`, string(embedded))

	status, embedded, err = decodeStatus([]byte(`{"status":"processing","hash":"abc"}`), "abc")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, status)
	assert.Nil(t, embedded)

	_, _, err = decodeStatus([]byte(`{"hash":"abc"}`), "abc")
	assert.Error(t, err)

	_, _, err = decodeStatus([]byte(`not json`), "abc")
	assert.Error(t, err)
}
