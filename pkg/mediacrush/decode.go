package mediacrush

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mediacrush/mediacrush_sdk_go/internal/crushapi"
)

// fields introduced by API version 2 are ignored below this version.
const schemaV2 = 2.0

type fileDocument struct {
	Hash        string            `json:"hash"`
	Type        string            `json:"type"`
	Original    string            `json:"original"`
	Compression json.Number       `json:"compression"`
	Files       []variantDocument `json:"files"`

	BlobType string            `json:"blob_type"`
	Metadata *metadataDocument `json:"metadata"`
	Extras   []variantDocument `json:"extras"`
	Flags    map[string]bool   `json:"flags"`
}

type variantDocument struct {
	File string `json:"file"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

type metadataDocument struct {
	Dimensions *struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"dimensions"`
	Duration float64 `json:"duration"`
	HasAudio bool    `json:"has_audio"`
	HasVideo bool    `json:"has_video"`
}

func decodeFileDocument(raw []byte, hash string) (fileDocument, error) {
	var doc fileDocument
	if _, err := crushapi.DecodeObject(raw); err != nil {
		return doc, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode file %s: %w", hash, err)
	}
	if strings.TrimSpace(doc.Hash) == "" {
		doc.Hash = hash
	}
	return doc, nil
}

// newRemoteFile assembles a RemoteFile from a metadata document and the
// separately fetched status, honouring the schema version.
func newRemoteFile(doc fileDocument, status FileStatus, version float64) *RemoteFile {
	f := &RemoteFile{
		Hash:     doc.Hash,
		Type:     FileTypeFromMIME(doc.Type),
		MIME:     doc.Type,
		Status:   status,
		Original: doc.Original,
		Files:    convertVariants(doc.Files),
	}
	if c, err := doc.Compression.Float64(); err == nil {
		f.Compression = c
	}

	if version < schemaV2 {
		return f
	}
	f.BlobType = doc.BlobType
	f.Extras = convertVariants(doc.Extras)
	if len(doc.Flags) > 0 {
		f.Flags = make(map[string]bool, len(doc.Flags))
		for k, v := range doc.Flags {
			f.Flags[k] = v
		}
	}
	if doc.Metadata != nil {
		meta := &MediaMetadata{
			Duration: doc.Metadata.Duration,
			HasAudio: doc.Metadata.HasAudio,
			HasVideo: doc.Metadata.HasVideo,
		}
		if d := doc.Metadata.Dimensions; d != nil {
			meta.Width = d.Width
			meta.Height = d.Height
		}
		f.Metadata = meta
	}
	if f.Type.Kind() == KindVideo || doc.BlobType == string(KindVideo) {
		for _, extra := range f.Extras {
			if FileTypeFromMIME(extra.MIME).Kind() == KindImage {
				f.Thumbnail = extra.Path
				break
			}
		}
	}
	return f
}

func convertVariants(docs []variantDocument) []FileVariant {
	if len(docs) == 0 {
		return nil
	}
	out := make([]FileVariant, 0, len(docs))
	for _, d := range docs {
		out = append(out, FileVariant{Path: d.File, URL: d.URL, MIME: d.Type})
	}
	return out
}

// decodeStatus reads a /{hash}/status reply. When the server embeds the file
// document under the hash key it is returned as well.
func decodeStatus(body []byte, hash string) (FileStatus, json.RawMessage, error) {
	members, err := crushapi.DecodeObject(body)
	if err != nil {
		return StatusUnknown, nil, err
	}
	raw, ok := members["status"]
	if !ok || crushapi.IsNull(raw) {
		return StatusUnknown, nil, fmt.Errorf("status member missing")
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return StatusUnknown, nil, fmt.Errorf("decode status: %w", err)
	}

	var embedded json.RawMessage
	if doc, ok := members[hash]; ok && !crushapi.IsNull(doc) {
		if _, err := crushapi.DecodeObject(doc); err == nil {
			embedded = doc
		}
	}
	return ParseFileStatus(value), embedded, nil
}
