// Package project reads and writes sprite projects as JSON documents of base64 PNG frames
package project

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"io"

	"github.com/pkg/errors"

	"github.com/lixenwraith/vi-sprite/raster"
)

// ImagesKey is the only recognized top-level key of a project document
const ImagesKey = "images"

// ErrMalformed marks a document that is not a JSON object
var ErrMalformed = errors.New("malformed project document")

// Document is the on-disk shape of a project
type Document struct {
	Images []string `json:"images"`
}

// Result is the outcome of decoding a document
type Result struct {
	Frames    []*raster.Buffer
	Entries   int  // entries found under the images key
	Skipped   int  // entries that did not decode into a usable frame
	Malformed bool // document was not a JSON object or images was not an array
}

// EncodeFrame returns the base64 PNG encoding of one frame
func EncodeFrame(buf *raster.Buffer) (string, error) {
	var b bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&b, buf.Image()); err != nil {
		return "", errors.Wrap(err, "encode png")
	}
	return base64.StdEncoding.EncodeToString(b.Bytes()), nil
}

// DecodeFrame parses one base64 PNG entry
func DecodeFrame(s string) (*raster.Buffer, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decode base64")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode png")
	}
	return raster.FromImage(img), nil
}

// Marshal encodes frames in order into an indented project document
func Marshal(frames []*raster.Buffer) ([]byte, error) {
	doc := Document{Images: make([]string, 0, len(frames))}
	for i, f := range frames {
		s, err := EncodeFrame(f)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", i)
		}
		doc.Images = append(doc.Images, s)
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal document")
	}
	return append(data, '\n'), nil
}

// Encode writes the project document for frames to w
func Encode(w io.Writer, frames []*raster.Buffer) error {
	data, err := Marshal(frames)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "write document")
}

// Unmarshal decodes a project document
// Unknown keys are ignored; a missing or non-array images value yields no frames
// Entries that fail to decode, or whose size differs from the first frame, are skipped
// The error is non-nil only when data is not a JSON object
func Unmarshal(data []byte) (Result, error) {
	var res Result

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		res.Malformed = true
		if err == nil {
			err = errors.New("null document")
		}
		return res, errors.Wrap(ErrMalformed, err.Error())
	}

	raw, ok := top[ImagesKey]
	if !ok {
		return res, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		res.Malformed = true
		return res, nil
	}

	res.Entries = len(entries)
	for _, entry := range entries {
		var s string
		if err := json.Unmarshal(entry, &s); err != nil {
			res.Skipped++
			continue
		}
		buf, err := DecodeFrame(s)
		if err != nil || buf.Width() == 0 || buf.Height() == 0 {
			res.Skipped++
			continue
		}
		if len(res.Frames) > 0 && buf.Bounds() != res.Frames[0].Bounds() {
			res.Skipped++
			continue
		}
		res.Frames = append(res.Frames, buf)
	}
	return res, nil
}

// Decode reads and decodes a project document from r
func Decode(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, errors.Wrap(err, "read document")
	}
	return Unmarshal(data)
}
