package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// Format selects the manifest serialization.
type Format string

const (
	JSON Format = "json"
	CBOR Format = "cbor"
)

const zstdExt = ".zst"

// ParseFormat accepts "json" or "cbor".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case JSON, CBOR:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown manifest format %q (want json or cbor)", s)
}

// ErrUnsupportedVersion is returned for manifests newer than this build.
var ErrUnsupportedVersion = errors.New("manifest: unsupported version")

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding. Same manifest, same bytes.
var encMode cbor.EncMode

// Unknown fields are ignored so older builds read newer manifests.
var decMode cbor.DecMode

// zstdEncoder and zstdDecoder are reused across calls; both are safe for
// concurrent EncodeAll/DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("manifest: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("manifest: CBOR decoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic("manifest: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("manifest: zstd decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes m. JSON output is indented with a trailing newline; map
// keys are sorted in both formats.
func Marshal(m *Manifest, f Format, compress bool) ([]byte, error) {
	var data []byte
	var err error
	switch f {
	case JSON:
		data, err = json.MarshalIndent(m, "", "  ")
		data = append(data, '\n')
	case CBOR:
		data, err = encMode.Marshal(m)
	default:
		return nil, fmt.Errorf("unknown manifest format %q", f)
	}
	if err != nil {
		return nil, err
	}
	if compress {
		data = zstdEncoder.EncodeAll(data, nil)
	}
	return data, nil
}

// Unmarshal decodes a manifest, detecting zstd and the inner format from
// the content.
func Unmarshal(data []byte) (*Manifest, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		raw, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		data = raw
	}

	var m Manifest
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, fmt.Errorf("json: %w", err)
		}
	} else if err := decMode.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cbor: %w", err)
	}

	if m.Version > SupportedManifestVersion {
		return nil, fmt.Errorf("%w: %d (this build reads up to %d)",
			ErrUnsupportedVersion, m.Version, SupportedManifestVersion)
	}
	if m.Assets == nil {
		m.Assets = make(map[string]Asset)
	}
	return &m, nil
}
