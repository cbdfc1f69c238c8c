package registry

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// Format identifies a content file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// topicFile is the on-disk shape of a content file
type topicFile struct {
	Topics []Topic `json:"topics" yaml:"topics" toml:"topics"`
}

// FormatFromName picks a format from a file name or URL path
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported content file: %s", name)
	}
}

// Decode parses a content file into topics
func Decode(format Format, data []byte) ([]Topic, error) {
	data, err := toUTF8(data)
	if err != nil {
		return nil, err
	}

	var file topicFile
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &file)
	case FormatTOML:
		err = toml.Unmarshal(data, &file)
	case FormatJSON:
		err = sonic.Unmarshal(data, &file)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s content: %w", format, err)
	}

	for _, t := range file.Topics {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return file.Topics, nil
}

// DetectCharset returns the most likely charset label for data
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// toUTF8 transcodes legacy encodings; valid UTF-8 passes through untouched
func toUTF8(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return data, nil
	}

	label := DetectCharset(data)
	reader, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	converted, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to transcode %s content: %w", label, err)
	}
	return converted, nil
}
