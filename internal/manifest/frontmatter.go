package manifest

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// SkillMetadata is the YAML frontmatter of a SKILL.md file
type SkillMetadata struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	License     string `mapstructure:"license"`
}

// ReadSkillMetadata parses the frontmatter of dir/SKILL.md. A file without
// frontmatter yields empty metadata.
func ReadSkillMetadata(dir string) (*SkillMetadata, error) {
	content, err := os.ReadFile(filepath.Join(dir, SkillFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}
	return ParseSkillMetadata(content)
}

// ParseSkillMetadata extracts frontmatter fields from SKILL.md content
func ParseSkillMetadata(content []byte) (*SkillMetadata, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	data, err := meta.TryGet(pctx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid frontmatter")
	}

	result := &SkillMetadata{}
	if len(data) == 0 {
		return result, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, errors.Wrap(err, "decode frontmatter")
	}
	return result, nil
}
