package usecase

import (
	"os"

	"github.com/m-mizutani/cogrelease/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// SyncCogConfig ensures the [changelog] section of the cog.toml at path
// declares remote, repository and owner. A field is set only when it is
// absent from the file AND a non-nil value was supplied; existing values are
// never overwritten, even when they differ. The file is rewritten only when
// at least one field changed, so a second run with the same inputs is a
// no-op. Returns whether the file was rewritten.
func SyncCogConfig(path string, remote, repository, owner *string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, goerr.Wrap(types.ErrConfigNotFound, "cog.toml is missing", goerr.V("path", path))
		}
		return false, goerr.Wrap(err, "failed to read cog.toml", goerr.V("path", path))
	}

	var doc map[string]any
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return false, goerr.Wrap(err, "failed to parse cog.toml", goerr.V("path", path))
	}
	if doc == nil {
		doc = map[string]any{}
	}

	changelog, _ := doc["changelog"].(map[string]any)
	if changelog == nil {
		changelog = map[string]any{}
	}

	changed := false
	set := func(key string, value *string) {
		if value == nil {
			return
		}
		if _, exists := changelog[key]; exists {
			return
		}
		changelog[key] = *value
		changed = true
	}

	set("remote", remote)
	set("repository", repository)
	set("owner", owner)

	if !changed {
		return false, nil
	}

	doc["changelog"] = changelog

	out, err := toml.Marshal(doc)
	if err != nil {
		return false, goerr.Wrap(err, "failed to encode cog.toml")
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return false, goerr.Wrap(err, "failed to write cog.toml", goerr.V("path", path))
	}

	return true, nil
}

// ReadTagPrefix returns the top-level tag_prefix from the cog.toml at path.
// Any failure (missing file, malformed TOML, absent key) yields an empty
// prefix; this read never fails the pipeline.
func ReadTagPrefix(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var doc struct {
		TagPrefix string `toml:"tag_prefix"`
	}
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return ""
	}

	return doc.TagPrefix
}
