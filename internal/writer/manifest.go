package writer

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// ManifestFile is the name of the merged manifest in the output tree
const ManifestFile = "cppbind.toml"

// ManifestDependency is a dependency entry of the generated manifest
type ManifestDependency struct {
	Name       string
	Version    string
	ModulePath string
	// Path is written only when local paths are requested
	Path string
}

// BaseManifest builds the generated manifest of a binding
func BaseManifest(opts *Options, deps []ManifestDependency) map[string]interface{} {
	libs := make([]interface{}, 0, len(opts.LinkLibs))
	for _, l := range opts.LinkLibs {
		libs = append(libs, l)
	}
	frameworks := make([]interface{}, 0, len(opts.Frameworks))
	for _, f := range opts.Frameworks {
		frameworks = append(frameworks, f)
	}

	manifest := map[string]interface{}{
		"package": map[string]interface{}{
			"name":    opts.Name,
			"version": opts.Version,
			"module":  opts.ModulePath,
		},
		"link": map[string]interface{}{
			"libs":       libs,
			"frameworks": frameworks,
		},
	}

	if len(deps) > 0 {
		table := make(map[string]interface{}, len(deps))
		for _, d := range deps {
			entry := map[string]interface{}{
				"version": d.Version,
				"module":  d.ModulePath,
			}
			if opts.WriteDependenciesLocalPaths && d.Path != "" {
				entry["path"] = d.Path
			}
			table[d.Name] = entry
		}
		manifest["dependencies"] = table
	}
	return manifest
}

// MergeManifest merges a user manifest fragment into the generated one.
// Arrays concatenate with generated items first, tables merge key by key,
// and any other value (including a kind mismatch) is taken from user.
// Neither input is modified.
func MergeManifest(generated, user map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(generated)+len(user))
	for k, v := range generated {
		out[k] = v
	}
	for k, uv := range user {
		gv, ok := out[k]
		if !ok {
			out[k] = uv
			continue
		}
		out[k] = mergeValue(gv, uv)
	}
	return out
}

func mergeValue(generated, user interface{}) interface{} {
	if gt, ok := generated.(map[string]interface{}); ok {
		if ut, ok := user.(map[string]interface{}); ok {
			return MergeManifest(gt, ut)
		}
		return user
	}
	if ga, ok := toSlice(generated); ok {
		if ua, ok := toSlice(user); ok {
			merged := make([]interface{}, 0, len(ga)+len(ua))
			merged = append(merged, ga...)
			return append(merged, ua...)
		}
	}
	return user
}

// toSlice normalizes the array shapes produced by the TOML decoder
func toSlice(v interface{}) ([]interface{}, bool) {
	switch a := v.(type) {
	case []interface{}:
		return a, true
	case []map[string]interface{}:
		out := make([]interface{}, len(a))
		for i := range a {
			out[i] = a[i]
		}
		return out, true
	case []string:
		out := make([]interface{}, len(a))
		for i := range a {
			out[i] = a[i]
		}
		return out, true
	}
	return nil, false
}

// DecodeManifest parses a TOML manifest fragment
func DecodeManifest(data []byte) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}

// EncodeManifest renders a manifest. Keys are sorted, so equal manifests
// encode to equal bytes.
func EncodeManifest(m map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// table returns a nested table of a manifest
func table(m map[string]interface{}, keys ...string) map[string]interface{} {
	cur := m
	for _, k := range keys {
		next, ok := cur[k].(map[string]interface{})
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// stringValue returns a string entry of a manifest table
func stringValue(t map[string]interface{}, key string) string {
	s, _ := t[key].(string)
	return s
}

// stringList returns the string items of an array entry, skipping other
// kinds
func stringList(t map[string]interface{}, key string) []string {
	items, ok := toSlice(t[key])
	if !ok {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, item := range items {
		if s, ok := item.(string); ok && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// manifestDependencies lists the dependency table of a merged manifest in
// name order
func manifestDependencies(m map[string]interface{}) []ManifestDependency {
	deps := table(m, "dependencies")
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []ManifestDependency
	for _, name := range names {
		entry, ok := deps[name].(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, ManifestDependency{
			Name:       name,
			Version:    stringValue(entry, "version"),
			ModulePath: stringValue(entry, "module"),
			Path:       stringValue(entry, "path"),
		})
	}
	return out
}
