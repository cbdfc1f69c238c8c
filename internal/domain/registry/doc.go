// Package registry holds the topic content registry: a map from topic key to
// label, badge, color token, description and intro text.
//
// Topics come from the embedded seed corpus, a content directory, or a
// remote URL. Files may be YAML, TOML or JSON and hold a top-level "topics"
// list. Text that is not UTF-8 is detected and transcoded on load.
package registry
