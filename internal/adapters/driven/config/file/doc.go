// Package file keeps docmatch's user-editable state under ~/.docmatch.
//
//   - ConfigStore: config.toml, flat dotted keys over nested tables
//   - PromptStore: prompts/*.txt, seeded from the embedded defaults
package file
