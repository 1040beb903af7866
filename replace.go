package vfs

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount"
)

const (
	// ReplaceModeVariable substitutes ${find} placeholders in a single pass.
	ReplaceModeVariable = "variable_singlepass"
	// ReplaceModeText replaces every literal occurrence of find.
	ReplaceModeText = "text_multipass"
)

var variablePattern = regexp.MustCompile(`\$\{([^}]*)\}`)

// Variable is a single replacement. An empty ReplaceMode is treated as
// ReplaceModeVariable.
type Variable struct {
	Find        string `json:"find"`
	Replace     string `json:"replace"`
	ReplaceMode string `json:"replacemode,omitempty"`
}

// ReplacementSet applies Entries to every file whose name or path relative
// to the replace root fully matches one of the Files expressions.
type ReplacementSet struct {
	Files   []string   `json:"files"`
	Entries []Variable `json:"entries"`
}

type replacements struct {
	variables map[string]string
	texts     []Variable
}

// Replace rewrites the content of matching files below the folder at path.
// Files whose content does not change keep their current version.
func (v *VirtualFileSystem) Replace(ctx context.Context, path string, sets []ReplacementSet, token string) error {
	root, err := v.fileByPath(ctx, path)
	if err != nil {
		return err
	}
	if !root.IsFolder() {
		return errors.InvalidArgument("'%s' must be a folder", root.Path())
	}

	patterns := make([][]*regexp.Regexp, len(sets))
	for i, set := range sets {
		for _, expr := range set.Files {
			re, err := regexp.Compile(`^(?:` + expr + `)$`)
			if err != nil {
				return errors.InvalidArgument("invalid file expression '%s': %v", expr, err)
			}
			patterns[i] = append(patterns[i], re)
		}
	}

	files, err := descendantFiles(ctx, root)
	if err != nil {
		return err
	}

	for _, file := range files {
		relative := file.Path().Relative(root.Path())

		var r *replacements
		for i, set := range sets {
			if !matchesAny(patterns[i], file.Name(), relative) {
				continue
			}
			if r == nil {
				r = &replacements{variables: map[string]string{}}
			}
			for _, entry := range set.Entries {
				switch entry.ReplaceMode {
				case "", ReplaceModeVariable:
					r.variables[entry.Find] = entry.Replace
				case ReplaceModeText:
					r.texts = append(r.texts, entry)
				default:
					return errors.InvalidArgument("unknown replace mode '%s'", entry.ReplaceMode)
				}
			}
		}

		if r == nil {
			continue
		}
		if err := v.replaceContent(ctx, file, r, token); err != nil {
			return err
		}
	}
	return nil
}

func (v *VirtualFileSystem) replaceContent(ctx context.Context, file *mount.VirtualFile, r *replacements, token string) error {
	stream, err := file.GetContent(ctx)
	if err != nil {
		return err
	}
	content, err := io.ReadAll(stream)
	stream.Close()
	if err != nil {
		return errors.Server(err, "failed to read '%s'", file.Path())
	}

	modified := resolveVariables(string(content), r.variables)
	for _, entry := range r.texts {
		modified = strings.ReplaceAll(modified, entry.Find, entry.Replace)
	}

	if modified == string(content) {
		return nil
	}

	v.log.Debug("Replacing content of '%s'", file.Path())
	return file.UpdateContent(ctx, bytes.NewReader([]byte(modified)), "", token)
}

// resolveVariables replaces ${name} with its value. Unknown names and the
// substituted values are left untouched.
func resolveVariables(content string, variables map[string]string) string {
	if len(variables) == 0 {
		return content
	}
	return variablePattern.ReplaceAllStringFunc(content, func(match string) string {
		if value, ok := variables[match[2:len(match)-1]]; ok {
			return value
		}
		return match
	})
}

func matchesAny(patterns []*regexp.Regexp, values ...string) bool {
	for _, re := range patterns {
		for _, value := range values {
			if re.MatchString(value) {
				return true
			}
		}
	}
	return false
}

// descendantFiles lists the readable files below folder in breadth-first
// name order.
func descendantFiles(ctx context.Context, folder *mount.VirtualFile) ([]*mount.VirtualFile, error) {
	var files []*mount.VirtualFile
	queue := []*mount.VirtualFile{folder}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		children, err := cur.Children(ctx, "")
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if child.IsFolder() {
				queue = append(queue, child)
			} else {
				files = append(files, child)
			}
		}
	}
	return files, ctx.Err()
}
