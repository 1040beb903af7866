package vfs

import (
	"context"
	"io"
	"mime/multipart"
	"strings"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount"
)

// DownloadFile opens the content of the file id as attachment.
func (v *VirtualFileSystem) DownloadFile(ctx context.Context, id string) (*mount.ContentStream, error) {
	return v.GetContent(ctx, id)
}

// DownloadZip streams the folder id as zip attachment.
func (v *VirtualFileSystem) DownloadZip(ctx context.Context, folderID string) (*mount.ContentStream, error) {
	return v.ExportZip(ctx, folderID)
}

// UploadFile creates a file below parentID from a multipart form holding a
// single file part. The optional "name" field overrides the part's file
// name, "overwrite" replaces the content of an existing file.
func (v *VirtualFileSystem) UploadFile(ctx context.Context, parentID string, r io.Reader, boundary string) (*data.Item, error) {
	parent, err := v.folderByID(ctx, parentID)
	if err != nil {
		return nil, err
	}

	form, err := v.readForm(r, boundary)
	if err != nil {
		return nil, err
	}
	defer form.RemoveAll()

	header, err := singleFile(form)
	if err != nil {
		return nil, err
	}

	name := formValue(form, "name")
	if name == "" {
		name = header.Filename
	}
	mediaType := header.Header.Get("Content-Type")

	content, err := header.Open()
	if err != nil {
		return nil, errors.Server(err, "failed to open uploaded file '%s'", header.Filename)
	}
	defer content.Close()

	existing, err := parent.GetChild(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil && formBool(form, "overwrite") {
		if err := existing.UpdateContent(ctx, content, mediaType, ""); err != nil {
			return nil, err
		}
		return v.item(ctx, existing, nil)
	}

	created, err := parent.CreateFile(ctx, name, mediaType, content)
	return v.item(ctx, created, err)
}

// UploadZip extracts the single file part of a multipart form into the
// folder parentID. It honors the "overwrite" and "skipFirstLevel" fields.
func (v *VirtualFileSystem) UploadZip(ctx context.Context, parentID string, r io.Reader, boundary string) error {
	form, err := v.readForm(r, boundary)
	if err != nil {
		return err
	}
	defer form.RemoveAll()

	header, err := singleFile(form)
	if err != nil {
		return err
	}

	content, err := header.Open()
	if err != nil {
		return errors.Server(err, "failed to open uploaded archive '%s'", header.Filename)
	}
	defer content.Close()

	return v.ImportZip(ctx, parentID, content, formBool(form, "overwrite"), formBool(form, "skipFirstLevel"))
}

func (v *VirtualFileSystem) readForm(r io.Reader, boundary string) (*multipart.Form, error) {
	form, err := multipart.NewReader(r, boundary).ReadForm(v.options.UploadMemory)
	if err != nil {
		return nil, errors.Server(err, "failed to parse multipart form")
	}
	return form, nil
}

func singleFile(form *multipart.Form) (*multipart.FileHeader, error) {
	var found *multipart.FileHeader
	for _, headers := range form.File {
		for _, header := range headers {
			if found != nil {
				return nil, errors.Server(nil, "more than one file part in upload")
			}
			found = header
		}
	}
	if found == nil {
		return nil, errors.Server(nil, "no file part in upload")
	}
	return found, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func formBool(form *multipart.Form, key string) bool {
	return strings.EqualFold(formValue(form, key), "true")
}

// Clone copies srcPath of source below parentPath of this file system.
// An empty name keeps the source name.
//
// Deprecated: Clone copies item by item without any transactional guarantee
// and leaves partial results behind on failure. Use CopyTo within one mount.
func (v *VirtualFileSystem) Clone(ctx context.Context, source *VirtualFileSystem, srcPath, parentPath, name string) (*data.Item, error) {
	src, err := source.fileByPath(ctx, srcPath)
	if err != nil {
		return nil, err
	}

	parent, err := v.fileByPath(ctx, parentPath)
	if err != nil {
		return nil, err
	}
	if !parent.IsFolder() {
		return nil, errors.NotAFolder(parent.Path().String())
	}

	if name == "" {
		name = src.Name()
	}
	if name == "" {
		name = source.Tenant()
	}

	v.log.Info("Cloning '%s' of tenant '%s' into '%s'", src.Path(), source.Tenant(), parent.Path())
	cloned, err := clone(ctx, src, parent, name)
	return v.item(ctx, cloned, err)
}

func clone(ctx context.Context, src, parent *mount.VirtualFile, name string) (*mount.VirtualFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if src.IsFile() {
		content, err := src.GetContent(ctx)
		if err != nil {
			return nil, err
		}
		defer content.Close()

		return parent.CreateFile(ctx, name, content.MediaType, content)
	}

	folder, err := parent.CreateFolder(ctx, name)
	if err != nil {
		return nil, err
	}

	children, err := src.Children(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if _, err := clone(ctx, child, folder, child.Name()); err != nil {
			return nil, err
		}
	}
	return folder, nil
}
