package state

import (
	"context"
	"errors"
	"slices"

	"github.com/five82/nixtrack/internal/nixtrack"
)

// FilesAPI is the file attachment slice of the API client.
type FilesAPI interface {
	ListFiles(ctx context.Context, parent nixtrack.FileParent, parentID int64) ([]nixtrack.File, error)
	UploadFile(ctx context.Context, parent nixtrack.FileParent, parentID int64, up nixtrack.Upload, description string, mainPhoto bool) (nixtrack.File, error)
	DeleteFile(ctx context.Context, parent nixtrack.FileParent, parentID, fileID int64) error
	SetMainFile(ctx context.Context, parent nixtrack.FileParent, parentID, fileID int64) (nixtrack.File, error)
}

// ErrNoGalleryParent is returned by file mutations before Load has resolved
// an owner.
var ErrNoGalleryParent = errors.New("gallery has no loaded owner")

// GalleryState is a copy of one owner's attachments.
type GalleryState struct {
	Parent   nixtrack.FileParent
	ParentID int64
	Files    []nixtrack.File
	Loading  bool
	Error    string
}

// Gallery caches the attachments of one vehicle, agent or order.
type Gallery struct {
	core
	api    FilesAPI
	parent nixtrack.FileParent

	parentID int64
	files    []nixtrack.File
}

// NewGallery builds an empty gallery for parent's attachments.
func NewGallery(api FilesAPI, parent nixtrack.FileParent, opts Options) *Gallery {
	g := &Gallery{api: api, parent: parent, files: []nixtrack.File{}}
	g.setup(string(parent)+"_files", opts)
	return g
}

// Snapshot returns a copy of the current state.
func (g *Gallery) Snapshot() GalleryState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return GalleryState{
		Parent:   g.parent,
		ParentID: g.parentID,
		Files:    slices.Clone(g.files),
		Loading:  g.track.loading(),
		Error:    g.err,
	}
}

// Load replaces the gallery with parentID's attachments.
func (g *Gallery) Load(ctx context.Context, parentID int64) error {
	var files []nixtrack.File
	return g.run(OpList, true, func() error {
		var err error
		files, err = g.api.ListFiles(ctx, g.parent, parentID)
		return err
	}, func(err error) {
		if err != nil {
			g.fail(err, "Error al cargar archivos")
			return
		}
		g.parentID = parentID
		g.files = slices.Clone(files)
		if g.files == nil {
			g.files = []nixtrack.File{}
		}
	})
}

// Upload attaches a file to the loaded owner and appends it.
func (g *Gallery) Upload(ctx context.Context, up nixtrack.Upload, description string, mainPhoto bool) (nixtrack.File, error) {
	parentID := g.currentParent()
	if parentID == 0 {
		return nixtrack.File{}, ErrNoGalleryParent
	}
	var file nixtrack.File
	err := g.run(OpUpload, false, func() error {
		var err error
		file, err = g.api.UploadFile(ctx, g.parent, parentID, up, description, mainPhoto)
		return err
	}, func(err error) {
		if err != nil {
			g.fail(err, "Error al subir archivo")
			return
		}
		if g.parentID != parentID {
			return
		}
		if file.IsMainPhoto.Bool() {
			g.markMain(-1)
		}
		g.files = append(g.files, file)
	})
	g.notify(err, "Archivo subido exitosamente", "Error al subir archivo")
	return file, err
}

// Delete removes an attachment.
func (g *Gallery) Delete(ctx context.Context, fileID int64) error {
	parentID := g.currentParent()
	if parentID == 0 {
		return ErrNoGalleryParent
	}
	err := g.run(OpDelete, false, func() error {
		return g.api.DeleteFile(ctx, g.parent, parentID, fileID)
	}, func(err error) {
		if err != nil {
			g.fail(err, "Error al eliminar archivo")
			return
		}
		g.files = slices.DeleteFunc(g.files, func(f nixtrack.File) bool { return f.ID == fileID })
	})
	g.notify(err, "Archivo eliminado exitosamente", "Error al eliminar archivo")
	return err
}

// SetMain promotes an attachment to main photo; every other file loses the flag.
func (g *Gallery) SetMain(ctx context.Context, fileID int64) error {
	parentID := g.currentParent()
	if parentID == 0 {
		return ErrNoGalleryParent
	}
	err := g.run(OpSetMain, false, func() error {
		_, err := g.api.SetMainFile(ctx, g.parent, parentID, fileID)
		return err
	}, func(err error) {
		if err != nil {
			g.fail(err, "Error al establecer foto principal")
			return
		}
		if g.parentID == parentID {
			g.markMain(fileID)
		}
	})
	g.notify(err, "Foto principal actualizada", "Error al establecer foto principal")
	return err
}

func (g *Gallery) currentParent() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.parentID
}

// markMain flags fileID as main photo and clears the flag elsewhere. Callers
// hold the write lock.
func (g *Gallery) markMain(fileID int64) {
	for i := range g.files {
		g.files[i].IsMainPhoto = nixtrack.FlagOf(g.files[i].ID == fileID)
	}
}
