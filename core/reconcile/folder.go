package reconcile

import (
	"context"

	"items-planning/core/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FolderResolver gets or creates a remote folder by name.
//
// Concurrent resolves of the same name inside this process share one remote
// round trip. Separate processes can still both create the folder.
type FolderResolver struct {
	folders FolderService
	group   singleflight.Group
	logger  *zap.Logger
}

// NewFolderResolver creates a resolver over the remote folder service.
func NewFolderResolver(folders FolderService, log *zap.Logger) *FolderResolver {
	return &FolderResolver{folders: folders, logger: logger.OrNop(log)}
}

// Resolve returns the remote id of the folder called name, creating the folder when
// no folder (active or not) has that name. It returns 0 when the folder exists but
// has no remote id yet; 0 means "no folder" and is not an error.
func (r *FolderResolver) Resolve(ctx context.Context, name string) (int, error) {
	v, err, _ := r.group.Do(name, func() (any, error) {
		return r.resolve(ctx, name)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (r *FolderResolver) resolve(ctx context.Context, name string) (int, error) {
	index, err := r.index(ctx)
	if err != nil {
		return 0, err
	}
	if id, ok := index[name]; ok {
		return id, nil
	}

	if err := r.folders.CreateFolder(ctx, name, "", nil); err != nil {
		return 0, remoteError("reconcile.resolve_folder", "create folder", err)
	}
	r.logger.Info("Created folder", zap.String("folder", name))

	// The service does not return the new id; list again to learn it.
	index, err = r.index(ctx)
	if err != nil {
		return 0, err
	}
	id, ok := index[name]
	if !ok || id == 0 {
		r.logger.Warn("Folder has no remote id after creation", zap.String("folder", name))
	}
	return id, nil
}

// index maps folder names to remote ids. A name whose folders all lack a remote id
// maps to 0; a folder without one never hides a namesake that has one.
func (r *FolderResolver) index(ctx context.Context) (map[string]int, error) {
	folders, err := r.folders.ListFolders(ctx, true)
	if err != nil {
		return nil, remoteError("reconcile.resolve_folder", "list folders", err)
	}

	index := make(map[string]int, len(folders))
	for _, f := range folders {
		if f.RemoteID != nil {
			index[f.Name] = *f.RemoteID
			continue
		}
		if _, ok := index[f.Name]; !ok {
			index[f.Name] = 0
		}
	}
	return index, nil
}
