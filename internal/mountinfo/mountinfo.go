// Package mountinfo finds the mount that holds a given path.
package mountinfo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	mount "k8s.io/mount-utils"
)

var ErrNotFound = errors.New("no mount point found")

type Mount struct {
	Device string
	Path   string
	Type   string
}

type Resolver struct {
	mounter mount.Interface
}

func NewResolver(mounter mount.Interface) *Resolver {
	return &Resolver{mounter: mounter}
}

// Lookup returns the mount the file p lives on. p must exist; symlinks are
// resolved before matching.
func (r *Resolver) Lookup(p string) (*Mount, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	mps, err := r.mounter.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list mounts: %w", err)
	}

	mp, ok := findMount(mps, abs)
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, abs)
	}

	return &Mount{Device: mp.Device, Path: mp.Path, Type: mp.Type}, nil
}

// findMount picks the deepest mount point containing p. Later entries win
// ties, matching how stacked mounts shadow earlier ones.
func findMount(mps []mount.MountPoint, p string) (mount.MountPoint, bool) {
	var (
		best  mount.MountPoint
		found bool
	)
	for _, mp := range mps {
		if !contains(mp.Path, p) {
			continue
		}
		if !found || len(mp.Path) >= len(best.Path) {
			best = mp
			found = true
		}
	}
	return best, found
}

func contains(dir, p string) bool {
	dir = filepath.Clean(dir)
	if dir == "/" {
		return strings.HasPrefix(p, "/")
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}
