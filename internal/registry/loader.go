package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"postured/internal/common/fsutil"
	"postured/pkg/types"
)

// DefaultDevDir is where video4linux exposes capture nodes.
const DefaultDevDir = "/dev"

const devicePrefix = "video"

// LoadDevices scans dir for videoN device nodes and returns them sorted by index.
// Entries that are not named videoN (e.g. video-loopback, v4l-subdev0) are ignored.
func LoadDevices(dir string) ([]types.Device, error) {
	if dir == "" {
		dir = DefaultDevDir
	}
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var devices []types.Device
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		idx, ok := deviceIndex(e.Name())
		if !ok {
			continue
		}
		devices = append(devices, types.Device{Index: idx, Name: e.Name(), Path: filepath.Join(abs, e.Name())})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Index < devices[j].Index })
	return devices, nil
}

// DevicePath returns the node path for a camera index under dir.
func DevicePath(dir string, index int) string {
	if dir == "" {
		dir = DefaultDevDir
	}
	return filepath.Join(dir, devicePrefix+strconv.Itoa(index))
}

func deviceIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, devicePrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, devicePrefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
