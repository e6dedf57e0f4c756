// Package validate checks user-supplied pod parameters before they reach
// the provider.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/comfyrun/comfyrun/internal/gpu"
	"github.com/comfyrun/comfyrun/internal/pod"
)

const (
	minNameLen = 3
	maxNameLen = 50

	minContainerDiskGB = 50
	maxContainerDiskGB = 500
	minVolumeDiskGB    = 1
	maxVolumeDiskGB    = 1000
	minPort            = 1024
	maxPort            = 65535
)

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// PodName checks that a pod name is usable as a provider resource name.
func PodName(name string) error {
	if len(name) < minNameLen || len(name) > maxNameLen {
		return fmt.Errorf("pod name must be %d-%d characters, got %d", minNameLen, maxNameLen, len(name))
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("pod name may only contain letters, digits, hyphens and underscores")
	}
	return nil
}

// GPUID checks that the GPU type exists in the catalog.
func GPUID(catalog *gpu.Catalog, id string) error {
	if id == "" {
		return fmt.Errorf("gpu_id is required")
	}
	if _, ok := catalog.ByID(id); !ok {
		return fmt.Errorf("unknown gpu_id %q; see /api/gpus for available types", id)
	}
	return nil
}

// PodConfig checks disk sizes, port range, and model/node names.
func PodConfig(cfg pod.Config) error {
	if cfg.ContainerDiskGB < minContainerDiskGB || cfg.ContainerDiskGB > maxContainerDiskGB {
		return fmt.Errorf("container_disk_gb must be %d-%d, got %d", minContainerDiskGB, maxContainerDiskGB, cfg.ContainerDiskGB)
	}
	if cfg.VolumeDiskGB < minVolumeDiskGB || cfg.VolumeDiskGB > maxVolumeDiskGB {
		return fmt.Errorf("volume_disk_gb must be %d-%d, got %d", minVolumeDiskGB, maxVolumeDiskGB, cfg.VolumeDiskGB)
	}
	if cfg.Port < minPort || cfg.Port > maxPort {
		return fmt.Errorf("port must be %d-%d, got %d", minPort, maxPort, cfg.Port)
	}
	if err := knownNames("model", cfg.Models, pod.KnownModels()); err != nil {
		return err
	}
	return knownNames("custom node", cfg.CustomNodes, pod.KnownCustomNodes())
}

// CreateRequest checks a full pod creation request.
func CreateRequest(catalog *gpu.Catalog, name, gpuID string, cfg pod.Config) error {
	if err := PodName(name); err != nil {
		return err
	}
	if err := GPUID(catalog, gpuID); err != nil {
		return err
	}
	return PodConfig(cfg)
}

func knownNames(kind string, got, known []string) error {
	set := make(map[string]bool, len(known))
	for _, k := range known {
		set[k] = true
	}
	for _, g := range got {
		if !set[g] {
			sort.Strings(known)
			return fmt.Errorf("unknown %s %q; known: %s", kind, g, strings.Join(known, ", "))
		}
	}
	return nil
}
