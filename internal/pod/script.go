package pod

import (
	"fmt"
	"strings"
)

// Known model download sources, keyed by the short names accepted in a
// pod config's models list.
var modelSources = map[string]modelSource{
	"sd15": {
		URL:  "https://huggingface.co/runwayml/stable-diffusion-v1-5/resolve/main/v1-5-pruned-emaonly.safetensors",
		Path: "models/checkpoints/v1-5-pruned-emaonly.safetensors",
	},
	"sdxl": {
		URL:  "https://huggingface.co/stabilityai/stable-diffusion-xl-base-1.0/resolve/main/sd_xl_base_1.0.safetensors",
		Path: "models/checkpoints/sd_xl_base_1.0.safetensors",
	},
	"sdxl-refiner": {
		URL:  "https://huggingface.co/stabilityai/stable-diffusion-xl-refiner-1.0/resolve/main/sd_xl_refiner_1.0.safetensors",
		Path: "models/checkpoints/sd_xl_refiner_1.0.safetensors",
	},
	"flux-schnell": {
		URL:  "https://huggingface.co/black-forest-labs/FLUX.1-schnell/resolve/main/flux1-schnell.safetensors",
		Path: "models/unet/flux1-schnell.safetensors",
	},
}

type modelSource struct {
	URL  string
	Path string
}

// Known custom node repositories, keyed by short name.
var customNodeSources = map[string]string{
	"manager":        "https://github.com/ltdrdata/ComfyUI-Manager",
	"impact-pack":    "https://github.com/ltdrdata/ComfyUI-Impact-Pack",
	"controlnet-aux": "https://github.com/Fannovel16/comfyui_controlnet_aux",
	"ipadapter":      "https://github.com/cubiq/ComfyUI_IPAdapter_plus",
}

const comfyRoot = "/workspace/ComfyUI"

// BuildStartScript assembles the container entry script: clone ComfyUI if
// missing, install requested custom nodes, fetch requested models, then
// launch the server on the configured port. The result is passed to the
// container as `bash -c <script>`. Unknown model or node names are skipped
// silently; validation rejects them before a pod is created.
func BuildStartScript(cfg Config) string {
	var b strings.Builder
	b.WriteString("cd /workspace && ")
	fmt.Fprintf(&b, "if [ ! -d %s ]; then git clone https://github.com/comfyanonymous/ComfyUI %s; fi && ", comfyRoot, comfyRoot)
	fmt.Fprintf(&b, "cd %s && pip install -r requirements.txt && ", comfyRoot)

	for _, name := range cfg.CustomNodes {
		repo, ok := customNodeSources[name]
		if !ok {
			continue
		}
		dir := repo[strings.LastIndex(repo, "/")+1:]
		fmt.Fprintf(&b, "if [ ! -d custom_nodes/%s ]; then git clone %s custom_nodes/%s; fi && ", dir, repo, dir)
	}
	for _, name := range cfg.Models {
		src, ok := modelSources[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "if [ ! -f %s ]; then wget -q -O %s %s; fi && ", src.Path, src.Path, src.URL)
	}

	fmt.Fprintf(&b, "python main.py --listen 0.0.0.0 --port %d", cfg.Port)
	return b.String()
}

// KnownModels lists the model short names the start command understands.
func KnownModels() []string {
	out := make([]string, 0, len(modelSources))
	for k := range modelSources {
		out = append(out, k)
	}
	return out
}

// KnownCustomNodes lists the custom node short names the start command
// understands.
func KnownCustomNodes() []string {
	out := make([]string, 0, len(customNodeSources))
	for k := range customNodeSources {
		out = append(out, k)
	}
	return out
}
