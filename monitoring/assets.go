package monitoring

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
)

// AssetDirEnv names a directory to serve the monitor page from instead of
// the copy built into the binary. Edits to the page then show up on reload.
const AssetDirEnv = "TLBSIM_MONITOR_ASSETS"

//go:embed web
var embeddedAssets embed.FS

func pageAssets() http.FileSystem {
	if dir := os.Getenv(AssetDirEnv); dir != "" {
		return http.Dir(dir)
	}

	sub, err := fs.Sub(embeddedAssets, "web")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}
