package downloader

import (
	"encoding/base64"
	"path/filepath"

	"coverfetch/model"
)

// DefaultBaseDir is where thumbnails land when no directory is configured.
const DefaultBaseDir = "images"

// TargetPath returns {baseDir}/{urlsafe_base64(name)}@{id}.jpg. The name is
// encoded so arbitrary track titles stay filesystem-safe; the id keeps
// same-named songs apart.
func TargetPath(baseDir string, song model.Song) string {
	encoded := base64.URLEncoding.EncodeToString([]byte(song.Name))
	return filepath.Join(baseDir, encoded+"@"+song.ID+".jpg")
}
