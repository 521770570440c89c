package images

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"parkwatch/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// MaxWidth bounds the ?w= resize parameter.
const MaxWidth = 2048

// Handler serves location images from dir. With ?w=N the image is scaled to
// N pixels wide, aspect preserved, and re-encoded as JPEG.
func Handler(dir string, log *zap.Logger) httprouter.Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		name := filepath.Base(ps.ByName("name"))
		if name == "." || name == "/" || name == ".." {
			utils.RespondWithMessage(w, http.StatusNotFound, "Image not found.")
			return
		}
		path := filepath.Join(dir, name)

		width, err := parseWidth(r.URL.Query().Get("w"))
		if err != nil {
			utils.RespondWithMessage(w, http.StatusBadRequest, "Invalid width.")
			return
		}

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			utils.RespondWithMessage(w, http.StatusNotFound, "Image not found.")
			return
		}

		if width == 0 {
			http.ServeFile(w, r, path)
			return
		}

		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if errors.Is(err, fs.ErrNotExist) {
			utils.RespondWithMessage(w, http.StatusNotFound, "Image not found.")
			return
		}
		if err != nil {
			log.Warn("decode image", zap.String("name", name), zap.Error(err))
			utils.RespondWithServerError(w, "Failed to decode image.", err)
			return
		}

		resized := imaging.Resize(img, width, 0, imaging.Lanczos)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if err := imaging.Encode(w, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
			log.Warn("encode image", zap.String("name", name), zap.Error(err))
		}
	}
}

// parseWidth returns 0 when no resize was asked for.
func parseWidth(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > MaxWidth {
		return 0, errors.New("width out of range")
	}
	return n, nil
}
