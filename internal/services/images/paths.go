package images

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ResolvePath maps a visibility state and an image identity to its storage
// object path: /{state}/products/{productID}/images/{imageID}, with a
// ".thumbnail" marker for the derived file and the original extension
// appended when known. The id checks are a safety net; callers validate
// before resolving.
func ResolvePath(state State, productID, imageID, ext string, thumbnail bool) (string, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return "", newError(KindInvalidArgument, "product id is not a valid identifier")
	}
	if _, err := uuid.Parse(imageID); err != nil {
		return "", newError(KindInvalidArgument, "image id is not a valid identifier")
	}

	path := fmt.Sprintf("/%s/products/%s/images/%s", state, productID, imageID)
	if thumbnail {
		path += ".thumbnail"
	}
	if ext != "" {
		path += "." + ext
	}

	return path, nil
}

// extensionFromPath recovers the file extension from a previously resolved
// original path. Image ids are uuids, so the first dot after the last slash
// starts the extension.
func extensionFromPath(path string) string {
	base := path[strings.LastIndex(path, "/")+1:]
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return ""
}

// extensionFromFilename extracts the extension of an uploaded filename,
// without the leading dot. Filenames without a dot yield an empty string.
func extensionFromFilename(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return ""
}
