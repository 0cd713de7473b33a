package images

import "fmt"

// requestItem is one normalized element of a reconciliation request. A
// creation carries the uploaded file it was matched to; an update carries
// only metadata.
type requestItem struct {
	meta MetadataItem
	file *UploadedFile
}

// normalize merges an ordered list of uploaded files with the declared
// metadata items. Each item referencing a file index is attached to that
// file; files left unreferenced get a synthesized default item appended in
// file order, with main/active/delete all false. Declared order is
// preserved. The merge is a pure transformation; it mutates neither input.
func normalize(files []*UploadedFile, items []MetadataItem) ([]requestItem, error) {
	if len(files) == 0 {
		return nil, newError(KindInvalidArgument, "file list is empty")
	}

	for i, f := range files {
		if err := checkUpload(i, f); err != nil {
			return nil, err
		}
	}

	claimed := make(map[int]bool, len(files))
	out := make([]requestItem, 0, len(items)+len(files))

	for _, item := range items {
		it := requestItem{meta: item}
		if item.FileIndex != nil {
			idx := *item.FileIndex
			if idx < 0 || idx >= len(files) {
				return nil, newError(KindNotFound, "referenced image not found")
			}
			if claimed[idx] {
				return nil, newError(KindInvalidArgument, "duplicated file index")
			}
			claimed[idx] = true
			it.file = files[idx]
		}
		out = append(out, it)
	}

	for i, f := range files {
		if claimed[i] {
			continue
		}
		idx := i
		off := false
		out = append(out, requestItem{
			meta: MetadataItem{
				FileIndex: &idx,
				Main:      &off,
				Active:    &off,
				Delete:    &off,
			},
			file: f,
		})
	}

	return out, nil
}

// checkUpload rejects uploads missing any of the structural fields a
// well-formed multipart file carries.
func checkUpload(index int, f *UploadedFile) error {
	if f == nil {
		return newError(KindInvalidArgument, fmt.Sprintf("uploaded file %d is missing", index))
	}
	if f.OriginalName == "" {
		return newError(KindInvalidArgument, fmt.Sprintf("uploaded file %d has no filename", index))
	}
	if f.FieldName == "" || f.Encoding == "" || f.MimeType == "" {
		return newError(KindInvalidArgument, fmt.Sprintf("uploaded file %d is malformed", index))
	}
	if f.Size <= 0 || len(f.Content) == 0 {
		return newError(KindInvalidArgument, fmt.Sprintf("uploaded file %d is empty", index))
	}
	return nil
}
