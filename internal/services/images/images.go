package images

import "time"

// State is the visibility of an image. It is never stored; it is always
// derived from the record's Active flag and DeletedAt timestamp so the two
// can never disagree.
type State string

const (
	StatePublic  State = "public"
	StatePrivate State = "private"
	StateDeleted State = "deleted"
)

// Record is one stored image belonging to exactly one product. Both paths
// encode the same state and the same ID and are rewritten together whenever
// the derived state changes.
type Record struct {
	ID            string     `json:"id"`
	ProductID     string     `json:"product_id"`
	Name          string     `json:"name,omitempty"`
	Description   string     `json:"description,omitempty"`
	OriginalPath  string     `json:"original_path"`
	ThumbnailPath string     `json:"thumbnail_path"`
	Active        bool       `json:"active"`
	Main          bool       `json:"main"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

func (r *Record) State() State {
	if r.DeletedAt != nil {
		return StateDeleted
	}
	if r.Active {
		return StatePublic
	}
	return StatePrivate
}

// UploadedFile is one binary upload as handed over by the transport layer.
type UploadedFile struct {
	FieldName    string `json:"field_name"`
	OriginalName string `json:"original_name"`
	Encoding     string `json:"encoding"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	Content      []byte `json:"-"`
}

// MetadataItem describes one requested image operation. An item with a
// FileIndex is a creation, an item with an ImageID is an update; pointer
// fields carry partial-patch semantics, a nil field leaves the stored value
// untouched.
type MetadataItem struct {
	ImageID     *string `json:"image_id,omitempty" validate:"omitempty,uuid4"`
	FileIndex   *int    `json:"file_index,omitempty" validate:"omitempty,gte=0"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Main        *bool   `json:"main,omitempty"`
	Active      *bool   `json:"active,omitempty"`
	Delete      *bool   `json:"delete,omitempty"`
}

// ReconciliationData is the metadata container accompanying a bulk save.
type ReconciliationData struct {
	Items []MetadataItem `json:"items" validate:"dive"`
}
