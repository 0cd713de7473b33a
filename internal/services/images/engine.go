package images

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/catalogworks/catalog-service/internal/config"
	"github.com/catalogworks/catalog-service/internal/types"
)

// ParentLookup loads a product together with its currently persisted images.
// A missing product is reported as (nil, nil, nil), not as an error.
type ParentLookup interface {
	GetProductWithImages(ctx context.Context, productID string) (*types.Product, []Record, error)
}

// BlobStore holds originals and thumbnails addressed by resolved path.
type BlobStore interface {
	Save(ctx context.Context, file *UploadedFile, path string) error
	Move(ctx context.Context, newPath, oldPath string) error
}

// ThumbnailGenerator produces the derived image for a new upload.
type ThumbnailGenerator interface {
	Generate(file *UploadedFile) (*UploadedFile, error)
}

// ImageRepository persists image records scoped to a product. FindAllForProduct
// returns records ordered by name ascending, then active ascending.
type ImageRepository interface {
	SaveAll(ctx context.Context, records []Record) error
	FindAllForProduct(ctx context.Context, productID string) ([]Record, error)
}

// Locker serializes bulk saves per product. Acquire reports ok=false when the
// key is already held; the returned release func must be called when done.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), bool, error)
}

// Engine reconciles a mixed batch of new uploads and metadata for new and
// existing images of one product into create, update and soft-delete
// operations against the blob store and the image repository.
type Engine struct {
	parents  ParentLookup
	repo     ImageRepository
	blobs    BlobStore
	thumbs   ThumbnailGenerator
	locks    Locker
	cfg      config.Images
	validate *validator.Validate
}

func NewEngine(parents ParentLookup, repo ImageRepository, blobs BlobStore, thumbs ThumbnailGenerator, locks Locker, cfg config.Images) *Engine {
	return &Engine{
		parents:  parents,
		repo:     repo,
		blobs:    blobs,
		thumbs:   thumbs,
		locks:    locks,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// BulkSave validates and applies a reconciliation request for one product and
// returns the product's resulting image set.
//
// Validation is fully precomputed over the in-memory projection before any
// store is touched, and the first violation wins. Once the execution loop
// starts there is no rollback: the blob store and the repository are
// independent stores with no spanning transaction, so a storage failure
// mid-loop can leave earlier blobs written. Callers must treat partial
// completion as a documented risk.
func (e *Engine) BulkSave(ctx context.Context, productID string, files []*UploadedFile, raw json.RawMessage) ([]Record, error) {
	if productID == "" {
		return nil, newError(KindInvalidArgument, "product id is required")
	}
	if _, err := uuid.Parse(productID); err != nil {
		return nil, newError(KindInvalidArgument, "product id is not a valid identifier")
	}

	data, err := parseReconciliationData(e.validate, raw)
	if err != nil {
		return nil, err
	}

	release, ok, err := e.locks.Acquire(ctx, productID)
	if err != nil {
		return nil, wrapError(KindStorage, "failed to acquire product lock", err)
	}
	if !ok {
		return nil, newError(KindConflict, "another bulk save is in progress for this product")
	}
	defer release()

	product, current, err := e.parents.GetProductWithImages(ctx, productID)
	if err != nil {
		return nil, wrapError(KindStorage, "failed to load product", err)
	}
	if product == nil {
		return nil, newError(KindNotFound, "product not found")
	}

	if files == nil && len(data.Items) == 0 {
		return nil, newError(KindInvalidArgument, "no files or image data provided")
	}

	items, err := e.buildItems(files, data.Items)
	if err != nil {
		return nil, err
	}

	if err := e.checkItems(items, current); err != nil {
		return nil, err
	}

	records, err := e.apply(ctx, productID, current, items)
	if err != nil {
		return nil, err
	}

	if err := e.repo.SaveAll(ctx, records); err != nil {
		return nil, wrapError(KindStorage, "failed to save image records", err)
	}

	out, err := e.repo.FindAllForProduct(ctx, productID)
	if err != nil {
		return nil, wrapError(KindStorage, "failed to load image records", err)
	}

	return out, nil
}

// buildItems normalizes files and metadata into one request item per eventual
// image. When no files were supplied, every item must be an update; a file
// index reference is then unresolvable.
func (e *Engine) buildItems(files []*UploadedFile, metadata []MetadataItem) ([]requestItem, error) {
	if files != nil {
		return normalize(files, metadata)
	}

	items := make([]requestItem, 0, len(metadata))
	for _, m := range metadata {
		if m.FileIndex != nil {
			return nil, newError(KindNotFound, "referenced image not found")
		}
		items = append(items, requestItem{meta: m})
	}
	return items, nil
}

// checkItems runs the remaining validation over the projected final state:
// field limits, the image count invariant, the create/update shape rules,
// existence of referenced images, and duplicate references. Nothing here
// mutates any store.
func (e *Engine) checkItems(items []requestItem, current []Record) error {
	creates, deletes := 0, 0
	for _, it := range items {
		m := it.meta
		if m.Name != nil && len(*m.Name) > e.cfg.MaxNameLength {
			return newError(KindInvalidArgument, "image name is too long")
		}
		if m.Description != nil && len(*m.Description) > e.cfg.MaxDescriptionLength {
			return newError(KindInvalidArgument, "image description is too long")
		}
		if it.file != nil {
			creates++
		}
		if m.Delete != nil && *m.Delete {
			deletes++
		}
	}

	if len(current)+creates-deletes > e.cfg.MaxPerProduct {
		return newError(KindConflict, "maximum number of images per product exceeded")
	}

	owned := make(map[string]bool, len(current))
	for _, r := range current {
		owned[r.ID] = true
	}

	for _, it := range items {
		if it.file != nil {
			if it.meta.ImageID != nil {
				return newError(KindInvalidArgument, "a new image cannot reference an existing image id")
			}
			continue
		}
		if it.meta.ImageID == nil {
			return newError(KindInvalidArgument, "image metadata must reference a file or an existing image id")
		}
		if !owned[*it.meta.ImageID] {
			return newError(KindNotFound, "image not found")
		}
	}

	seen := make(map[string]bool)
	for _, it := range items {
		if it.meta.ImageID == nil {
			continue
		}
		if seen[*it.meta.ImageID] {
			return newError(KindConflict, "duplicated image id")
		}
		seen[*it.meta.ImageID] = true
	}

	return nil
}

// apply executes the validated items against the blob store and returns the
// full record set to persist.
func (e *Engine) apply(ctx context.Context, productID string, current []Record, items []requestItem) ([]Record, error) {
	records := append([]Record(nil), current...)
	now := time.Now().UTC()

	for _, it := range items {
		if it.file != nil {
			rec, err := e.createImage(ctx, productID, it, now)
			if err != nil {
				return nil, err
			}
			records = append(records, *rec)
			continue
		}

		if err := e.updateImage(ctx, records, it, now); err != nil {
			return nil, err
		}
	}

	return records, nil
}

func (e *Engine) createImage(ctx context.Context, productID string, it requestItem, now time.Time) (*Record, error) {
	m := it.meta

	rec := Record{
		ID:        uuid.New().String(),
		ProductID: productID,
	}
	if m.Name != nil {
		rec.Name = *m.Name
	}
	if m.Description != nil {
		rec.Description = *m.Description
	}
	if m.Main != nil {
		rec.Main = *m.Main
	}
	if m.Active != nil {
		rec.Active = *m.Active
	}
	if m.Delete != nil && *m.Delete {
		deletedAt := now
		rec.DeletedAt = &deletedAt
	}

	ext := extensionFromFilename(it.file.OriginalName)
	state := rec.State()

	originalPath, err := ResolvePath(state, productID, rec.ID, ext, false)
	if err != nil {
		return nil, err
	}
	thumbnailPath, err := ResolvePath(state, productID, rec.ID, ext, true)
	if err != nil {
		return nil, err
	}
	rec.OriginalPath = originalPath
	rec.ThumbnailPath = thumbnailPath

	thumb, err := e.thumbs.Generate(it.file)
	if err != nil {
		return nil, wrapError(KindStorage, "failed to generate thumbnail", err)
	}

	if err := e.blobs.Save(ctx, it.file, rec.OriginalPath); err != nil {
		return nil, wrapError(KindStorage, "failed to store image", err)
	}
	if err := e.blobs.Save(ctx, thumb, rec.ThumbnailPath); err != nil {
		return nil, wrapError(KindStorage, "failed to store thumbnail", err)
	}

	return &rec, nil
}

// updateImage applies the fields present on the item to the referenced record
// in place. Absent fields keep their stored value. When the patch changes the
// derived state, both blobs are relocated; thumbnails are never regenerated
// on update.
func (e *Engine) updateImage(ctx context.Context, records []Record, it requestItem, now time.Time) error {
	m := it.meta

	var rec *Record
	for i := range records {
		if records[i].ID == *m.ImageID {
			rec = &records[i]
			break
		}
	}
	if rec == nil {
		return newError(KindNotFound, "image not found")
	}

	oldState := rec.State()
	oldOriginal := rec.OriginalPath
	oldThumbnail := rec.ThumbnailPath

	if m.Name != nil {
		rec.Name = *m.Name
	}
	if m.Description != nil {
		rec.Description = *m.Description
	}
	if m.Main != nil {
		rec.Main = *m.Main
	}
	if m.Active != nil {
		rec.Active = *m.Active
	}
	if m.Delete != nil && *m.Delete && rec.DeletedAt == nil {
		deletedAt := now
		rec.DeletedAt = &deletedAt
	}

	newState := rec.State()
	if newState == oldState {
		return nil
	}

	ext := extensionFromPath(oldOriginal)
	newOriginal, err := ResolvePath(newState, rec.ProductID, rec.ID, ext, false)
	if err != nil {
		return err
	}
	newThumbnail, err := ResolvePath(newState, rec.ProductID, rec.ID, ext, true)
	if err != nil {
		return err
	}

	if err := e.blobs.Move(ctx, newOriginal, oldOriginal); err != nil {
		return wrapError(KindStorage, "failed to move image", err)
	}
	if err := e.blobs.Move(ctx, newThumbnail, oldThumbnail); err != nil {
		return wrapError(KindStorage, "failed to move thumbnail", err)
	}

	rec.OriginalPath = newOriginal
	rec.ThumbnailPath = newThumbnail

	return nil
}
