package documents

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

// metadataColumns excludes the extracted text and artifact payloads.
var metadataColumns = []string{
	"id", "user_id", "file_name", "storage_key", "mime_type", "size_bytes", "page_count", "created_at", "updated_at",
}

type DocumentRepo interface {
	Create(dbc dbctx.Context, docs []*types.Document) ([]*types.Document, error)
	// GetOwned returns ErrNotFound for missing documents and for documents owned by someone else.
	GetOwned(dbc dbctx.Context, userID, documentID uuid.UUID) (*types.Document, error)
	ListMetadataByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Document, error)
	SetExtractedText(dbc dbctx.Context, documentID uuid.UUID, text string) error
	SetJSONColumn(dbc dbctx.Context, documentID uuid.UUID, column string, value datatypes.JSON) error
	Delete(dbc dbctx.Context, userID, documentID uuid.UUID) error
	// ExistingStorageKeys returns the subset of keys still referenced by a document row.
	ExistingStorageKeys(dbc dbctx.Context, keys []string) (map[string]bool, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	repoLog := baseLog.With("repo", "DocumentRepo")
	return &documentRepo{db: db, log: repoLog}
}

func (r *documentRepo) Create(dbc dbctx.Context, docs []*types.Document) ([]*types.Document, error) {
	transaction := dbc.Conn(r.db)

	if len(docs) == 0 {
		return []*types.Document{}, nil
	}

	if err := transaction.Create(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepo) GetOwned(dbc dbctx.Context, userID, documentID uuid.UUID) (*types.Document, error) {
	transaction := dbc.Conn(r.db)

	var doc types.Document
	err := transaction.
		Where("id = ? AND user_id = ?", documentID, userID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) ListMetadataByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Document, error) {
	transaction := dbc.Conn(r.db)

	var results []*types.Document
	if err := transaction.
		Select(metadataColumns).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *documentRepo) SetExtractedText(dbc dbctx.Context, documentID uuid.UUID, text string) error {
	transaction := dbc.Conn(r.db)

	return transaction.
		Model(&types.Document{}).
		Where("id = ?", documentID).
		Update("extracted_text", text).Error
}

func (r *documentRepo) SetJSONColumn(dbc dbctx.Context, documentID uuid.UUID, column string, value datatypes.JSON) error {
	transaction := dbc.Conn(r.db)

	switch column {
	case "summary", "quiz", "mind_map", "roadmap", "roadmap_progress":
	default:
		return pkgerrors.ErrInvalidArgument
	}

	res := transaction.
		Model(&types.Document{}).
		Where("id = ?", documentID).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (r *documentRepo) Delete(dbc dbctx.Context, userID, documentID uuid.UUID) error {
	transaction := dbc.Conn(r.db)

	res := transaction.
		Where("id = ? AND user_id = ?", documentID, userID).
		Delete(&types.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (r *documentRepo) ExistingStorageKeys(dbc dbctx.Context, keys []string) (map[string]bool, error) {
	transaction := dbc.Conn(r.db)

	out := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var found []string
	if err := transaction.
		Model(&types.Document{}).
		Where("storage_key IN ?", keys).
		Pluck("storage_key", &found).Error; err != nil {
		return nil, err
	}
	for _, k := range found {
		out[k] = true
	}
	return out, nil
}
