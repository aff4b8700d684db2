package persist

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// RevisionRow is one stored version of a scene document.
type RevisionRow struct {
	ID        uuid.UUID
	Scene     string
	Document  []byte
	Checksum  string
	Entities  int
	CreatedAt time.Time
}

// SceneRepo stores scene document revisions.
type SceneRepo struct {
	db *DB
}

func NewSceneRepo(db *DB) *SceneRepo {
	return &SceneRepo{db: db}
}

// Checksum returns the hex blake2b-256 digest of a document.
func Checksum(doc []byte) string {
	sum := blake2b.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

// Save stores doc as the newest revision of scene. When the latest revision
// already has the same content it is returned instead of writing a copy.
func (r *SceneRepo) Save(ctx context.Context, scene string, doc []byte, entities int) (*RevisionRow, error) {
	sum := Checksum(doc)
	latest, err := r.Latest(ctx, scene)
	if err != nil {
		return nil, fmt.Errorf("save scene %s: %w", scene, err)
	}
	if latest != nil && latest.Checksum == sum {
		return latest, nil
	}

	row := &RevisionRow{
		ID:        uuid.New(),
		Scene:     scene,
		Document:  doc,
		Checksum:  sum,
		Entities:  entities,
		CreatedAt: time.Now(),
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO scene_revisions (id, scene, document, checksum, entities, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		row.ID.String(), row.Scene, row.Document, row.Checksum, row.Entities, row.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("save scene %s: %w", scene, err)
	}
	r.db.log.Debug("scene revision stored",
		zap.String("scene", scene), zap.String("revision", row.ID.String()), zap.Int("bytes", len(doc)))
	return row, nil
}

// Latest returns the newest revision of scene, or nil if there is none.
func (r *SceneRepo) Latest(ctx context.Context, scene string) (*RevisionRow, error) {
	row := &RevisionRow{}
	var id string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id::text, scene, document, checksum, entities, created_at
		 FROM scene_revisions WHERE scene = $1
		 ORDER BY created_at DESC LIMIT 1`, scene,
	).Scan(&id, &row.Scene, &row.Document, &row.Checksum, &row.Entities, &row.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if row.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse revision id: %w", err)
	}
	if Checksum(row.Document) != row.Checksum {
		return nil, fmt.Errorf("scene %s revision %s: checksum mismatch", scene, id)
	}
	return row, nil
}

// List returns up to limit revisions of scene, newest first, without their
// documents.
func (r *SceneRepo) List(ctx context.Context, scene string, limit int) ([]RevisionRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id::text, scene, checksum, entities, created_at
		 FROM scene_revisions WHERE scene = $1
		 ORDER BY created_at DESC LIMIT $2`, scene, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RevisionRow
	for rows.Next() {
		var row RevisionRow
		var id string
		if err := rows.Scan(&id, &row.Scene, &row.Checksum, &row.Entities, &row.CreatedAt); err != nil {
			return nil, err
		}
		if row.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse revision id: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
