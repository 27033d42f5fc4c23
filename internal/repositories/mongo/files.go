package mongo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FilesBucket é o bucket GridFS dos anexos
const FilesBucket = "arquivos"

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrStorageDisabled = errors.New("file storage is disabled")
)

// FileInfo descreve um arquivo armazenado
type FileInfo struct {
	ID          string    `json:"id"`
	Entity      string    `json:"entity"`
	EntityID    string    `json:"entityId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type fileMetadata struct {
	Entity      string `bson:"entity"`
	EntityID    string `bson:"entityId"`
	ContentType string `bson:"contentType"`
	UploadedBy  string `bson:"uploadedBy,omitempty"`
}

// FileStore guarda os anexos das entidades
type FileStore interface {
	Upload(ctx context.Context, info FileInfo, content io.Reader) (*FileInfo, error)
	List(ctx context.Context, entity, entityID string) ([]FileInfo, error)
	Open(ctx context.Context, id string) (*FileInfo, io.ReadCloser, error)
	Delete(ctx context.Context, id string) (*FileInfo, error)
}

// GridFSStore é o FileStore sobre GridFS. Cada operação abre o seu próprio
// bucket com os prazos do contexto.
type GridFSStore struct {
	db    *mongo.Database
	files *mongo.Collection
}

// Files retorna o FileStore da base configurada
func (m *MongoInternal) Files() (*GridFSStore, error) {
	store := &GridFSStore{
		db:    m.db,
		files: m.db.Collection(FilesBucket + ".files"),
	}
	if _, err := store.bucket(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// bucket abre o bucket com os prazos de ctx
func (g *GridFSStore) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	bucket, err := gridfs.NewBucket(g.db, options.GridFSBucket().SetName(FilesBucket))
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	d := deadline(ctx)
	if err := bucket.SetReadDeadline(d); err != nil {
		return nil, err
	}
	if err := bucket.SetWriteDeadline(d); err != nil {
		return nil, err
	}
	return bucket, nil
}

type gridFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Filename   string             `bson:"filename"`
	Metadata   fileMetadata       `bson:"metadata"`
}

func (f gridFile) info() FileInfo {
	return FileInfo{
		ID:          f.ID.Hex(),
		Entity:      f.Metadata.Entity,
		EntityID:    f.Metadata.EntityID,
		Filename:    f.Filename,
		ContentType: f.Metadata.ContentType,
		Size:        f.Length,
		UploadedBy:  f.Metadata.UploadedBy,
		UploadedAt:  f.UploadDate,
	}
}

func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(time.Minute)
}

// Upload grava o conteúdo com os metadados da entidade
func (g *GridFSStore) Upload(ctx context.Context, info FileInfo, content io.Reader) (*FileInfo, error) {
	meta := fileMetadata{
		Entity:      info.Entity,
		EntityID:    info.EntityID,
		ContentType: info.ContentType,
		UploadedBy:  info.UploadedBy,
	}
	bucket, err := g.bucket(ctx)
	if err != nil {
		return nil, err
	}
	id, err := bucket.UploadFromStream(info.Filename, content, options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", info.Filename, err)
	}
	return g.get(ctx, id)
}

func (g *GridFSStore) get(ctx context.Context, id primitive.ObjectID) (*FileInfo, error) {
	var f gridFile
	err := g.files.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", id.Hex(), err)
	}
	info := f.info()
	return &info, nil
}

// List retorna os arquivos de uma entidade, mais recentes primeiro
func (g *GridFSStore) List(ctx context.Context, entity, entityID string) ([]FileInfo, error) {
	cursor, err := g.files.Find(ctx,
		bson.M{"metadata.entity": entity, "metadata.entityId": entityID},
		options.Find().SetSort(bson.D{{Key: "uploadDate", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer cursor.Close(ctx)

	var files []gridFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}
	out := make([]FileInfo, 0, len(files))
	for _, f := range files {
		out = append(out, f.info())
	}
	return out, nil
}

// Open abre o arquivo para leitura
func (g *GridFSStore) Open(ctx context.Context, id string) (*FileInfo, io.ReadCloser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, ErrFileNotFound
	}
	info, err := g.get(ctx, oid)
	if err != nil {
		return nil, nil, err
	}
	bucket, err := g.bucket(ctx)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if _, err := bucket.DownloadToStream(oid, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to download %s: %w", id, err)
	}
	return info, io.NopCloser(&buf), nil
}

// Delete apaga o arquivo e retorna os metadados removidos
func (g *GridFSStore) Delete(ctx context.Context, id string) (*FileInfo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrFileNotFound
	}
	info, err := g.get(ctx, oid)
	if err != nil {
		return nil, err
	}
	bucket, err := g.bucket(ctx)
	if err != nil {
		return nil, err
	}
	if err := bucket.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return info, nil
}

// NopFileStore é usado quando o MongoDB está desligado
type NopFileStore struct{}

func (NopFileStore) Upload(context.Context, FileInfo, io.Reader) (*FileInfo, error) {
	return nil, ErrStorageDisabled
}

func (NopFileStore) List(context.Context, string, string) ([]FileInfo, error) {
	return nil, ErrStorageDisabled
}

func (NopFileStore) Open(context.Context, string) (*FileInfo, io.ReadCloser, error) {
	return nil, nil, ErrStorageDisabled
}

func (NopFileStore) Delete(context.Context, string) (*FileInfo, error) {
	return nil, ErrStorageDisabled
}

var (
	_ FileStore = (*GridFSStore)(nil)
	_ FileStore = NopFileStore{}
)
