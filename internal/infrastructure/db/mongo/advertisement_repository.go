package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

type AdvertisementRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

type advertisementDoc struct {
	ID        int64     `bson:"_id"`
	Title     string    `bson:"title"`
	Body      string    `bson:"body,omitempty"`
	Group     string    `bson:"adv_group"`
	IsActive  bool      `bson:"is_active"`
	AuthorID  int64     `bson:"author_id"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d advertisementDoc) toDomain() *domain.Advertisement {
	return &domain.Advertisement{
		ID:        d.ID,
		Title:     d.Title,
		Body:      d.Body,
		Group:     domain.Group(d.Group),
		IsActive:  d.IsActive,
		Author:    d.AuthorID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *AdvertisementRepository) Create(ctx context.Context, adv *domain.Advertisement) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// no foreign keys here
	n, err := r.db.Collection(collectionUsers).CountDocuments(ctx, bson.M{"_id": adv.Author})
	if err != nil {
		return fmt.Errorf("check author %d: %w", adv.Author, err)
	}
	if n == 0 {
		return fmt.Errorf("insert advertisement: %w", domain.ErrUserNotFound)
	}

	id, err := nextID(ctx, r.db, collectionAdvertisements)
	if err != nil {
		return err
	}
	doc := advertisementDoc{
		ID:        id,
		Title:     adv.Title,
		Body:      adv.Body,
		Group:     string(adv.Group),
		IsActive:  adv.IsActive,
		AuthorID:  adv.Author,
		CreatedAt: adv.CreatedAt.UTC(),
		UpdatedAt: adv.UpdatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert advertisement: %w", err)
	}
	adv.ID = id
	return nil
}

func (r *AdvertisementRepository) FindByID(ctx context.Context, id int64) (*domain.Advertisement, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc advertisementDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAdvertisementNotFound
		}
		return nil, fmt.Errorf("find advertisement %d: %w", id, err)
	}
	return doc.toDomain(), nil
}

func (r *AdvertisementRepository) List(ctx context.Context, filter ports.ListAdvertisementsFilter) ([]*domain.Advertisement, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Group != "" {
		query["adv_group"] = string(filter.Group)
	}
	if filter.AuthorID != 0 {
		query["author_id"] = filter.AuthorID
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count advertisements: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * filter.Limit)).SetLimit(int64(filter.Limit))
	}

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list advertisements: %w", err)
	}
	var docs []advertisementDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode advertisements: %w", err)
	}

	items := make([]*domain.Advertisement, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toDomain())
	}
	return items, total, nil
}

func (r *AdvertisementRepository) Update(ctx context.Context, adv *domain.Advertisement) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": adv.ID}, bson.M{"$set": bson.M{
		"title":      adv.Title,
		"body":       adv.Body,
		"adv_group":  string(adv.Group),
		"is_active":  adv.IsActive,
		"updated_at": adv.UpdatedAt.UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update advertisement %d: %w", adv.ID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAdvertisementNotFound
	}
	return nil
}

// Delete removes the advertisement and its comments.
func (r *AdvertisementRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete advertisement %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAdvertisementNotFound
	}
	if _, err := r.db.Collection(collectionComments).DeleteMany(ctx, bson.M{"advertisement_id": id}); err != nil {
		return fmt.Errorf("cascade comments: %w", err)
	}
	return nil
}
