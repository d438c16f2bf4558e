package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName is the Mongo collection used by MongoStore.
const CollectionName = "subscriptions"

// maxUpdateAttempts bounds the optimistic retry loop in Update.
const maxUpdateAttempts = 3

// MongoStore keeps subscriptions as documents. Writes use a version field for
// optimistic concurrency: Update re-reads and retries a few times, then gives
// up with ErrConflict.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	if db == nil {
		panic("subscription: mongo database is required")
	}
	return &MongoStore{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the owner and status indexes. It is safe to call on every start.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

type subscriptionDocument struct {
	ID            string          `bson:"_id"`
	UserID        string          `bson:"user_id"`
	Name          string          `bson:"name"`
	Price         bson.Decimal128 `bson:"price"`
	Currency      string          `bson:"currency"`
	Frequency     string          `bson:"frequency"`
	Category      string          `bson:"category"`
	PaymentMethod string          `bson:"payment_method"`
	Status        string          `bson:"status"`
	StartDate     time.Time       `bson:"start_date"`
	RenewalDate   time.Time       `bson:"renewal_date"`
	CreatedAt     time.Time       `bson:"created_at"`
	UpdatedAt     time.Time       `bson:"updated_at"`
	Version       int64           `bson:"version"`
}

func toDocument(s Subscription, version int64) (subscriptionDocument, error) {
	price, err := bson.ParseDecimal128(s.Price.String())
	if err != nil {
		return subscriptionDocument{}, errors.Join(ErrInvalidPayload, err)
	}
	return subscriptionDocument{
		ID:            s.ID.String(),
		UserID:        s.UserID.String(),
		Name:          s.Name,
		Price:         price,
		Currency:      string(s.Currency),
		Frequency:     string(s.Frequency),
		Category:      string(s.Category),
		PaymentMethod: string(s.PaymentMethod),
		Status:        string(s.Status),
		StartDate:     s.StartDate,
		RenewalDate:   s.RenewalDate,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		Version:       version,
	}, nil
}

func (d subscriptionDocument) toSubscription() (Subscription, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Subscription{}, errors.Join(ErrInvalidPayload, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return Subscription{}, errors.Join(ErrInvalidPayload, err)
	}
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return Subscription{}, errors.Join(ErrInvalidPayload, err)
	}
	return Subscription{
		ID:            id,
		UserID:        userID,
		Name:          d.Name,
		Price:         price,
		Currency:      Currency(d.Currency),
		Frequency:     Frequency(d.Frequency),
		Category:      Category(d.Category),
		PaymentMethod: PaymentMethod(d.PaymentMethod),
		Status:        Status(d.Status),
		StartDate:     d.StartDate.UTC(),
		RenewalDate:   d.RenewalDate.UTC(),
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}, nil
}

func (m *MongoStore) Create(ctx context.Context, s Subscription) error {
	doc, err := toDocument(s, 1)
	if err != nil {
		return err
	}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (m *MongoStore) Get(ctx context.Context, id uuid.UUID) (Subscription, error) {
	doc, err := m.find(ctx, id)
	if err != nil {
		return Subscription{}, err
	}
	return doc.toSubscription()
}

func (m *MongoStore) List(ctx context.Context) ([]Subscription, error) {
	return m.query(ctx, bson.D{})
}

func (m *MongoStore) ListByOwner(ctx context.Context, userID uuid.UUID) ([]Subscription, error) {
	return m.query(ctx, bson.D{{Key: "user_id", Value: userID.String()}})
}

func (m *MongoStore) ListByStatus(ctx context.Context, status Status) ([]Subscription, error) {
	return m.query(ctx, bson.D{{Key: "status", Value: string(status)}})
}

func (m *MongoStore) Update(ctx context.Context, id uuid.UUID, fn func(*Subscription) error) (Subscription, error) {
	for range maxUpdateAttempts {
		doc, err := m.find(ctx, id)
		if err != nil {
			return Subscription{}, err
		}
		s, err := doc.toSubscription()
		if err != nil {
			return Subscription{}, err
		}

		if err := fn(&s); err != nil {
			return Subscription{}, err
		}
		s.ID = id

		next, err := toDocument(s, doc.Version+1)
		if err != nil {
			return Subscription{}, err
		}
		res, err := m.coll.ReplaceOne(ctx,
			bson.D{{Key: "_id", Value: doc.ID}, {Key: "version", Value: doc.Version}},
			next,
		)
		if err != nil {
			return Subscription{}, errors.Join(ErrStoreFailure, err)
		}
		if res.MatchedCount == 1 {
			return s, nil
		}
	}
	return Subscription{}, ErrConflict
}

func (m *MongoStore) Delete(ctx context.Context, id uuid.UUID, check func(Subscription) error) error {
	doc, err := m.find(ctx, id)
	if err != nil {
		return err
	}
	s, err := doc.toSubscription()
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(s); err != nil {
			return err
		}
	}

	res, err := m.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: doc.ID}, {Key: "version", Value: doc.Version}})
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if res.DeletedCount == 0 {
		return ErrConflict
	}
	return nil
}

func (m *MongoStore) find(ctx context.Context, id uuid.UUID) (subscriptionDocument, error) {
	var doc subscriptionDocument
	err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return subscriptionDocument{}, ErrNotFound
	}
	if err != nil {
		return subscriptionDocument{}, errors.Join(ErrStoreFailure, err)
	}
	return doc, nil
}

func (m *MongoStore) query(ctx context.Context, filter bson.D) ([]Subscription, error) {
	cur, err := m.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	var docs []subscriptionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	subs := make([]Subscription, 0, len(docs))
	for _, d := range docs {
		s, err := d.toSubscription()
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, nil
}
